// Package instance generates and stores immutable task instances.
package instance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jcmrs/warpos/internal/fsutil"
	"github.com/jcmrs/warpos/internal/models"
)

const instanceExt = ".json"

// Store persists instance records, one JSON file per instance under the
// owning project. Records are append-only: after creation only the status
// field is ever rewritten, and only by the plan executor.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) projectDir(slug string) string {
	return filepath.Join(s.root, "projects", slug, "instances")
}

func (s *Store) path(slug, instanceID string) string {
	return filepath.Join(s.projectDir(slug), instanceID+instanceExt)
}

// Create persists a new instance record. An existing record with the same
// id is a defect, not an overwrite target.
func (s *Store) Create(inst *models.TaskInstance) error {
	dir := s.projectDir(inst.ProjectSlug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create instance directory: %w", err)
	}
	path := s.path(inst.ProjectSlug, inst.InstanceID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("instance %s already exists", inst.InstanceID)
	}
	if err := fsutil.WriteJSONAtomic(path, inst); err != nil {
		return fmt.Errorf("write instance %s: %w", inst.InstanceID, err)
	}
	return nil
}

// Get loads one instance. A missing record surfaces as a domain NotFound
// carrying the instance id and project slug, never the storage error.
func (s *Store) Get(slug, instanceID string) (*models.TaskInstance, error) {
	var inst models.TaskInstance
	if err := fsutil.ReadJSON(s.path(slug, instanceID), &inst); err != nil {
		if os.IsNotExist(err) {
			return nil, &models.NotFoundError{Kind: "instance", ID: instanceID, Scope: slug}
		}
		return nil, fmt.Errorf("read instance %s: %w", instanceID, err)
	}
	return &inst, nil
}

// List returns the instance ids of a project, sorted. A project with no
// instances yields an empty list.
func (s *Store) List(slug string) ([]string, error) {
	entries, err := os.ReadDir(s.projectDir(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list instances: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), instanceExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), instanceExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// UpdateStatus rewrites only the status field of an existing record.
func (s *Store) UpdateStatus(slug, instanceID string, status models.InstanceStatus) error {
	inst, err := s.Get(slug, instanceID)
	if err != nil {
		return err
	}
	inst.Status = status
	if err := fsutil.WriteJSONAtomic(s.path(slug, instanceID), inst); err != nil {
		return fmt.Errorf("update instance %s status: %w", instanceID, err)
	}
	return nil
}
