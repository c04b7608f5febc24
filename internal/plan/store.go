package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jcmrs/warpos/internal/fsutil"
	"github.com/jcmrs/warpos/internal/models"
)

const planExt = ".json"

// Store persists execution plans, one JSON file per plan. Plans are
// addressed by plan id alone and must stay loadable across restarts.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) dir() string {
	return filepath.Join(s.root, "plans")
}

func (s *Store) path(planID string) string {
	return filepath.Join(s.dir(), planID+planExt)
}

// Create persists a new plan record.
func (s *Store) Create(p *models.ExecutionPlan) error {
	if err := os.MkdirAll(s.dir(), 0755); err != nil {
		return fmt.Errorf("create plan directory: %w", err)
	}
	if err := fsutil.WriteJSONAtomic(s.path(p.PlanID), p); err != nil {
		return fmt.Errorf("write plan %s: %w", p.PlanID, err)
	}
	return nil
}

// Get loads one plan by id.
func (s *Store) Get(planID string) (*models.ExecutionPlan, error) {
	var p models.ExecutionPlan
	if err := fsutil.ReadJSON(s.path(planID), &p); err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewNotFound("plan", planID)
		}
		return nil, fmt.Errorf("read plan %s: %w", planID, err)
	}
	return &p, nil
}

// List returns all stored plan ids, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list plans: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), planExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), planExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// UpdateStatus rewrites only the status field of a stored plan.
func (s *Store) UpdateStatus(planID string, status models.PlanStatus) error {
	p, err := s.Get(planID)
	if err != nil {
		return err
	}
	p.Status = status
	if err := fsutil.WriteJSONAtomic(s.path(planID), p); err != nil {
		return fmt.Errorf("update plan %s status: %w", planID, err)
	}
	return nil
}
