// Package profile provides the profile document store and the inheritance
// resolver that compiles profiles into instruction text.
package profile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jcmrs/warpos/internal/fsutil"
	"github.com/jcmrs/warpos/internal/models"
)

const profileExt = ".yaml"

// Store is a file-backed profile catalog rooted at one directory. One YAML
// document per profile; hierarchical identifiers map to subdirectories.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, filepath.FromSlash(id)+profileExt)
}

// Get loads a profile document and derives its flattened observation
// groups. The flattening is recomputed on every call, never cached.
func (s *Store) Get(id string) (*models.ResolvedProfile, error) {
	if err := models.ValidateProfileID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewNotFound("profile", id)
		}
		return nil, fmt.Errorf("read profile %s: %w", id, err)
	}
	return parseDocument(id, data)
}

// Put validates and writes a profile document. This is the external
// mutation path; the resolver never writes.
func (s *Store) Put(id string, doc []byte) error {
	if err := models.ValidateProfileID(id); err != nil {
		return err
	}
	if _, err := parseDocument(id, doc); err != nil {
		return err
	}
	path := s.path(id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, doc); err != nil {
		return fmt.Errorf("write profile %s: %w", id, err)
	}
	return nil
}

// Delete removes a profile document.
func (s *Store) Delete(id string) error {
	if err := models.ValidateProfileID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return models.NewNotFound("profile", id)
		}
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}

// List returns all profile identifiers under the store root, sorted.
func (s *Store) List() ([]string, error) {
	ids := []string{}
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, profileExt) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		ids = append(ids, strings.TrimSuffix(filepath.ToSlash(rel), profileExt))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// parseDocument parses a YAML profile document. Top-level keys
// "description" and "relations" are profile metadata; every other top-level
// key starts a group tree. Group discovery follows document order, which is
// why parsing walks yaml nodes instead of decoding into a map.
func parseDocument(id string, data []byte) (*models.ResolvedProfile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &models.ValidationError{
			Subject:    "profile document",
			Violations: []models.Violation{{Field: id, Message: "not valid YAML: " + err.Error()}},
		}
	}

	p := &models.Profile{ID: id, Groups: map[string]any{}}
	groups := []models.ObservationGroup{}

	if len(doc.Content) == 0 {
		return &models.ResolvedProfile{ID: id, Profile: p, Groups: groups}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &models.ValidationError{
			Subject:    "profile document",
			Violations: []models.Violation{{Field: id, Message: "top level must be a mapping"}},
		}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "description":
			p.Description = value.Value
		case "relations":
			if err := value.Decode(&p.Relations); err != nil {
				return nil, &models.ValidationError{
					Subject:    "profile document",
					Violations: []models.Violation{{Field: id + ".relations", Message: err.Error()}},
				}
			}
		default:
			var generic any
			if err := value.Decode(&generic); err != nil {
				return nil, fmt.Errorf("decode profile group %s.%s: %w", id, key, err)
			}
			p.Groups[key] = generic
			flattenGroups(key, value, &groups)
		}
	}

	return &models.ResolvedProfile{ID: id, Profile: p, Groups: groups}, nil
}

// flattenGroups walks a group tree in document order. A node is a leaf
// group iff it directly contains an "observations" sequence; leaves are
// emitted with their dotted path and not descended further.
func flattenGroups(path string, n *yaml.Node, out *[]models.ObservationGroup) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value != "observations" || n.Content[i+1].Kind != yaml.SequenceNode {
			continue
		}
		var observations []string
		if err := n.Content[i+1].Decode(&observations); err != nil {
			return
		}
		*out = append(*out, models.ObservationGroup{Path: path, Observations: observations})
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		flattenGroups(path+"."+n.Content[i].Value, n.Content[i+1], out)
	}
}
