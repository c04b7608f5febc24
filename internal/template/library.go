// Package template owns the versioned catalog of task templates.
//
// Templates are stored one JSON document per version under the catalog
// root, named {id}@{version}.json. A published version is immutable except
// for deprecation metadata; changing schemas or steps means writing a new
// version number.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jcmrs/warpos/internal/fsutil"
	"github.com/jcmrs/warpos/internal/models"
	"github.com/jcmrs/warpos/internal/schema"
)

const templateExt = ".json"

// structuralSchema is the contract every stored template document must
// satisfy. A stored document that fails it is store corruption, not a
// recoverable condition.
const structuralSchema = `{
	"type": "object",
	"required": ["id", "version", "description", "inputs_schema", "outputs_schema", "steps"],
	"properties": {
		"id": {"type": "string", "minLength": 1, "pattern": "^[A-Za-z0-9._-]+$"},
		"version": {"type": "integer", "minimum": 1},
		"description": {"type": "string"},
		"inputs_schema": {"type": "object"},
		"outputs_schema": {"type": "object"},
		"steps": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "instruction"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"instruction": {"type": "string", "minLength": 1}
				}
			}
		},
		"verification": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "command"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"command": {"type": "string", "minLength": 1}
				}
			}
		},
		"default_profiles": {"type": "array", "items": {"type": "string"}},
		"active": {"type": "boolean"},
		"deprecated": {"type": "boolean"},
		"deprecated_at": {"type": "string"},
		"deprecation_reason": {"type": "string"}
	}
}`

// Library is a file-backed template catalog rooted at one directory.
type Library struct {
	root       string
	structural *jsonschemav5.Schema
}

// NewLibrary creates a Library rooted at dir.
func NewLibrary(dir string) (*Library, error) {
	compiled, err := schema.New().Compile([]byte(structuralSchema))
	if err != nil {
		return nil, fmt.Errorf("compile template structural schema: %w", err)
	}
	return &Library{root: dir, structural: compiled}, nil
}

// Filename returns the composite storage key for a template version.
func Filename(id string, version int) string {
	return fmt.Sprintf("%s@%d%s", id, version, templateExt)
}

// ParseFilename recovers id and version from a {id}@{version}.json name.
func ParseFilename(name string) (string, int, bool) {
	base := strings.TrimSuffix(name, templateExt)
	if base == name {
		return "", 0, false
	}
	at := strings.LastIndex(base, "@")
	if at <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[at+1:])
	if err != nil || version < 1 {
		return "", 0, false
	}
	return base[:at], version, true
}

func (l *Library) path(id string, version int) string {
	return filepath.Join(l.root, Filename(id, version))
}

// versionsByID scans the catalog directory once.
func (l *Library) versionsByID() (map[string][]int, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]int{}, nil
		}
		return nil, fmt.Errorf("scan template catalog: %w", err)
	}
	byID := map[string][]int{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, version, ok := ParseFilename(e.Name())
		if !ok {
			continue
		}
		byID[id] = append(byID[id], version)
	}
	return byID, nil
}

// ListIDs returns every template id in the catalog, sorted. A template with
// several versions on disk yields one entry.
func (l *Library) ListIDs() ([]string, error) {
	byID, err := l.versionsByID()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListVersions returns the stored versions of a template id, descending.
func (l *Library) ListVersions(id string) ([]int, error) {
	byID, err := l.versionsByID()
	if err != nil {
		return nil, err
	}
	versions := byID[id]
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// Load resolves a template id to its highest stored version.
func (l *Library) Load(id string) (*models.TaskTemplate, error) {
	versions, err := l.ListVersions(id)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, models.NewNotFound("template", id)
	}
	return l.LoadVersion(id, versions[0])
}

// LoadVersion loads one exact template version and validates it against the
// structural schema.
func (l *Library) LoadVersion(id string, version int) (*models.TaskTemplate, error) {
	data, err := os.ReadFile(l.path(id, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewNotFound("template", fmt.Sprintf("%s@%d", id, version))
		}
		return nil, fmt.Errorf("read template %s@%d: %w", id, version, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &models.ValidationError{
			Subject:    "stored template",
			Violations: []models.Violation{{Field: Filename(id, version), Message: "not valid JSON: " + err.Error()}},
		}
	}
	if violations := schema.ValidateCompiled(l.structural, raw); len(violations) > 0 {
		return nil, &models.ValidationError{Subject: "stored template " + Filename(id, version), Violations: violations}
	}

	var tpl models.TaskTemplate
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("decode template %s@%d: %w", id, version, err)
	}
	return &tpl, nil
}

// Put validates and persists a template. Writing an existing (id, version)
// overwrites it; a new version means choosing a new version number.
func (l *Library) Put(tpl *models.TaskTemplate) (*models.TaskTemplateRef, error) {
	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	if violations := schema.ValidateCompiled(l.structural, raw); len(violations) > 0 {
		return nil, &models.ValidationError{Subject: "template", Violations: violations}
	}

	if err := os.MkdirAll(l.root, 0755); err != nil {
		return nil, fmt.Errorf("create template catalog: %w", err)
	}
	if err := fsutil.WriteFileAtomic(l.path(tpl.ID, tpl.Version), data); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return &models.TaskTemplateRef{ID: tpl.ID, Version: tpl.Version}, nil
}

// Deprecate marks one exact version deprecated without removing it from
// storage or from LoadVersion. Content fields are untouched.
func (l *Library) Deprecate(id string, version int, reason string) (*models.TaskTemplate, error) {
	tpl, err := l.LoadVersion(id, version)
	if err != nil {
		return nil, err
	}
	inactive := false
	now := time.Now().UTC()
	tpl.Active = &inactive
	tpl.Deprecated = true
	tpl.DeprecatedAt = &now
	tpl.DeprecationReason = reason
	if _, err := l.Put(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}
