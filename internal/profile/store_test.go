package profile

import (
	"strings"
	"testing"

	"github.com/jcmrs/warpos/internal/models"
)

const goProfileDoc = `description: Go engineering discipline
relations:
  - target: engineering/review
    kind: inherits
style:
  naming:
    observations:
      - Use short receiver names
      - Exported identifiers carry doc comments
  errors:
    observations:
      - Wrap errors with %w
testing:
  observations:
    - Table tests for pure functions
`

func TestPutGetRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Put("engineering/go", []byte(goProfileDoc)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rp, err := s.Get("engineering/go")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rp.Profile.Description != "Go engineering discipline" {
		t.Errorf("unexpected description: %q", rp.Profile.Description)
	}
	if len(rp.Profile.Relations) != 1 || rp.Profile.Relations[0].Target != "engineering/review" {
		t.Errorf("unexpected relations: %+v", rp.Profile.Relations)
	}
}

func TestGroupFlatteningOrder(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Put("engineering/go", []byte(goProfileDoc)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rp, err := s.Get("engineering/go")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := []string{"style.naming", "style.errors", "testing"}
	if len(rp.Groups) != len(want) {
		t.Fatalf("expected %d groups, got %d: %+v", len(want), len(rp.Groups), rp.Groups)
	}
	for i, path := range want {
		if rp.Groups[i].Path != path {
			t.Errorf("group %d: expected path %q, got %q", i, path, rp.Groups[i].Path)
		}
	}
	if len(rp.Groups[0].Observations) != 2 {
		t.Errorf("expected 2 observations in style.naming, got %d", len(rp.Groups[0].Observations))
	}
}

func TestGetMissingProfile(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Get("engineering/missing")
	if err == nil {
		t.Fatal("expected error for missing profile")
	}
	if !models.IsNotFound(err) {
		t.Errorf("expected NotFound, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "engineering/missing") {
		t.Errorf("error should name the profile id: %v", err)
	}
	if strings.Contains(err.Error(), "no such file") {
		t.Errorf("storage error leaked to caller: %v", err)
	}
}

func TestPutRejectsBadIdentifier(t *testing.T) {
	s := NewStore(t.TempDir())

	for _, id := range []string{"", "../escape", "a/../b", "/absolute", `win\path`} {
		if err := s.Put(id, []byte("description: x\n")); err == nil {
			t.Errorf("Put(%q) should have been rejected", id)
		}
	}
}

func TestPutRejectsInvalidYAML(t *testing.T) {
	s := NewStore(t.TempDir())

	err := s.Put("bad/doc", []byte(":\n\t- broken"))
	if err == nil {
		t.Fatal("expected validation error for invalid YAML")
	}
	if !models.IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := NewStore(t.TempDir())

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List on empty store failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty list, got %v", ids)
	}

	for _, id := range []string{"engineering/go", "engineering/review", "product/api"} {
		if err := s.Put(id, []byte("description: "+id+"\n")); err != nil {
			t.Fatalf("Put(%q) failed: %v", id, err)
		}
	}

	ids, err = s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"engineering/go", "engineering/review", "product/api"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected ids[%d]=%q, got %q", i, want[i], ids[i])
		}
	}

	if err := s.Delete("product/api"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("product/api"); !models.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	if err := s.Delete("product/api"); !models.IsNotFound(err) {
		t.Errorf("expected NotFound deleting twice, got %v", err)
	}
}
