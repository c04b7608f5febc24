package profile

import (
	"fmt"
	"strings"

	"github.com/jcmrs/warpos/internal/models"
)

// Loader loads a single profile with its derived observation groups.
type Loader interface {
	Get(id string) (*models.ResolvedProfile, error)
}

// Resolver resolves profile inheritance graphs into ordered profile lists.
type Resolver struct {
	loader Loader
}

// NewResolver creates a Resolver backed by the given loader.
func NewResolver(l Loader) *Resolver {
	return &Resolver{loader: l}
}

// Resolve performs a depth-first traversal over inherits relations for each
// entry identifier, in the order given. Profiles are emitted in post-order,
// so every ancestor precedes the profiles that depend on it. A profile
// reachable through multiple paths is emitted exactly once, globally across
// all entries. A back edge fails with CycleError naming the identifier
// where the cycle closed.
func (r *Resolver) Resolve(entryIDs []string) ([]*models.ResolvedProfile, error) {
	visiting := map[string]bool{}
	visited := map[string]bool{}
	var resolved []*models.ResolvedProfile

	var visit func(id string) error
	visit = func(id string) error {
		if visiting[id] {
			return &models.CycleError{ProfileID: id}
		}
		if visited[id] {
			return nil
		}
		visiting[id] = true
		rp, err := r.loader.Get(id)
		if err != nil {
			return err
		}
		for _, rel := range rp.Profile.Relations {
			if rel.Kind != models.RelationKindInherits {
				continue
			}
			if err := visit(rel.Target); err != nil {
				return err
			}
		}
		delete(visiting, id)
		visited[id] = true
		resolved = append(resolved, rp)
		return nil
	}

	for _, id := range entryIDs {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// Compile renders resolved profiles into a single instruction text. The
// output is a pure function of the input order and is consumed verbatim as
// a system-prompt prefix and as a plan's domain framework, so its exact
// formatting is a compatibility surface.
func Compile(profiles []*models.ResolvedProfile) string {
	if len(profiles) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range profiles {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## Profile: %s\n", p.ID)
		if p.Profile.Description != "" {
			b.WriteString(p.Profile.Description + "\n")
		}
		for _, g := range p.Groups {
			fmt.Fprintf(&b, "\n### %s\n", g.Path)
			for _, obs := range g.Observations {
				b.WriteString("- " + obs + "\n")
			}
		}
	}
	return b.String()
}
