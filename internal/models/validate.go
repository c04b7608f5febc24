package models

import (
	"regexp"
	"strings"
)

// MaxProjectSlugLen bounds project slug length.
const MaxProjectSlugLen = 64

var projectSlugRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateProjectSlug checks a project slug against the allowed character
// set and length bound.
func ValidateProjectSlug(slug string) error {
	var violations []Violation
	if slug == "" {
		violations = append(violations, Violation{Field: "project_slug", Message: "must not be empty"})
	} else {
		if len(slug) > MaxProjectSlugLen {
			violations = append(violations, Violation{Field: "project_slug", Message: "exceeds maximum length"})
		}
		if !projectSlugRe.MatchString(slug) {
			violations = append(violations, Violation{Field: "project_slug", Message: "contains characters outside [A-Za-z0-9._-]"})
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Subject: "project slug", Violations: violations}
	}
	return nil
}

// ValidateProfileID checks a hierarchical profile identifier: slash-separated
// segments, no ".." segments, no absolute paths, no backslashes.
func ValidateProfileID(id string) error {
	var violations []Violation
	switch {
	case id == "":
		violations = append(violations, Violation{Field: "profile_id", Message: "must not be empty"})
	case strings.HasPrefix(id, "/"):
		violations = append(violations, Violation{Field: "profile_id", Message: "must not be absolute"})
	case strings.Contains(id, `\`):
		violations = append(violations, Violation{Field: "profile_id", Message: "must not contain backslashes"})
	default:
		for _, seg := range strings.Split(id, "/") {
			if seg == "" {
				violations = append(violations, Violation{Field: "profile_id", Message: "contains an empty path segment"})
				break
			}
			if seg == ".." {
				violations = append(violations, Violation{Field: "profile_id", Message: "must not contain '..' segments"})
				break
			}
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Subject: "profile id", Violations: violations}
	}
	return nil
}
