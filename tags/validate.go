package tags

import (
	"fmt"
	"regexp"
)

// Vocabulary limits.
const (
	MaxTagsPerNovel = 20
	MaxTagLength    = 30
	MinTagLength    = 1
)

var tagRe = regexp.MustCompile(`^#?[a-z0-9]+(-[a-z0-9]+)*$`)

// Result is the outcome of Validate. Errors lists every violated rule.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// IsValid reports whether tag is an already-normalized slug that fits the
// vocabulary rules. It does not normalize: "high school" is invalid.
func IsValid(tag string) bool {
	if len(tag) < MinTagLength || len(tag) > MaxTagLength {
		return false
	}
	return tagRe.MatchString(tag)
}

// Validate checks a full tag list. The count, per-tag and duplicate checks
// all run, so a caller gets every problem in one pass.
func Validate(tags []string) Result {
	var errs []string

	if len(tags) > MaxTagsPerNovel {
		errs = append(errs, fmt.Sprintf("too many tags: %d (maximum is %d)", len(tags), MaxTagsPerNovel))
	}

	for _, tag := range tags {
		if !IsValid(tag) {
			errs = append(errs, fmt.Sprintf("invalid tag %q: must be 1-%d characters of a-z, 0-9 and single hyphens, optionally prefixed with #", tag, MaxTagLength))
		}
	}

	seen := make(map[string]int, len(tags))
	for _, tag := range tags {
		seen[tag]++
		// report each duplicated value once
		if seen[tag] == 2 {
			errs = append(errs, fmt.Sprintf("duplicate tag %q", tag))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
