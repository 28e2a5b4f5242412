// Package tags turns free-form tag input into canonical slugs and checks
// slugs against the tag vocabulary rules.
package tags

import (
	"regexp"
	"strings"
)

var (
	// Runs of whitespace, including Unicode separators.
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)
	// Anything outside the slug alphabet.
	disallowedRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Two or more consecutive hyphens.
	multipleDashRe = regexp.MustCompile(`-{2,}`)
)

// Normalize converts raw user input into a tag slug.
//
// Rules:
//  1. Trim whitespace and lowercase
//  2. Keep a single leading '#' (hashtag marker)
//  3. Replace whitespace runs with a hyphen
//  4. Drop every character outside [a-z0-9-]
//  5. Collapse repeated hyphens and trim them from both ends
//
// A result with no letters or digits is returned as "". Callers treat the
// empty string as "invalid, discard".
//
// Examples:
//
//	"  high school  " → "high-school"
//	"#high school"    → "#high-school"
//	"sci-fi!"         → "sci-fi"
//	"---"             → ""
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	hashtag := strings.HasPrefix(s, "#")
	if hashtag {
		s = s[1:]
	}

	s = whitespaceRe.ReplaceAllString(s, "-")
	s = disallowedRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return ""
	}
	if hashtag {
		return "#" + s
	}
	return s
}

// NormalizeMany normalizes every entry, drops empty and over-long results and
// removes duplicates, keeping the first occurrence.
func NormalizeMany(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		slug := Normalize(r)
		if slug == "" || len(slug) > MaxTagLength {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

// ParseList splits a comma separated query value into normalized slugs.
// Blank entries are ignored. Entries that are not blank but normalize to
// nothing (or to something longer than MaxTagLength) are returned in
// rejected so callers can report them instead of silently narrowing a query.
func ParseList(raw string) (slugs []string, rejected []string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		slug := Normalize(part)
		if slug == "" || len(slug) > MaxTagLength {
			rejected = append(rejected, part)
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	return slugs, rejected
}
