package importer

import (
	"regexp"
	"sort"
	"strings"
)

var (
	tagToken     = regexp.MustCompile(`[\w:-]+`)
	hierarchical = regexp.MustCompile(`^[\w-]+(::[\w-]+)*$`)
)

// ParseTags extracts tag tokens (letters, digits, '_', '-' and ':') from s.
func ParseTags(s string) []string {
	return tagToken.FindAllString(s, -1)
}

// ValidTag reports whether t is a single well-formed tag.
func ValidTag(t string) bool {
	t = strings.TrimSpace(t)
	return t != "" && tagToken.FindString(t) == t
}

// IsHierarchical reports whether t uses Anki's "parent::child" form.
func IsHierarchical(t string) bool {
	return strings.Contains(t, "::") && hierarchical.MatchString(t)
}

// SplitHierarchical splits "a::b::c" into its levels.
func SplitHierarchical(t string) []string {
	return strings.Split(t, "::")
}

// NormalizeTags lowercases, dedupes and sorts tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// splitTagCell splits a spreadsheet tag cell on commas when it has any,
// otherwise on whitespace.
func splitTagCell(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, ",") {
		return strings.Fields(s)
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
