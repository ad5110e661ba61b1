// Package slug derives URL slugs from article titles.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	separatorRuns = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate lowercases the title, collapses every run of characters outside
// [a-z0-9] into a single hyphen and strips leading/trailing hyphens.
// The result is empty when the title holds no ASCII alphanumerics.
func Generate(title string) string {
	s := separatorRuns.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// WithSuffix returns the n-th disambiguated form of base ("base-2", "base-3", ...).
// n < 2 returns base unchanged.
func WithSuffix(base string, n int) string {
	if n < 2 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Valid reports whether s is a well-formed kebab-case slug
func Valid(s string) bool {
	return validSlug.MatchString(s)
}
