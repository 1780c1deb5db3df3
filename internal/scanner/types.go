// Package scanner discovers indexable data files below domain and entity
// directories.
package scanner

import "strings"

// Options configures the scanner behavior.
type Options struct {
	// Extensions are literal file name suffixes to collect (e.g. ".geojson").
	// Matching is case-sensitive.
	Extensions []string

	// RespectIgnoreFiles enables .indexignore parsing.
	RespectIgnoreFiles bool
}

// ExtensionSet is a literal, case-sensitive suffix matcher.
type ExtensionSet []string

// Match reports whether name ends with one of the extensions.
func (s ExtensionSet) Match(name string) bool {
	for _, ext := range s {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
