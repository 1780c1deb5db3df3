// Package index builds, compares and persists the data file index.
//
// An Index maps domain -> entity -> data file paths relative to the entity
// directory. Indexes produced by Build are fully sorted, so marshaling the
// same tree twice yields identical bytes.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Index maps domain -> entity -> relative file paths.
type Index map[string]map[string][]string

// Stats summarizes an Index.
type Stats struct {
	Domains  int `json:"domains"`
	Entities int `json:"entities"`
	Files    int `json:"files"`
}

// New returns an Index holding an empty entity map for every domain.
func New(domains []string) Index {
	idx := make(Index, len(domains))
	for _, d := range domains {
		idx[d] = make(map[string][]string)
	}
	return idx
}

// Domains returns the sorted domain names.
func (idx Index) Domains() []string {
	return sortedKeys(idx)
}

// Entities returns the sorted entity names of a domain.
func (idx Index) Entities(domain string) []string {
	return sortedKeys(idx[domain])
}

// Files returns the files recorded for domain/entity.
func (idx Index) Files(domain, entity string) []string {
	return idx[domain][entity]
}

// Stats counts domains, entities and files.
func (idx Index) Stats() Stats {
	var s Stats
	s.Domains = len(idx)
	for _, entities := range idx {
		s.Entities += len(entities)
		for _, files := range entities {
			s.Files += len(files)
		}
	}
	return s
}

// Marshal renders the index as 2-space indented JSON with a trailing
// newline. Object keys come out sorted; empty lists render as [].
func (idx Index) Marshal() ([]byte, error) {
	normalized := make(Index, len(idx))
	for domain, entities := range idx {
		m := make(map[string][]string, len(entities))
		for entity, files := range entities {
			if files == nil {
				files = []string{}
			}
			m[entity] = files
		}
		normalized[domain] = m
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("failed to encode index: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes an index file.
func Parse(data []byte) (Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	if idx == nil {
		return nil, fmt.Errorf("failed to decode index: not a JSON object")
	}
	for domain, entities := range idx {
		if entities == nil {
			idx[domain] = make(map[string][]string)
		}
	}
	return idx, nil
}

// Diff lists entries present in only one of two indexes. Entries are
// "domain/", "domain/entity/" or "domain/entity/path".
type Diff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the two indexes hold the same entries.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// String renders a short +/- listing, capped at limit lines per side
// (limit <= 0 means unlimited).
func (d Diff) String(limit int) string {
	var sb strings.Builder
	write := func(prefix string, entries []string) {
		for i, e := range entries {
			if limit > 0 && i == limit {
				fmt.Fprintf(&sb, "%s ... %d more\n", prefix, len(entries)-limit)
				return
			}
			fmt.Fprintf(&sb, "%s %s\n", prefix, e)
		}
	}
	write("+", d.Added)
	write("-", d.Removed)
	return sb.String()
}

// Compare returns what changed going from old to updated.
func Compare(old, updated Index) Diff {
	before := old.entries()
	after := updated.entries()

	var d Diff
	for e := range after {
		if !before[e] {
			d.Added = append(d.Added, e)
		}
	}
	for e := range before {
		if !after[e] {
			d.Removed = append(d.Removed, e)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	return d
}

// Diff returns what changed going from idx to other.
func (idx Index) Diff(other Index) Diff {
	return Compare(idx, other)
}

// Equal reports whether both indexes marshal to the same bytes.
func (idx Index) Equal(other Index) bool {
	a, err := idx.Marshal()
	if err != nil {
		return false
	}
	b, err := other.Marshal()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func (idx Index) entries() map[string]bool {
	set := make(map[string]bool)
	for domain, entities := range idx {
		set[domain+"/"] = true
		for entity, files := range entities {
			set[domain+"/"+entity+"/"] = true
			for _, f := range files {
				set[domain+"/"+entity+"/"+f] = true
			}
		}
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
