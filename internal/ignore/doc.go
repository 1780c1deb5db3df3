// Package ignore matches paths against .indexignore files.
//
// The syntax is the familiar gitignore one:
//
//	# comment
//	*.tmp.json        any file named like this, at any depth
//	/drafts/          the drafts directory next to the ignore file only
//	archive/**        everything below archive
//	!keep.geojson     re-include a previously ignored file
//
// Patterns are evaluated relative to the directory holding the ignore file.
// The last matching pattern wins, so negations must follow the pattern they
// override.
//
// Usage:
//
//	m, err := ignore.ParseFile("/data/tracon/KTST/.indexignore")
//	if ok, ignored := m.Match("charts/old.geojson", false); ok && ignored {
//	    // skip
//	}
package ignore
