package ignore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// FileName is the name of per-directory ignore files.
const FileName = ".indexignore"

// Matcher holds the compiled rules of one ignore file.
// A Matcher is immutable after parsing and safe for concurrent use.
type Matcher struct {
	rules []rule
}

type rule struct {
	pattern  string
	re       *regexp.Regexp
	negate   bool
	dirOnly  bool
	anchored bool
}

// New compiles the given patterns into a Matcher.
// Blank lines and comments are skipped.
func New(patterns ...string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		if r, ok := compile(p); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// Parse reads patterns, one per line, from r.
func Parse(r io.Reader) (*Matcher, error) {
	var patterns []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		patterns = append(patterns, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore patterns: %w", err)
	}
	return New(patterns...), nil
}

// ParseFile reads an ignore file from disk.
func ParseFile(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Len returns the number of active rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Match evaluates a slash-separated path relative to the ignore file's
// directory. matched reports whether any rule applied; ignored is the
// verdict of the last rule that did.
func (m *Matcher) Match(rel string, isDir bool) (matched, ignored bool) {
	if m == nil {
		return false, false
	}

	rel = strings.TrimPrefix(rel, "./")
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}

	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		subject := base
		if r.anchored {
			subject = rel
		}
		if r.re.MatchString(subject) {
			matched = true
			ignored = !r.negate
		}
	}
	return matched, ignored
}

func compile(line string) (rule, bool) {
	// "\ " at the end keeps a trailing space.
	keepSpace := strings.HasSuffix(line, `\ `)
	line = strings.TrimSpace(line)
	if keepSpace {
		line = strings.TrimSuffix(line, `\`) + " "
	}

	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	r := rule{pattern: line}

	switch {
	case strings.HasPrefix(line, "!"):
		r.negate = true
		line = line[1:]
	case strings.HasPrefix(line, `\!`), strings.HasPrefix(line, `\#`):
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}

	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = strings.TrimLeft(line, "/")
	} else if strings.Contains(line, "/") {
		r.anchored = true
	}

	if line == "" {
		return rule{}, false
	}

	re, err := regexp.Compile("^" + toRegex(line) + "$")
	if err != nil {
		return rule{}, false
	}
	r.re = re
	return r, true
}

// toRegex translates glob syntax into an unanchored regular expression.
func toRegex(glob string) string {
	var sb strings.Builder

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				switch {
				case i+2 < len(glob) && glob[i+2] == '/':
					sb.WriteString("(?:.*/)?")
					i += 2
				default:
					sb.WriteString(".*")
					i++
				}
				continue
			}
			sb.WriteString("[^/]*")
		case '?':
			sb.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				sb.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			sb.WriteString("[" + class + "]")
			i += end + 1
		case '\\':
			if i+1 < len(glob) {
				sb.WriteString(regexp.QuoteMeta(string(glob[i+1])))
				i++
			} else {
				sb.WriteString(`\\`)
			}
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return sb.String()
}
