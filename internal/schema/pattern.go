// ABOUTME: Minimal pattern language of literal text interleaved with {name} placeholders
// ABOUTME: Supports rendering (Format) and greedy reverse-parsing (Unformat)
package schema

import (
	"fmt"
	"strings"
)

// pattern is a compiled layout string. tokens alternates literal text and
// placeholder names, always beginning and ending with a literal, so the
// length is odd.
type pattern struct {
	source string
	tokens []string
}

func compilePattern(s string) (*pattern, error) {
	var tokens []string
	rest := s
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			tokens = append(tokens, rest)
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return nil, fmt.Errorf("pattern %q: unclosed placeholder", s)
		}
		tokens = append(tokens, rest[:open], rest[open+1:open+closing])
		rest = rest[open+closing+1:]
	}
	if len(tokens)%2 == 0 {
		return nil, fmt.Errorf("pattern %q: improperly formatted", s)
	}
	// An empty literal between two placeholders makes parsing ambiguous;
	// only the leading and trailing literals may be empty.
	for i := 2; i < len(tokens)-1; i += 2 {
		if tokens[i] == "" {
			return nil, fmt.Errorf("pattern %q: adjacent placeholders", s)
		}
	}
	return &pattern{source: s, tokens: tokens}, nil
}

// placeholders returns the placeholder names in order of appearance.
func (p *pattern) placeholders() []string {
	names := make([]string, 0, len(p.tokens)/2)
	for i := 1; i < len(p.tokens); i += 2 {
		names = append(names, p.tokens[i])
	}
	return names
}

// Format renders the pattern with placeholder values taken from vals.
func (p *pattern) Format(vals map[string]string) string {
	var b strings.Builder
	for i, tok := range p.tokens {
		if i%2 == 0 {
			b.WriteString(tok)
		} else {
			b.WriteString(vals[tok])
		}
	}
	return b.String()
}

// Unformat reverses Format: each literal is located greedily in s, in order,
// and the text between consecutive literals is assigned to the placeholder
// separating them. A placeholder followed by an empty trailing literal
// receives the remainder of s. Fails when an expected literal cannot be
// found at or after its expected position.
func (p *pattern) Unformat(s string) (map[string]string, error) {
	vals := make(map[string]string, len(p.tokens)/2)
	pos := 0
	for i := 0; i+2 < len(p.tokens); i += 2 {
		lit, name, next := p.tokens[i], p.tokens[i+1], p.tokens[i+2]

		at := strings.Index(s[pos:], lit)
		if at < 0 {
			return nil, fmt.Errorf("pattern %q: literal %q not found", p.source, lit)
		}
		start := pos + at + len(lit)

		if next == "" {
			vals[name] = s[start:]
			pos = len(s)
			continue
		}
		at = strings.Index(s[start:], next)
		if at < 0 {
			return nil, fmt.Errorf("pattern %q: literal %q not found", p.source, next)
		}
		vals[name] = s[start : start+at]
		pos = start + at
	}
	return vals, nil
}
