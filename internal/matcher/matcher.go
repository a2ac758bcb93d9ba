// Package matcher compiles step-definition patterns and matches step text against them.
//
// A pattern is compiled once into a list of typed fragments and then into an
// anchored regular expression. Patterns that cannot be compiled fall back to a
// substring test instead of failing.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrPatternCompile reports a pattern that cannot be turned into a matcher.
var ErrPatternCompile = errors.New("pattern compile failure")

// FragmentKind is the type of one compiled pattern fragment.
type FragmentKind int

const (
	Literal FragmentKind = iota
	Int
	Float
	QuotedString
	Word
)

func (k FragmentKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Int:
		return "int"
	case Float:
		return "float"
	case QuotedString:
		return "string"
	case Word:
		return "word"
	default:
		return "unknown"
	}
}

var placeholders = map[string]FragmentKind{
	"int":    Int,
	"float":  Float,
	"string": QuotedString,
	"word":   Word,
}

var expressions = map[FragmentKind]string{
	Int:          `(\d+)`,
	Float:        `(\d+\.\d+)`,
	QuotedString: `"(.*?)"`,
	Word:         `(\w+)`,
}

// Fragment is a literal run of text or a typed placeholder.
type Fragment struct {
	Kind FragmentKind
	Text string // literal text, empty for placeholders
}

// Matcher tests step text against one pattern.
type Matcher struct {
	pattern   string
	fragments []Fragment
	re        *regexp.Regexp
	literals  []string // fallback fragments, set only when compilation failed
	err       error
}

// Compile translates pattern into a Matcher. Backslash escapes are unescaped and
// every character outside a placeholder is literal. It fails on an unterminated
// or unknown placeholder, a stray closing brace, or a trailing backslash.
func Compile(pattern string) (*Matcher, error) {
	fragments, err := tokenize(pattern)
	if err != nil {
		return nil, err
	}

	var expr strings.Builder
	expr.WriteString("^")
	for _, f := range fragments {
		if f.Kind == Literal {
			expr.WriteString(regexp.QuoteMeta(f.Text))
			continue
		}
		expr.WriteString(expressions[f.Kind])
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrPatternCompile, pattern, err)
	}
	return &Matcher{pattern: pattern, fragments: fragments, re: re}, nil
}

// New returns a Matcher for pattern, falling back to substring matching when the
// pattern cannot be compiled. It never fails.
func New(pattern string) *Matcher {
	m, err := Compile(pattern)
	if err == nil {
		return m
	}
	return &Matcher{pattern: pattern, literals: fallbackLiterals(pattern), err: err}
}

// Match reports whether pattern matches the whole of text.
func Match(pattern, text string) bool {
	return New(pattern).Match(text)
}

// Match reports whether text is matched. Compiled patterns must match the entire
// text; fallback patterns need each literal fragment to appear somewhere in it.
func (m *Matcher) Match(text string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}
	for _, lit := range m.literals {
		if !strings.Contains(text, lit) {
			return false
		}
	}
	return true
}

// Args returns the placeholder values captured from text, or nil when text does
// not match or the matcher is a fallback.
func (m *Matcher) Args(text string) []string {
	if m.re == nil {
		return nil
	}
	sub := m.re.FindStringSubmatch(text)
	if sub == nil {
		return nil
	}
	return sub[1:]
}

func (m *Matcher) Pattern() string       { return m.pattern }
func (m *Matcher) Fragments() []Fragment { return m.fragments }

// Fallback reports whether the pattern failed to compile.
func (m *Matcher) Fallback() bool { return m.re == nil }

// Err returns the compile error behind a fallback matcher.
func (m *Matcher) Err() error { return m.err }

func tokenize(pattern string) ([]Fragment, error) {
	var (
		fragments []Fragment
		lit       strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			fragments = append(fragments, Fragment{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '\\':
			if i+1 >= len(pattern) {
				return nil, fmt.Errorf("%w: trailing backslash in %q", ErrPatternCompile, pattern)
			}
			i++
			lit.WriteByte(pattern[i])
		case '{':
			end := strings.IndexByte(pattern[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated placeholder in %q", ErrPatternCompile, pattern)
			}
			name := pattern[i+1 : i+1+end]
			kind, ok := placeholders[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown placeholder {%s} in %q", ErrPatternCompile, name, pattern)
			}
			flush()
			fragments = append(fragments, Fragment{Kind: kind})
			i += end + 1
		case '}':
			return nil, fmt.Errorf("%w: unbalanced '}' in %q", ErrPatternCompile, pattern)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return fragments, nil
}

var placeholderToken = regexp.MustCompile(`\{[^{}]*\}`)

// fallbackLiterals strips every {...} token from pattern and returns the
// remaining non-blank fragments, trimmed.
func fallbackLiterals(pattern string) []string {
	var out []string
	for _, part := range placeholderToken.Split(pattern, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
