// Package lexicon holds the keyword and phrase tables shared by the intent
// classifier, the report field extractor and the dialogue controller.
//
// All matching is done against text produced by Normalize.
package lexicon

import (
	"regexp"
	"sort"
	"strings"
)

var spaceRE = regexp.MustCompile(`\s+`)

var quoteReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
)

// Normalize lowercases s, folds typographic quotes and collapses whitespace.
func Normalize(s string) string {
	s = quoteReplacer.Replace(strings.ToLower(s))
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

// Set matches any of a list of words or phrases on word boundaries.
type Set struct {
	re     *regexp.Regexp
	prefix *regexp.Regexp
}

// Words builds a Set where each entry may carry a plural "s" or "es" suffix.
func Words(words ...string) *Set {
	return newSet(alternation(words), `(?:s|es)?`)
}

// Phrases builds a Set matching entries exactly, on word boundaries.
func Phrases(phrases ...string) *Set {
	return newSet(alternation(phrases), "")
}

func newSet(alt, suffix string) *Set {
	return &Set{
		re:     regexp.MustCompile(`\b(?:` + alt + `)` + suffix + `\b`),
		prefix: regexp.MustCompile(`^(?:` + alt + `)` + suffix + `\b`),
	}
}

// Match reports whether text contains any entry.
func (s *Set) Match(text string) bool {
	return s.re.MatchString(text)
}

// HasPrefix reports whether text starts with an entry.
func (s *Set) HasPrefix(text string) bool {
	return s.prefix.MatchString(text)
}

// Find returns the leftmost entry found in text, or "".
func (s *Set) Find(text string) string {
	return s.re.FindString(text)
}

// Indexes returns the byte spans of every entry found in text.
func (s *Set) Indexes(text string) [][]int {
	return s.re.FindAllStringIndex(text, -1)
}

// alternation quotes entries and orders them longest first so multi-word
// phrases win over their prefixes.
func alternation(entries []string) string {
	sorted := append([]string(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, e := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(e), " ", `\s+`)
	}
	return strings.Join(quoted, "|")
}

// Patterns matches if any of its regular expressions matches.
type Patterns []*regexp.Regexp

// CompilePatterns compiles exprs, panicking on invalid input.
func CompilePatterns(exprs ...string) Patterns {
	p := make(Patterns, len(exprs))
	for i, e := range exprs {
		p[i] = regexp.MustCompile(e)
	}
	return p
}

// Match reports whether any pattern matches text.
func (p Patterns) Match(text string) bool {
	for _, re := range p {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
