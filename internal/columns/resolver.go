package columns

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Match is the outcome of resolving a logical field against a header row.
// Callers branch on Found; a missing column is not an error at this level.
type Match struct {
	Header string
	Index  int
	Found  bool
	Fuzzy  bool
}

// NotFound is the zero match.
func NotFound() Match {
	return Match{Index: -1}
}

var stopwords = map[string]struct{}{
	"a": {}, "o": {}, "e": {}, "as": {}, "os": {},
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {},
	"em": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"para": {}, "por": {}, "com": {},
}

// Resolve maps a logical column name onto one of headers. An exact
// case-insensitive match wins; otherwise the first header, in order, that
// contains every keyword of the logical name is returned.
func Resolve(logical string, headers []string) Match {
	if m, ok := exact(logical, headers, nil); ok {
		return m
	}
	if m, ok := fuzzy(logical, headers, nil); ok {
		return m
	}
	return NotFound()
}

// ResolveAny tries every alias for an exact match before falling back to
// keyword matching, again in alias order.
func ResolveAny(aliases []string, headers []string) Match {
	return resolveAny(aliases, headers, nil)
}

func resolveAny(aliases []string, headers []string, claimed map[int]struct{}) Match {
	for _, alias := range aliases {
		if m, ok := exact(alias, headers, claimed); ok {
			return m
		}
	}
	for _, alias := range aliases {
		if m, ok := fuzzy(alias, headers, claimed); ok {
			return m
		}
	}
	return NotFound()
}

func exact(logical string, headers []string, claimed map[int]struct{}) (Match, bool) {
	want := strings.TrimSpace(logical)
	for i, h := range headers {
		if _, taken := claimed[i]; taken {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return Match{Header: h, Index: i, Found: true}, true
		}
	}
	return Match{}, false
}

func fuzzy(logical string, headers []string, claimed map[int]struct{}) (Match, bool) {
	tokens := Keywords(logical)
	if len(tokens) == 0 {
		return Match{}, false
	}
	for i, h := range headers {
		if _, taken := claimed[i]; taken {
			continue
		}
		normalized := Normalize(h)
		if lo.EveryBy(tokens, func(tok string) bool { return strings.Contains(normalized, tok) }) {
			return Match{Header: h, Index: i, Found: true, Fuzzy: true}, true
		}
	}
	return Match{}, false
}

// Keywords splits a logical name into lowercase, accent-free tokens with
// Portuguese stopwords removed.
func Keywords(logical string) []string {
	fields := strings.FieldsFunc(Normalize(logical), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return lo.Uniq(lo.Filter(fields, func(f string, _ int) bool {
		_, stop := stopwords[f]
		return !stop
	}))
}

// Normalize lowercases s and strips combining marks, so "Código" and
// "codigo" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}
