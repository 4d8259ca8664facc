package finder

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameNormalizer is read-only after construction. cases.Caser and the
// transform chain are stateful, so they are created per call.
type nameNormalizer struct {
	abbrevs [][2]string
}

func newNameNormalizer(abbrevs [][2]string) *nameNormalizer {
	return &nameNormalizer{abbrevs: abbrevs}
}

// normalize folds case, strips diacritics, expands abbreviations and reduces
// punctuation to single spaces: "München Hbf." -> "munchen hauptbahnhof".
func (n *nameNormalizer) normalize(s string) string {
	s = cases.Fold().String(s)
	s = stripDiacritics(s)

	words := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.')
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = n.expand(w)
		for _, part := range strings.Split(w, ".") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return strings.Join(out, " ")
}

// expand replaces w if it is an abbreviation. A word ending in "." may also end
// in one: "hauptstr." -> "hauptstrasse".
func (n *nameNormalizer) expand(w string) string {
	bare := strings.TrimRight(w, ".")
	for _, ab := range n.abbrevs {
		if bare == ab[0] {
			return ab[1]
		}
	}
	if !strings.HasSuffix(w, ".") {
		return w
	}
	for _, ab := range n.abbrevs {
		if len(bare) > len(ab[0]) && strings.HasSuffix(bare, ab[0]) {
			return bare[:len(bare)-len(ab[0])] + ab[1]
		}
	}
	return w
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// EditDistance is the levenshtein distance between a and b, counted in runes.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// isPermutation reports whether the normalized names hold the same words in another order.
func isPermutation(a, b string) bool {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) != len(wb) || len(wa) < 2 {
		return false
	}
	sort.Strings(wa)
	sort.Strings(wb)
	for i := range wa {
		if wa[i] != wb[i] {
			return false
		}
	}
	return true
}

// containsWords reports whether every word of needle occurs in haystack.
func containsWords(haystack, needle string) bool {
	words := strings.Fields(needle)
	if len(words) == 0 {
		return false
	}
	have := make(map[string]struct{})
	for _, w := range strings.Fields(haystack) {
		have[w] = struct{}{}
	}
	for _, w := range words {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}

// normalizedDistance compares two normalized names: 0 on equality or exact word
// permutation, the edit distance otherwise.
func normalizedDistance(name, stop string) (int, bool) {
	if name == stop {
		return 0, false
	}
	if isPermutation(name, stop) {
		return 0, true
	}
	return EditDistance(name, stop), false
}

// NameCost is log_1.5 of the edit distance, 0 for an exact match.
func NameCost(distance int) float64 {
	if distance <= 0 {
		return 0
	}
	return math.Log(float64(distance)) / math.Log(1.5)
}
