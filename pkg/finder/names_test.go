package finder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{a: "kitten", b: "sitting", want: 3},
		{a: "kitten", b: "kitten", want: 0},
		{a: "", b: "", want: 0},
		{a: "", b: "abc", want: 3},
		{a: "münchen", b: "munchen", want: 1},
	}

	for _, tt := range testCases {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, EditDistance(tt.a, tt.b))
			assert.Equal(t, tt.want, EditDistance(tt.b, tt.a))
		})
	}
}

func TestNormalize(t *testing.T) {
	n := newNameNormalizer(DefaultConfig().abbreviations())

	testCases := []struct {
		in   string
		want string
	}{
		{in: "München Hbf.", want: "munchen hauptbahnhof"},
		{in: "München Hbf", want: "munchen hauptbahnhof"},
		{in: "Hauptstr. 5", want: "hauptstrasse 5"},
		{in: "  Karl-Marx-Platz ", want: "karl marx platz"},
		{in: "Bf. Süd", want: "bahnhof sud"},
		{in: "Crêpe  Café", want: "crepe cafe"},
		{in: "St. Martin", want: "sankt martin"},
		{in: "...", want: ""},
	}

	for _, tt := range testCases {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.normalize(tt.in))
		})
	}
}

func TestIsPermutation(t *testing.T) {
	assert.True(t, isPermutation("karl marx platz", "platz karl marx"))
	assert.True(t, isPermutation("bahnhof nord", "nord bahnhof"))
	assert.False(t, isPermutation("markt", "markt"), "single words are equal, not permuted")
	assert.False(t, isPermutation("bahnhof nord", "bahnhof sud"))
	assert.False(t, isPermutation("a b c", "a b"))
}

func TestNormalizedDistance(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     string
		want     int
		wantPerm bool
	}{
		{name: "equal", a: "markt", b: "markt", want: 0},
		{name: "permutation", a: "nord bahnhof", b: "bahnhof nord", want: 0, wantPerm: true},
		{name: "typo", a: "marktplatz", b: "marktplaz", want: 1},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, perm := normalizedDistance(tt.a, tt.b)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPerm, perm)
		})
	}
}

func TestCandidateNameDistance(t *testing.T) {
	n := newNameNormalizer(DefaultConfig().abbreviations())
	c := &Candidate{ID: 1, Names: []string{"Marktplatz", "Platz am Markt"},
		normNames: []string{n.normalize("Marktplatz"), n.normalize("Platz am Markt")}}
	assert.Equal(t, -1, c.NameDistance(), "unbound")

	bound := c.bind("Markt Platz am", n.normalize("Markt Platz am"), 2)
	assert.Equal(t, 0, bound.NameDistance())
	assert.True(t, bound.IsExactPermutation())
	assert.Equal(t, "Markt Platz am", bound.MatchedStop())
	assert.Equal(t, 2.0, bound.NodeCost())
	assert.Equal(t, -1, c.NameDistance(), "binding copies")

	typo := c.bind("Marktplaz", n.normalize("Marktplaz"), 0)
	assert.Equal(t, 1, typo.NameDistance())
	assert.False(t, typo.IsExactPermutation())
}
