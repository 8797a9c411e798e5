package search

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis/char/asciifolding"
	"golang.org/x/text/unicode/norm"
)

// folder is the char filter of the index analyzer. It holds no state.
var folder = asciifolding.New()

// Fold lowercases s and folds it to ASCII the way the index analyzer does,
// so "Éole" folds to "eole" and "Œuvre" to "oeuvre". Combining marks left
// after composition are dropped.
func Fold(s string) string {
	folded := folder.Filter([]byte(norm.NFC.String(s)))
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, string(folded))
}

// Positions returns the sorted rune offsets of name covered by a case- and
// diacritic-insensitive literal occurrence of any of the folded terms
func Positions(name string, terms []string) []int {
	folded, origin := foldWithOrigin(name)

	covered := make(map[int]struct{})
	for _, term := range terms {
		needle := []rune(term)
		if len(needle) == 0 || len(needle) > len(folded) {
			continue
		}
		for start := 0; start+len(needle) <= len(folded); start++ {
			if !slices.Equal(folded[start:start+len(needle)], needle) {
				continue
			}
			for k := start; k < start+len(needle); k++ {
				covered[origin[k]] = struct{}{}
			}
		}
	}

	positions := make([]int, 0, len(covered))
	for pos := range covered {
		positions = append(positions, pos)
	}
	slices.Sort(positions)
	return positions
}

// foldWithOrigin folds name rune by rune and records, for each folded rune, the
// index of the name rune it came from. A rune folding to several runes
// ("œ" to "oe") maps all of them to its own index.
func foldWithOrigin(name string) ([]rune, []int) {
	folded := make([]rune, 0, len(name))
	origin := make([]int, 0, len(name))
	var buf [utf8.UTFMax]byte
	i := 0
	for _, r := range name {
		n := utf8.EncodeRune(buf[:], r)
		for _, f := range string(folder.Filter(buf[:n])) {
			if unicode.Is(unicode.Mn, f) {
				continue
			}
			folded = append(folded, unicode.ToLower(f))
			origin = append(origin, i)
		}
		i++
	}
	return folded, origin
}
