// Package similarity provides the lexical and structural similarity
// functions used by the fusion engines. All functions are pure and return
// scores in [0,1]; none of them do semantic matching.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/graphloom/loom/internal/core/model"
)

// Combined-score weights.
const (
	weightLevenshtein = 0.3
	weightNGram       = 0.3
	weightCosine      = 0.2
	weightLCS         = 0.2
)

// Levenshtein returns 1 - editDistance/maxLen, computed over runes so
// multi-byte scripts are measured per character.
func Levenshtein(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(ra, rb))/float64(maxLen)
}

func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// NGramJaccard computes character bigram Jaccard over lowercased input.
func NGramJaccard(a, b string) float64 {
	return NGramJaccardN(a, b, 2)
}

// NGramJaccardN computes character n-gram Jaccard. A string shorter than
// n contributes itself as its single gram.
func NGramJaccardN(a, b string, n int) float64 {
	ga := ngrams(strings.ToLower(a), n)
	gb := ngrams(strings.ToLower(b), n)
	inter, union := 0, len(gb)
	for g := range ga {
		if _, ok := gb[g]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

func ngrams(s string, n int) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	if len(runes) < n {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}

// CharCosine computes cosine similarity of per-character frequency
// vectors over lowercased input.
func CharCosine(a, b string) float64 {
	fa := charFreq(a)
	fb := charFreq(b)
	var dot, normA, normB float64
	for r, ca := range fa {
		if cb, ok := fb[r]; ok {
			dot += float64(ca) * float64(cb)
		}
		normA += float64(ca) * float64(ca)
	}
	for _, cb := range fb {
		normB += float64(cb) * float64(cb)
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func charFreq(s string) map[rune]int {
	freq := make(map[rune]int)
	for _, r := range strings.ToLower(s) {
		freq[r]++
	}
	return freq
}

// LCS computes 2*lcsLen/(len(a)+len(b)) over runes.
func LCS(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0.0
	}
	return 2.0 * float64(lcsLength(ra, rb)) / float64(total)
}

func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return prev[len(b)]
}

// String is the combined lexical score: exact equality short-circuits to
// 1.0, an empty side to 0.0, otherwise the weighted blend of the four
// base metrics.
func String(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	return weightLevenshtein*Levenshtein(a, b) +
		weightNGram*NGramJaccard(a, b) +
		weightCosine*CharCosine(a, b) +
		weightLCS*LCS(a, b)
}

// ListJaccard treats both slices as sets.
func ListJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	sa := make(map[string]struct{}, len(a))
	for _, s := range a {
		sa[s] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, s := range b {
		sb[s] = struct{}{}
	}
	inter, union := 0, len(sb)
	for s := range sa {
		if _, ok := sb[s]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// Structural compares two property maps: key-set Jaccard (weight 0.5)
// plus the average per-common-key value similarity (weight 0.5). Lists
// compare as set Jaccard, strings lexically, everything else by equality.
func Structural(a, b model.Properties) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter, union := 0, len(b)
	var valueSum float64
	for k, va := range a {
		vb, ok := b[k]
		if !ok {
			union++
			continue
		}
		inter++
		valueSum += valueSimilarity(va, vb)
	}
	keySim := float64(inter) / float64(union)
	valueSim := 0.0
	if inter > 0 {
		valueSim = valueSum / float64(inter)
	}
	return keySim*0.5 + valueSim*0.5
}

func valueSimilarity(a, b model.Value) float64 {
	switch {
	case a.Kind == model.KindString && b.Kind == model.KindString:
		return String(a.Str, b.Str)
	case a.Kind == model.KindList && b.Kind == model.KindList:
		return ListJaccard(a.List, b.List)
	case a.Equal(b):
		return 1.0
	}
	return 0.0
}

// Context compares two context snippets by keyword overlap: lowercased
// whitespace tokens longer than one rune, as a Jaccard over the token
// sets.
func Context(a, b string) float64 {
	ka := keywords(a)
	kb := keywords(b)
	if len(ka) == 0 && len(kb) == 0 {
		return 1.0
	}
	if len(ka) == 0 || len(kb) == 0 {
		return 0.0
	}
	inter, union := 0, len(kb)
	for w := range ka {
		if _, ok := kb[w]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func keywords(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) {
		if utf8.RuneCountInString(tok) > 1 {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Entity blends name (0.4), exact type match (0.3), structural property
// similarity (0.2) and alias Jaccard (0.1).
func Entity(a, b model.Entity) float64 {
	typeSim := 0.0
	if a.Type == b.Type {
		typeSim = 1.0
	}
	return 0.4*String(a.Name, b.Name) +
		0.3*typeSim +
		0.2*Structural(a.Properties, b.Properties) +
		0.1*aliasJaccard(a.Aliases, b.Aliases)
}

// aliasJaccard differs from ListJaccard on the empty-both case: two
// entities without aliases share no alias evidence, which scores 0.
func aliasJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	return ListJaccard(a, b)
}

// Relation blends lexical type similarity (0.5) with head and tail id
// similarity (0.25 each). The relation fusion engine applies its own
// duplicate test on top of this.
func Relation(a, b model.Relation) float64 {
	return 0.5*String(a.Type, b.Type) +
		0.25*String(a.HeadEntityID, b.HeadEntityID) +
		0.25*String(a.TailEntityID, b.TailEntityID)
}

// Matrix computes the symmetric pairwise combined-score matrix.
func Matrix(items []string) [][]float64 {
	n := len(items)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		matrix[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			s := String(items[i], items[j])
			matrix[i][j] = s
			matrix[j][i] = s
		}
	}
	return matrix
}

// Match is one fuzzy-match candidate with its combined score.
type Match struct {
	Candidate string
	Score     float64
}

// FuzzyMatch scores the query against every candidate and returns the
// topK best matches, ties broken by candidate order.
func FuzzyMatch(query string, candidates []string, topK int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, Match{Candidate: c, Score: String(query, c)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches
}
