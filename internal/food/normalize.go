package food

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// ligatures are not decomposed by NFD, so they are spelled out first.
var ligatures = strings.NewReplacer("œ", "oe", "Œ", "oe", "æ", "ae", "Æ", "ae", "’", "'")

// Normalize normalizes a food name or query:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return s
}

// Fold returns the normalized form of s with accents removed and
// ligatures expanded ("Pâtes" -> "pates", "œuf" -> "oeuf").
// It is used for matching only; catalog keys keep their accents.
func Fold(s string) string {
	s = ligatures.Replace(Normalize(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Singular strips French/English plural endings word by word after folding:
// "oeufs" -> "oeuf", "noix" stays "noix" (too short to strip safely).
func Singular(s string) string {
	words := strings.Fields(Fold(s))
	for i, w := range words {
		if len(w) > 4 && (strings.HasSuffix(w, "s") || strings.HasSuffix(w, "x")) {
			words[i] = w[:len(w)-1]
		}
	}
	return strings.Join(words, " ")
}
