package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/xrash/smetrics"

	"github.com/hpungsan/nutri/internal/food"
)

// MinScore is the similarity below which a catalog name is not a candidate.
const MinScore = 0.75

// Score rates how well a query token matches a catalog name, in [0, 1].
// It is pure and deterministic:
//
//	1.00  same folded text ("pates" vs "pâtes")
//	0.97  same singular form ("oeufs" vs "oeuf")
//	0.75+ token is a word run inside the name ("poulet" in "blanc de poulet")
//	0.70+ name is a word run inside the token ("poulet" in "poulet roti maison")
//	0.85 * Jaro-Winkler otherwise
func Score(token, name string) float64 {
	t, n := food.Fold(token), food.Fold(name)
	if t == "" || n == "" {
		return 0
	}
	if t == n {
		return 1
	}

	st, sn := food.Singular(t), food.Singular(n)
	if st == sn {
		return 0.97
	}
	if containsWords(sn, st) {
		return 0.75 + 0.2*ratio(st, sn)
	}
	if containsWords(st, sn) {
		return 0.70 + 0.2*ratio(sn, st)
	}
	return 0.85 * smetrics.JaroWinkler(st, sn, 0.7, 4)
}

// containsWords reports whether needle appears in hay on word boundaries.
func containsWords(hay, needle string) bool {
	return strings.Contains(" "+hay+" ", " "+needle+" ")
}

func ratio(short, long string) float64 {
	return float64(utf8.RuneCountInString(short)) / float64(utf8.RuneCountInString(long))
}
