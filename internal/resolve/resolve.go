// Package resolve turns a parsed quantity into a macro contribution using
// the food catalog.
package resolve

import (
	"unicode/utf8"

	"github.com/hpungsan/nutri/internal/catalog"
	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/parse"
)

// Catalog is the read side of catalog.Provider.
type Catalog interface {
	LookupExact(name string) (food.Food, bool)
	SearchFuzzy(token string) []catalog.Match
}

// Result is a resolved quantity.
type Result struct {
	Food         food.Food      `json:"food"`
	Quantity     parse.Quantity `json:"quantity"`
	Contribution food.Profile   `json:"contribution"`
	// Score is 1 for an exact match, the fuzzy score otherwise
	Score float64 `json:"score"`
}

// Resolver looks foods up in a catalog and scales their profile.
type Resolver struct {
	catalog Catalog
}

// New creates a Resolver over c.
func New(c Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve finds the food named by q.FoodToken and computes its contribution.
// It fails with NOT_FOUND when nothing scores above catalog.MinScore and with
// AMBIGUOUS when the best candidates tie on both score and name length.
func (r *Resolver) Resolve(q parse.Quantity) (Result, error) {
	f, score, err := r.Lookup(q.FoodToken)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Food:         f,
		Quantity:     q,
		Contribution: Contribution(f, q),
		Score:        score,
	}, nil
}

// Lookup returns the catalog food for token: exact match first, then the
// best fuzzy candidate.
func (r *Resolver) Lookup(token string) (food.Food, float64, error) {
	if f, ok := r.catalog.LookupExact(token); ok {
		return f, 1, nil
	}

	matches := r.catalog.SearchFuzzy(token)
	if len(matches) == 0 {
		return food.Food{}, 0, errors.NewNotFound(token)
	}

	best := matches[0]
	bestLen := utf8.RuneCountInString(best.Food.Name)
	tied := []string{best.Food.Name}
	for _, m := range matches[1:] {
		if m.Score != best.Score || utf8.RuneCountInString(m.Food.Name) != bestLen {
			break
		}
		tied = append(tied, m.Food.Name)
	}
	if len(tied) > 1 {
		return food.Food{}, 0, errors.NewAmbiguous(token, tied)
	}
	return best.Food, best.Score, nil
}

// Contribution scales f's profile to the requested quantity.
//
//	per_100g + grams -> profile * amount/100
//	per_100g + unit  -> amount items of UnitGrams each; amount is read as
//	                    grams when the food has no typical item weight
//	per_unit + unit  -> profile * amount
//	per_unit + grams -> profile * amount (the amount counts items whatever
//	                    the requested unit)
func Contribution(f food.Food, q parse.Quantity) food.Profile {
	if f.Basis == food.PerUnit {
		return f.Profile.Scale(q.Amount)
	}
	return f.Profile.Scale(Grams(f, q) / 100)
}

// Grams returns the weight the quantity stands for on a per_100g food.
// It returns 0 for per_unit foods.
func Grams(f food.Food, q parse.Quantity) float64 {
	if f.Basis == food.PerUnit {
		return 0
	}
	if q.Unit == parse.Item && f.UnitGrams > 0 {
		return q.Amount * f.UnitGrams
	}
	return q.Amount
}
