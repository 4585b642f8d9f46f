package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
)

// DefaultManualGrams is the portion assumed by a quick add without weight.
const DefaultManualGrams = 100

// Manual is a quick entry whose macros are typed in directly.
type Manual struct {
	Grams   float64      `json:"grams"`
	Profile food.Profile `json:"profile"`
}

var quickAddRegex = regexp.MustCompile(
	`^(?:` + number + `\s*(?:grammes|gramme|gr|g)\s+)?` +
		number + `\s*kcal\s+` +
		number + `\s*p\s+` +
		number + `\s*l\s+` +
		number + `\s*g$`)

// ParseQuickAdd parses "[30g] 150kcal 10p 5l 8g": optional portion weight,
// then kcal, protein (p), fat (l for lipides) and carbs (g for glucides).
func ParseQuickAdd(text string) (Manual, error) {
	m := quickAddRegex.FindStringSubmatch(food.Normalize(text))
	if m == nil {
		return Manual{}, errors.NewInvalidRequest("quick add format: [30g] 150kcal 10p 5l 8g")
	}

	grams := float64(DefaultManualGrams)
	if m[1] != "" {
		grams, _ = parseNumber(m[1])
	}

	values := make([]float64, 4)
	for i := range values {
		v, ok := parseNumber(m[i+2])
		if !ok {
			return Manual{}, errors.NewInvalidRequest(fmt.Sprintf("invalid number %q", m[i+2]))
		}
		values[i] = v
	}

	return Manual{
		Grams:   grams,
		Profile: food.Profile{Kcal: values[0], ProteinG: values[1], FatG: values[2], CarbG: values[3]},
	}, nil
}

// ParseFoodDefinition parses "nom|kcal|prot|lip|gluc[|basis[|unit_grams]]".
// The basis defaults to per_100g.
func ParseFoodDefinition(text string) (food.Food, error) {
	parts := strings.Split(text, "|")
	if len(parts) < 5 || len(parts) > 7 {
		return food.Food{}, errors.NewInvalidRequest("food format: nom|kcal|prot|lip|gluc[|unit[|grammes]]")
	}

	name := food.Normalize(parts[0])
	if name == "" {
		return food.Food{}, errors.NewInvalidRequest("food name is required")
	}

	values := make([]float64, 4)
	for i := range values {
		v, ok := parseNumber(strings.TrimSpace(parts[i+1]))
		if !ok {
			return food.Food{}, errors.NewInvalidRequest(fmt.Sprintf("values must be non-negative numbers, got %q", parts[i+1]))
		}
		values[i] = v
	}

	f := food.Food{
		Name:    name,
		Basis:   food.Per100g,
		Profile: food.Profile{Kcal: values[0], ProteinG: values[1], FatG: values[2], CarbG: values[3]},
	}

	if len(parts) >= 6 {
		basis, err := food.ParseBasis(parts[5])
		if err != nil {
			return food.Food{}, errors.NewInvalidRequest(err.Error())
		}
		f.Basis = basis
	}
	if len(parts) == 7 {
		g, ok := parseNumber(strings.TrimSpace(parts[6]))
		if !ok {
			return food.Food{}, errors.NewInvalidRequest(fmt.Sprintf("invalid unit weight %q", parts[6]))
		}
		f.UnitGrams = g
	}

	return f, nil
}
