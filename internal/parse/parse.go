package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
)

// Unit is the kind of amount a Quantity carries.
type Unit string

const (
	// Grams means Amount is a mass in grams (liquids count 1 ml = 1 g).
	Grams Unit = "grams"
	// Item means Amount is a count of items ("3 oeufs").
	Item Unit = "unit"
)

// Quantity is the syntactic result of parsing one food fragment.
type Quantity struct {
	Amount    float64 `json:"amount"`
	Unit      Unit    `json:"unit"`
	FoodToken string  `json:"food_token"`
}

// massUnits maps unit tokens to their weight in grams.
var massUnits = map[string]float64{
	"mg":      0.001,
	"g":       1,
	"gr":      1,
	"gramme":  1,
	"grammes": 1,
	"kg":      1000,
	"ml":      1,
	"cl":      10,
	"l":       1000,
}

// measures are household containers with a fixed weight in grams,
// keyed by their folded singular form.
var measures = map[string]float64{
	"verre":    200,
	"tasse":    250,
	"bol":      300,
	"cuillere": 15,
}

const number = `(\d+(?:[.,]\d+)?)`

var (
	leadingNumberRegex = regexp.MustCompile(`^` + number + `\s*(.*)$`)
	unitRegex          = regexp.MustCompile(`^(grammes|gramme|gr|g|kg|mg|ml|cl|l)(?:\s+|$)(.*)$`)
	measureRegex       = regexp.MustCompile(`^(verres?|tasses?|bols?|cuill[eè]res?)(?:\s+|$)(.*)$`)
	trailingRegex      = regexp.MustCompile(`^(.+?)\s+` + number + `\s*(grammes|gramme|gr|g|kg|mg|ml|cl|l)?$`)
	articleRegex       = regexp.MustCompile(`^(?:(?:de|du)(?:\s+|$)|d')`)
)

// Parse converts one food fragment into a Quantity.
//
// Recognized shapes:
//
//	"200g poulet", "200 g de poulet", "0,5 kg riz"   -> grams
//	"3 oeufs", "1 banane"                            -> items
//	"1 verre de lait"                                -> 200 grams of lait
//	"poulet 200g"                                    -> grams (inverted)
//
// Parse never looks at the catalog. It fails with NO_QUANTITY when no number
// is found and EMPTY_FOOD when nothing is left after the quantity.
func Parse(text string) (Quantity, error) {
	t := food.Normalize(strings.ReplaceAll(text, "’", "'"))
	if t == "" {
		return Quantity{}, errors.NewNoQuantity(text)
	}

	if m := leadingNumberRegex.FindStringSubmatch(t); m != nil {
		amount, ok := parseNumber(m[1])
		if !ok {
			return Quantity{}, errors.NewNoQuantity(text)
		}
		rest := m[2]

		if u := unitRegex.FindStringSubmatch(rest); u != nil {
			return build(text, amount*massUnits[u[1]], Grams, u[2])
		}
		if u := measureRegex.FindStringSubmatch(rest); u != nil {
			return build(text, amount*measures[strings.TrimSuffix(food.Fold(u[1]), "s")], Grams, u[2])
		}
		return build(text, amount, Item, rest)
	}

	if m := trailingRegex.FindStringSubmatch(t); m != nil {
		amount, ok := parseNumber(m[2])
		if !ok {
			return Quantity{}, errors.NewNoQuantity(text)
		}
		if m[3] == "" {
			return build(text, amount, Item, m[1])
		}
		return build(text, amount*massUnits[m[3]], Grams, m[1])
	}

	return Quantity{}, errors.NewNoQuantity(text)
}

func build(text string, amount float64, unit Unit, phrase string) (Quantity, error) {
	phrase = strings.TrimSpace(articleRegex.ReplaceAllString(strings.TrimSpace(phrase), ""))
	if phrase == "" {
		return Quantity{}, errors.NewEmptyFood(text)
	}
	return Quantity{Amount: amount, Unit: unit, FoodToken: phrase}, nil
}

// parseNumber accepts both dot (1.5) and comma (1,5) decimal separators.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
