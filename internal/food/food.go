package food

import (
	"fmt"
	"math"
)

// Basis tells how a food's macro profile is expressed.
type Basis string

const (
	// Per100g means the profile is for 100 grams of the food.
	Per100g Basis = "per_100g"
	// PerUnit means the profile is for one item (one egg, one bar...).
	PerUnit Basis = "per_unit"
)

// ParseBasis converts a user or storage string to a Basis.
// Empty input defaults to Per100g.
func ParseBasis(s string) (Basis, error) {
	switch Normalize(s) {
	case "", "per_100g", "100g", "g":
		return Per100g, nil
	case "per_unit", "unit", "unite", "unité", "u", "piece", "pièce":
		return PerUnit, nil
	}
	return "", fmt.Errorf("unknown basis %q", s)
}

// Profile holds macro-nutrient quantities.
type Profile struct {
	Kcal     float64 `json:"kcal" yaml:"kcal"`
	ProteinG float64 `json:"protein_g" yaml:"protein_g"`
	FatG     float64 `json:"fat_g" yaml:"fat_g"`
	CarbG    float64 `json:"carb_g" yaml:"carb_g"`
}

// Add returns the component-wise sum of p and o.
func (p Profile) Add(o Profile) Profile {
	return Profile{
		Kcal:     p.Kcal + o.Kcal,
		ProteinG: p.ProteinG + o.ProteinG,
		FatG:     p.FatG + o.FatG,
		CarbG:    p.CarbG + o.CarbG,
	}
}

// Sub returns the component-wise difference p - o. Results may be negative.
func (p Profile) Sub(o Profile) Profile {
	return Profile{
		Kcal:     p.Kcal - o.Kcal,
		ProteinG: p.ProteinG - o.ProteinG,
		FatG:     p.FatG - o.FatG,
		CarbG:    p.CarbG - o.CarbG,
	}
}

// Scale multiplies every component by f.
func (p Profile) Scale(f float64) Profile {
	return Profile{
		Kcal:     p.Kcal * f,
		ProteinG: p.ProteinG * f,
		FatG:     p.FatG * f,
		CarbG:    p.CarbG * f,
	}
}

// IsZero reports whether all components are zero.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

// Validate rejects negative components.
func (p Profile) Validate() error {
	for _, v := range []float64{p.Kcal, p.ProteinG, p.FatG, p.CarbG} {
		if !finite(v) {
			return fmt.Errorf("macro values must be finite numbers")
		}
		if v < 0 {
			return fmt.Errorf("macro values must be non-negative")
		}
	}
	return nil
}

// Goals are the fixed daily targets. Same shape as Profile.
type Goals = Profile

// DefaultGoals are the targets used when no configuration overrides them.
func DefaultGoals() Goals {
	return Goals{Kcal: 3100, ProteinG: 160, FatG: 90, CarbG: 400}
}

// Food is a catalog entry.
type Food struct {
	// Name is the canonical key (normalized, unique)
	Name string `json:"name" yaml:"name"`

	// Basis tells whether Profile is per 100 g or per item
	Basis Basis `json:"basis" yaml:"basis"`

	// Profile is the macro profile for the basis amount
	Profile Profile `json:"profile" yaml:"profile"`

	// UnitGrams is the typical weight of one item for per_100g foods
	// (an egg is 60 g). Zero when unknown.
	UnitGrams float64 `json:"unit_grams,omitempty" yaml:"unit_grams,omitempty"`
}

// Validate checks a food before it enters the catalog.
func (f Food) Validate() error {
	if Normalize(f.Name) == "" {
		return fmt.Errorf("food name is required")
	}
	if f.Basis != Per100g && f.Basis != PerUnit {
		return fmt.Errorf("invalid basis %q", f.Basis)
	}
	if !finite(f.UnitGrams) || f.UnitGrams < 0 {
		return fmt.Errorf("unit_grams must be non-negative")
	}
	return f.Profile.Validate()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
