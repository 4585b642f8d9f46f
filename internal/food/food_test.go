package food

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple lowercase", input: "Poulet", want: "poulet"},
		{name: "trim whitespace", input: "  riz  ", want: "riz"},
		{name: "collapse internal whitespace", input: "blanc   de  poulet", want: "blanc de poulet"},
		{name: "tabs and newlines", input: "pain\t\n complet", want: "pain complet"},
		{name: "keeps accents", input: "Pâtes", want: "pâtes"},
		{name: "empty string", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Pâtes", "pates"},
		{"œufs", "oeufs"},
		{"crème fraîche", "creme fraiche"},
		{"  Purée   de pommes ", "puree de pommes"},
		{"poulet", "poulet"},
	}

	for _, tt := range tests {
		if got := Fold(tt.input); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSingular(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"oeufs", "oeuf"},
		{"oeuf", "oeuf"},
		{"œufs", "oeuf"},
		{"pâtes", "pate"},
		{"noix", "noix"},
		{"pois chiches", "pois chiche"},
		{"riz", "riz"},
	}

	for _, tt := range tests {
		if got := Singular(tt.input); got != tt.want {
			t.Errorf("Singular(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestProfileArithmetic(t *testing.T) {
	a := Profile{Kcal: 100, ProteinG: 10, FatG: 5, CarbG: 2}
	b := Profile{Kcal: 50, ProteinG: 1, FatG: 1, CarbG: 8}

	if got := a.Add(b); got != (Profile{Kcal: 150, ProteinG: 11, FatG: 6, CarbG: 10}) {
		t.Errorf("Add = %+v", got)
	}
	if got := b.Sub(a); got != (Profile{Kcal: -50, ProteinG: -9, FatG: -4, CarbG: 6}) {
		t.Errorf("Sub = %+v (negative values must be kept)", got)
	}
	if got := a.Scale(2); got != (Profile{Kcal: 200, ProteinG: 20, FatG: 10, CarbG: 4}) {
		t.Errorf("Scale = %+v", got)
	}
	if !(Profile{}).IsZero() {
		t.Error("zero profile should report IsZero")
	}
	if a.IsZero() {
		t.Error("non-zero profile reported IsZero")
	}
}

func TestParseBasis(t *testing.T) {
	tests := []struct {
		input   string
		want    Basis
		wantErr bool
	}{
		{"", Per100g, false},
		{"per_100g", Per100g, false},
		{"100g", Per100g, false},
		{"unit", PerUnit, false},
		{"Unité", PerUnit, false},
		{"per_unit", PerUnit, false},
		{"litre", "", true},
	}

	for _, tt := range tests {
		got, err := ParseBasis(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBasis(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseBasis(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestFoodValidate(t *testing.T) {
	good := Food{Name: "poulet", Basis: Per100g, Profile: Profile{Kcal: 165, ProteinG: 31, FatG: 3.6}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Food{
		{Name: " ", Basis: Per100g},
		{Name: "x", Basis: "per_litre"},
		{Name: "x", Basis: Per100g, Profile: Profile{Kcal: -1}},
		{Name: "x", Basis: Per100g, UnitGrams: -5},
		{Name: "x", Basis: Per100g, Profile: Profile{Kcal: math.NaN()}},
		{Name: "x", Basis: Per100g, Profile: Profile{ProteinG: math.Inf(1)}},
		{Name: "x", Basis: Per100g, Profile: Profile{CarbG: math.Inf(-1)}},
		{Name: "x", Basis: Per100g, UnitGrams: math.Inf(1)},
		{Name: "x", Basis: Per100g, UnitGrams: math.NaN()},
	}
	for i, f := range bads {
		if err := f.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
