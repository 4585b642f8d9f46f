// Package feedback renders ledger state as chat-ready Markdown.
// Every function is pure: same inputs, same text.
package feedback

import (
	"fmt"
	"math"
	"strings"

	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ledger"
)

// BarLength is the number of dots in a progress bar.
const BarLength = 8

// macro describes one line of the macro table.
type macro struct {
	emoji string
	label string
	unit  string
	get   func(food.Profile) float64
}

var macros = []macro{
	{"🔥", "Kcal", "", func(p food.Profile) float64 { return p.Kcal }},
	{"🥩", "Prot", "g", func(p food.Profile) float64 { return p.ProteinG }},
	{"🧈", "Lip", "g", func(p food.Profile) float64 { return p.FatG }},
	{"🍚", "Gluc", "g", func(p food.Profile) float64 { return p.CarbG }},
}

// ProgressBar renders current/goal as filled and empty dots plus a percent,
// capped at 100%: "●●●●○○○○ 50%". A zero goal renders as 0%.
func ProgressBar(current, goal float64, length int) string {
	pct := 0.0
	if goal > 0 {
		pct = math.Min(100, current/goal*100)
	}
	if math.IsNaN(pct) {
		pct = 0
	}
	pct = math.Max(0, pct)
	filled := int(pct / (100 / float64(length)))
	return strings.Repeat("●", filled) + strings.Repeat("○", length-filled) + fmt.Sprintf(" %.0f%%", pct)
}

// Status renders the day's totals against goals.
func Status(l ledger.DailyLedger, goals food.Goals) string {
	var b strings.Builder
	b.WriteString("📊 **Statut du jour**\n\n")
	writeTable(&b, l, goals)
	return b.String()
}

func writeTable(b *strings.Builder, l ledger.DailyLedger, goals food.Goals) {
	remaining := l.Remaining(goals)
	for _, m := range macros {
		current, goal, rest := m.get(l.Totals), m.get(goals), m.get(remaining)
		fmt.Fprintf(b, "%s %s: %.0f/%.0f%s\n", m.emoji, m.label, current, goal, m.unit)
		fmt.Fprintf(b, "    %s (%s)\n\n", ProgressBar(current, goal, BarLength), restText(rest, m.unit, true))
	}
}

// restText renders the remaining amount: "-120g", "✓", or "+50g⚠️" when
// over the goal and overflow is shown.
func restText(rest float64, unit string, showOverflow bool) string {
	r := math.Round(rest)
	switch {
	case r > 0:
		return fmt.Sprintf("-%.0f%s", r, unit)
	case r < 0 && showOverflow:
		return fmt.Sprintf("+%.0f%s⚠️", -r, unit)
	default:
		return "✓"
	}
}

func writeProgress(b *strings.Builder, l ledger.DailyLedger, goals food.Goals) {
	remaining := l.Remaining(goals)
	b.WriteString("**Progression:**\n")
	for _, m := range macros {
		fmt.Fprintf(b, "%s %s (%s)\n", m.emoji, ProgressBar(m.get(l.Totals), m.get(goals), BarLength), restText(m.get(remaining), m.unit, false))
	}
}

func profileLine(p food.Profile) string {
	return fmt.Sprintf("🔥%.0f | 🥩%.0fg | 🧈%.0fg | 🍚%.0fg", p.Kcal, p.ProteinG, p.FatG, p.CarbG)
}

// Describe renders an entry's quantity and food: "200g poulet", "2 × yaourt".
func Describe(e ledger.Entry) string {
	if e.Grams > 0 {
		return fmt.Sprintf("%.0fg %s", e.Grams, e.FoodName)
	}
	return fmt.Sprintf("%s × %s", formatAmount(e.Quantity.Amount), e.FoodName)
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
