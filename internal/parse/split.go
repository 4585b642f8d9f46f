package parse

import (
	"regexp"
	"strings"
)

var (
	// A comma between digits is a decimal separator only for a quantity that
	// opens a fragment ("1,5 banane") or that carries a unit ("riz 0,5kg").
	// "riz 200,3 oeufs" stays two items.
	leadingDecimalRegex = regexp.MustCompile(`(?i)(^|[,;+\n]\s*|\bet\s+)(\d+),(\d+)`)
	unitDecimalRegex    = regexp.MustCompile(`(\d+),(\d+)(\s*(?:grammes|gramme|gr|kg|mg|ml|cl|g|l)\b)`)
	separatorRegex      = regexp.MustCompile(`(?i)[,;+\n]+|\bet\b`)
)

// Split breaks a message into food fragments on commas, semicolons, plus
// signs, newlines and the word "et". Empty fragments are dropped.
//
//	"200g poulet, 3 oeufs et 1 banane" -> ["200g poulet" "3 oeufs" "1 banane"]
func Split(text string) []string {
	text = leadingDecimalRegex.ReplaceAllString(text, "${1}${2}.${3}")
	text = unitDecimalRegex.ReplaceAllString(text, "${1}.${2}${3}")
	parts := separatorRegex.Split(text, -1)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
