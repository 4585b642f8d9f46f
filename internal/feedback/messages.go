package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ledger"
)

// Skipped is a message fragment that could not be logged.
type Skipped struct {
	Text string `json:"text"`
	Err  error  `json:"-"`
}

// Logged renders the reply to a food message: what was added, what was
// skipped and the day's progress.
func Logged(logged []ledger.Entry, skipped []Skipped, l ledger.DailyLedger, goals food.Goals) string {
	var b strings.Builder
	b.WriteString("✅ **Enregistré**\n\n")
	for _, e := range logged {
		fmt.Fprintf(&b, "• %s\n", Describe(e))
		fmt.Fprintf(&b, "  %s\n\n", profileLine(e.Contribution))
	}
	if len(skipped) > 0 {
		b.WriteString(skippedText(skipped))
		b.WriteString("\n")
	}
	writeProgress(&b, l, goals)
	return b.String()
}

func skippedText(skipped []Skipped) string {
	var b strings.Builder
	for _, s := range skipped {
		fmt.Fprintf(&b, "⚠️ %s: %s\n", s.Text, reason(s.Err))
	}
	b.WriteString("→ `/search aliment` ou `/add 150kcal 10p 5l 8g`\n")
	return b.String()
}

func reason(err error) string {
	nErr, ok := errors.As(err)
	if !ok {
		return "erreur"
	}
	switch nErr.Code {
	case errors.ErrNotFound:
		return "non trouvé"
	case errors.ErrAmbiguous:
		if c, ok := nErr.Details["candidates"].([]string); ok {
			return "ambigu (" + strings.Join(c, ", ") + ")"
		}
		return "ambigu"
	case errors.ErrNoQuantity:
		return "quantité manquante"
	case errors.ErrEmptyFood:
		return "aliment manquant"
	}
	return nErr.Message
}

// QuickAdded renders the reply to a manual entry.
func QuickAdded(e ledger.Entry, l ledger.DailyLedger, goals food.Goals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **Ajout rapide** (%.0fg)\n", e.Grams)
	fmt.Fprintf(&b, "%s\n\n", profileLine(e.Contribution))
	writeProgress(&b, l, goals)
	return b.String()
}

// Undone renders the reply to an undo.
func Undone(e ledger.Entry, l ledger.DailyLedger, goals food.Goals) string {
	remaining := l.Remaining(goals)
	var b strings.Builder
	b.WriteString("↩️ **Entrée annulée:**\n")
	fmt.Fprintf(&b, "   %s\n", Describe(e))
	fmt.Fprintf(&b, "   (%.0f kcal, %.1fg prot)\n\n", e.Contribution.Kcal, e.Contribution.ProteinG)
	fmt.Fprintf(&b, "⏳ **Reste:** %.0f kcal | %.0fg prot", remaining.Kcal, remaining.ProteinG)
	return b.String()
}

var weekdays = [...]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."}

// HistoryDays is the number of days shown by History, today included.
const HistoryDays = 1 + ledger.HistoryCapacity

// History renders today and the closed days. Days with no data are shown
// as such; a day's dot reflects the protein goal (🟢 ≥90%, 🟡 ≥70%, 🔴 below).
func History(snap ledger.Snapshot, goals food.Goals) string {
	days := make(map[ledger.Date]ledger.DailyLedger, len(snap.History)+1)
	for _, l := range snap.History {
		days[l.Date] = l
	}
	days[snap.Today.Date] = snap.Today

	var b strings.Builder
	b.WriteString("📅 **Historique**\n\n")
	for i := 0; i < HistoryDays; i++ {
		d := snap.Today.Date.AddDays(-i)
		display := fmt.Sprintf("%02d/%02d", d.Day, int(d.Month))

		l, ok := days[d]
		if !ok || l.IsEmpty() {
			fmt.Fprintf(&b, "⚪ **%s** %s - Aucune donnée\n\n", dayLabel(i, d), display)
			continue
		}
		t := l.Totals
		fmt.Fprintf(&b, "%s **%s** %s\n", proteinDot(t.ProteinG, goals.ProteinG), dayLabel(i, d), display)
		fmt.Fprintf(&b, "   %.0fkcal | %.0fp | %.0fl | %.0fg\n\n", t.Kcal, t.ProteinG, t.FatG, t.CarbG)
	}
	return b.String()
}

func dayLabel(offset int, d ledger.Date) string {
	switch offset {
	case 0:
		return "Auj."
	case 1:
		return "Hier"
	}
	return weekdays[d.Time(time.UTC).Weekday()]
}

func proteinDot(protein, goal float64) string {
	pct := percent(protein, goal)
	switch {
	case pct >= 90:
		return "🟢"
	case pct >= 70:
		return "🟡"
	default:
		return "🔴"
	}
}

func percent(v, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return v / goal * 100
}

// ReminderKind selects the header and extras of a scheduled reminder.
type ReminderKind string

const (
	ReminderMidday  ReminderKind = "midi"
	ReminderEvening ReminderKind = "soir"
	ReminderRecap   ReminderKind = "recap"
)

// ParseReminderKind validates a configured reminder kind.
func ParseReminderKind(s string) (ReminderKind, error) {
	switch k := ReminderKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ReminderMidday, ReminderEvening, ReminderRecap:
		return k, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown reminder kind %q (midi, soir, recap)", s))
}

// Reminder renders a scheduled status. The recap adds the day's entries
// with their local time and a verdict on protein.
func Reminder(kind ReminderKind, l ledger.DailyLedger, goals food.Goals, loc *time.Location) string {
	var b strings.Builder
	switch kind {
	case ReminderMidday:
		b.WriteString("🕛 **POINT MIDI**\n\n")
	case ReminderEvening:
		b.WriteString("🕕 **POINT 18H**\n\n")
	default:
		b.WriteString("🌙 **RÉCAP DE LA JOURNÉE**\n\n")
	}
	b.WriteString(Status(l, goals))

	if kind != ReminderRecap {
		return b.String()
	}

	if !l.IsEmpty() {
		b.WriteString("\n\n📝 **Entrées du jour:**\n")
		for _, e := range l.Entries {
			ts := e.Timestamp
			if loc != nil {
				ts = ts.In(loc)
			}
			fmt.Fprintf(&b, "   • %s - %s\n", ts.Format("15:04"), Describe(e))
		}
	}

	pct := percent(l.Totals.ProteinG, goals.ProteinG)
	switch {
	case pct >= 100:
		b.WriteString("\n\n🏆 **Objectif protéines atteint !** Bien joué 💪")
	case pct >= 90:
		b.WriteString("\n\n👍 **Presque !** Tu y es presque, continue comme ça !")
	default:
		fmt.Fprintf(&b, "\n\n⚠️ **Attention:** Seulement %.0f%% des protéines. Pense à ajuster demain !", pct)
	}
	return b.String()
}

// MaxSearchResults caps SearchResults.
const MaxSearchResults = 8

// SearchResults renders catalog foods matching query.
func SearchResults(query string, foods []food.Food) string {
	if len(foods) == 0 {
		return fmt.Sprintf("❌ Aucun aliment trouvé pour '%s'", query)
	}
	if len(foods) > MaxSearchResults {
		foods = foods[:MaxSearchResults]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Résultats pour '%s':**\n\n", query)
	for _, f := range foods {
		fmt.Fprintf(&b, "• **%s** (%s)\n", f.Name, basisLabel(f))
		fmt.Fprintf(&b, "   %s kcal | %sg P | %sg L | %sg G\n",
			formatAmount(f.Profile.Kcal), formatAmount(f.Profile.ProteinG),
			formatAmount(f.Profile.FatG), formatAmount(f.Profile.CarbG))
	}
	return b.String()
}

func basisLabel(f food.Food) string {
	if f.Basis == food.PerUnit {
		return "1 unité"
	}
	if f.UnitGrams > 0 {
		return fmt.Sprintf("100g, 1 unité = %sg", formatAmount(f.UnitGrams))
	}
	return "100g"
}

// FoodSaved renders the reply to a catalog add.
func FoodSaved(f food.Food) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **%s** ajouté (%s)\n", f.Name, basisLabel(f))
	fmt.Fprintf(&b, "%s\n\n", profileLine(f.Profile))
	if f.Basis == food.PerUnit {
		fmt.Fprintf(&b, "→ Utilise: `1 %s`", f.Name)
	} else {
		fmt.Fprintf(&b, "→ Utilise: `%s 100g`", f.Name)
	}
	return b.String()
}

// Error renders an operation error for the chat.
func Error(err error) string {
	nErr, ok := errors.As(err)
	if !ok {
		return "💥 Erreur interne"
	}
	switch nErr.Code {
	case errors.ErrNoQuantity, errors.ErrEmptyFood:
		return "❓ Je n'ai pas compris. Essaie: `200g poulet` ou `3 oeufs`"
	case errors.ErrNotFound:
		token, _ := nErr.Details["token"].(string)
		return fmt.Sprintf("❓ Aliment inconnu: %s\n→ `/search %s` ou `/add nom|kcal|prot|lip|gluc`", token, token)
	case errors.ErrAmbiguous:
		return "🤔 " + reason(nErr) + "\n→ précise le nom de l'aliment"
	case errors.ErrEmptyLedger:
		return "❌ Aucune entrée à annuler aujourd'hui."
	case errors.ErrInvalidRequest:
		return "❌ " + nErr.Message
	}
	return "💥 Erreur interne"
}

// Welcome renders the greeting shown when a chat starts.
func Welcome(goals food.Goals) string {
	return "🏋️ **Nutri** - Suivi des macros\n\n" +
		"📊 **Objectifs journaliers:**\n" +
		fmt.Sprintf("🔥 %.0f kcal | 🥩 %.0fg prot | 🧈 %.0fg lip | 🍚 %.0fg gluc\n\n", goals.Kcal, goals.ProteinG, goals.FatG, goals.CarbG) +
		"💬 **Comment m'utiliser:**\n" +
		"Envoie ce que tu manges: `200g pâtes` ou `3 oeufs`\n\n" +
		"📋 **Commandes:**\n" +
		"/status /history /add /undo /search /help"
}

// Help renders the command reference.
func Help() string {
	return "📖 **Aide**\n\n" +
		"**Formats:** `200g poulet`, `3 oeufs`, `1 verre de lait`, `poulet 200g`\n" +
		"**Plusieurs:** `200g riz, 150g poulet et 1 banane`\n\n" +
		"**Unités:** g, kg, mg, ml, cl, l, verre=200g, tasse=250g, bol=300g, cuillère=15g\n\n" +
		"**Ajout rapide:** `/add 30g 150kcal 10p 5l 8g`\n" +
		"**Sauvegarder:** `/add nom|kcal|prot|lip|gluc[|unit]`\n\n" +
		"/status /history /undo /search /help"
}

// FoodList renders the catalog names.
func FoodList(foods []food.Food) string {
	if len(foods) == 0 {
		return "📋 Catalogue vide. Ajoute un aliment: `/add nom|kcal|prot|lip|gluc`"
	}
	names := make([]string, len(foods))
	for i, f := range foods {
		names[i] = f.Name
	}
	return fmt.Sprintf("📋 **%d aliments:**\n\n%s\n\nUtilise `/search [terme]` pour le détail.", len(foods), strings.Join(names, ", "))
}
