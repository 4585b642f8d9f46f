package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/nutri/internal/errors"
)

func TestHandle_NonFiniteFoodRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, def := range []string{"/add licorne|nan|1|1|1", "/add licorne|inf|1|1|1", "/add licorne|1|1|1|1|100g|infinity"} {
		_, err := svc.Handle(ctx, def)
		require.True(t, errors.Is(err, errors.ErrInvalidRequest), "%s: got %v", def, err)
	}

	// the food never reached the catalog, so logging it is a plain NOT_FOUND
	_, err := svc.Handle(ctx, "100g licorne")
	require.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)

	got, err := svc.Handle(ctx, "/status")
	require.NoError(t, err)
	assert.Contains(t, got, "🔥 Kcal: 0/3100")
}

func TestHandle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		contains string
		code     errors.ErrorCode // empty means success
	}{
		{"start", "/start", "Objectifs journaliers", ""},
		{"help", "/help", "**Aide**", ""},
		{"empty", "   ", "**Aide**", ""},
		{"undo on empty day", "/undo", "Aucune entrée à annuler", errors.ErrEmptyLedger},
		{"log", "200g poulet", "• 200g poulet", ""},
		{"status", "/status", "🔥 Kcal: 330/3100", ""},
		{"status with bot suffix", "/status@nutri_bot", "Statut du jour", ""},
		{"history", "/history", "**Auj.**", ""},
		{"unknown food", "100g licorne", "Aliment inconnu: licorne", errors.ErrNotFound},
		{"no quantity", "poulet", "Je n'ai pas compris", errors.ErrNoQuantity},
		{"search", "/search poulet", "Résultats pour 'poulet'", ""},
		{"search without query", "/search", "Usage", errors.ErrInvalidRequest},
		{"quick add", "/add 150kcal 10p 5l 8g", "Ajout rapide", ""},
		{"bad quick add", "/add lots", "Format non reconnu", errors.ErrInvalidRequest},
		{"add without args", "/add", "Sauvegarder", errors.ErrInvalidRequest},
		{"save food", "/add skyr|63|11|0.2|4", "**skyr** ajouté", ""},
		{"list", "/list", "aliments:", ""},
		{"undo", "/undo", "Entrée annulée", ""},
		{"unknown command", "/dance", "Commande inconnue", errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Handle(ctx, tt.input)
			if tt.code == "" {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, tt.code), "got %v", err)
			}
			assert.Contains(t, got, tt.contains)
		})
	}
}
