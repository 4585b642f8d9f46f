package ops

import (
	"context"
	"log/slog"

	"github.com/hpungsan/nutri/internal/catalog"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ledger"
	"github.com/hpungsan/nutri/internal/logging"
	"github.com/hpungsan/nutri/internal/resolve"
)

// Search limits
const (
	DefaultSearchLimit = 8
	MaxSearchLimit     = 50
)

// Catalog is what the service needs from the food catalog.
type Catalog interface {
	catalog.Provider
	Search(query string, limit int) []catalog.Match
	List() []food.Food
	UpsertAll(ctx context.Context, foods []food.Food) error
}

// Service is the accounting engine behind every transport. It owns no state
// of its own: the ledger lives in the Book, foods in the Catalog.
type Service struct {
	book     *ledger.Book
	catalog  Catalog
	resolver *resolve.Resolver
	goals    food.Goals
	logger   *slog.Logger

	// exportsDir is where catalog exports are written and read from
	exportsDir string
}

// NewService wires a service. A nil logger discards logs.
func NewService(book *ledger.Book, cat Catalog, goals food.Goals, logger *slog.Logger) *Service {
	return &Service{
		book:     book,
		catalog:  cat,
		resolver: resolve.New(cat),
		goals:    goals,
		logger:   logging.Component(logger, logging.ComponentOps),
	}
}

// WithExportsDir sets the directory used by ExportFoods and ImportFoods.
func (s *Service) WithExportsDir(dir string) *Service {
	s.exportsDir = dir
	return s
}

// Goals returns the daily goals.
func (s *Service) Goals() food.Goals {
	return s.goals
}

// Book returns the ledger book.
func (s *Service) Book() *ledger.Book {
	return s.book
}

// view is the read-only state as of now.
func (s *Service) view() ledger.Snapshot {
	return s.book.View(s.book.Today())
}

func (s *Service) logError(ctx context.Context, op string, err error) {
	s.logger.DebugContext(ctx, "operation failed", logging.FieldOperation, op, logging.FieldError, err)
}
