package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/nutri/internal/catalog"
	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/feedback"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/logging"
	"github.com/hpungsan/nutri/internal/parse"
)

// AddFoodInput contains parameters for the AddFood operation.
// Either Definition ("nom|kcal|prot|lip|gluc[|basis[|unit_grams]]") or Food
// is used; Definition wins when both are set.
type AddFoodInput struct {
	Definition string
	Food       food.Food
}

// FoodOutput contains the result of the AddFood operation.
type FoodOutput struct {
	Food    food.Food `json:"food"`
	Message string    `json:"message"`
}

// AddFood inserts a catalog food or overwrites the one with the same name.
func (s *Service) AddFood(ctx context.Context, input AddFoodInput) (*FoodOutput, error) {
	f := input.Food
	if strings.TrimSpace(input.Definition) != "" {
		parsed, err := parse.ParseFoodDefinition(input.Definition)
		if err != nil {
			return nil, err
		}
		f = parsed
	}

	f.Name = food.Normalize(f.Name)
	if f.Name == "" {
		return nil, errors.NewInvalidRequest("food name is required")
	}
	if f.Basis == "" {
		f.Basis = food.Per100g
	}

	if err := s.catalog.Upsert(ctx, f); err != nil {
		s.logError(ctx, "add_food", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "food saved", logging.FieldFood, f.Name)

	return &FoodOutput{Food: f, Message: feedback.FoodSaved(f)}, nil
}

// SearchFoodsInput contains parameters for the SearchFoods operation.
type SearchFoodsInput struct {
	Query string
	Limit int // default: DefaultSearchLimit, max: MaxSearchLimit
}

// SearchFoodsOutput contains the result of the SearchFoods operation.
type SearchFoodsOutput struct {
	Query   string          `json:"query"`
	Matches []catalog.Match `json:"matches"`
	Message string          `json:"message"`
}

// SearchFoods lists catalog foods related to a query, best first.
func (s *Service) SearchFoods(ctx context.Context, input SearchFoodsInput) (*SearchFoodsOutput, error) {
	query := food.Normalize(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	matches := s.catalog.Search(query, limit)
	foods := make([]food.Food, len(matches))
	for i, m := range matches {
		foods[i] = m.Food
	}

	return &SearchFoodsOutput{
		Query:   query,
		Matches: matches,
		Message: feedback.SearchResults(query, foods),
	}, nil
}

// ListFoods returns the whole catalog sorted by name.
func (s *Service) ListFoods(ctx context.Context) []food.Food {
	return s.catalog.List()
}
