package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
)

// Provider is the catalog surface the resolver and the add/search commands use.
type Provider interface {
	LookupExact(name string) (food.Food, bool)
	SearchFuzzy(token string) []Match
	Upsert(ctx context.Context, f food.Food) error
}

// Store persists catalog foods. Implemented by db.FoodStore.
type Store interface {
	ListFoods(ctx context.Context) ([]food.Food, error)
	UpsertFood(ctx context.Context, f food.Food) error
}

// BatchStore is a Store that can write several foods atomically.
type BatchStore interface {
	Store
	UpsertFoods(ctx context.Context, foods []food.Food) error
}

// Match is a fuzzy search candidate.
type Match struct {
	Food  food.Food `json:"food"`
	Score float64   `json:"score"`
}

// Catalog is the in-memory food index. Writes go through the optional Store
// before the index is updated.
type Catalog struct {
	mu    sync.RWMutex
	foods map[string]food.Food
	store Store
}

// New creates an in-memory catalog holding foods. Invalid foods are skipped.
func New(foods ...food.Food) *Catalog {
	c := &Catalog{foods: make(map[string]food.Food, len(foods))}
	for _, f := range foods {
		f.Name = food.Normalize(f.Name)
		if f.Validate() == nil {
			c.foods[f.Name] = f
		}
	}
	return c
}

// Open loads every food from store. An empty store is seeded with DefaultFoods.
func Open(ctx context.Context, store Store) (*Catalog, error) {
	foods, err := store.ListFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}

	if len(foods) == 0 {
		foods, err = DefaultFoods()
		if err != nil {
			return nil, err
		}
		for _, f := range foods {
			if err := store.UpsertFood(ctx, f); err != nil {
				return nil, fmt.Errorf("seed food %q: %w", f.Name, err)
			}
		}
	}

	c := New(foods...)
	c.store = store
	return c, nil
}

// LookupExact returns the food whose normalized name equals name.
func (c *Catalog) LookupExact(name string) (food.Food, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.foods[food.Normalize(name)]
	return f, ok
}

// SearchFuzzy returns candidates scoring at least MinScore, best first.
// Order: score descending, then shorter name, then name ascending.
func (c *Catalog) SearchFuzzy(token string) []Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]Match, 0)
	for name, f := range c.foods {
		if s := Score(token, name); s >= MinScore {
			matches = append(matches, Match{Food: f, Score: s})
		}
	}
	SortMatches(matches)
	return matches
}

// SearchMinScore is the looser threshold used to list search results.
const SearchMinScore = 0.6

// Search lists foods related to query, best first, at most limit (0 means
// no limit). A food whose folded name contains the query always qualifies.
func (c *Catalog) Search(query string, limit int) []Match {
	q := food.Fold(query)
	if q == "" {
		return []Match{}
	}

	c.mu.RLock()
	matches := make([]Match, 0)
	for name, f := range c.foods {
		s := Score(query, name)
		if s < MinScore && strings.Contains(food.Fold(name), q) {
			s = MinScore
		}
		if s >= SearchMinScore {
			matches = append(matches, Match{Food: f, Score: s})
		}
	}
	c.mu.RUnlock()

	SortMatches(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// SortMatches orders matches by score, then name length, then name.
func SortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		la, lb := utf8.RuneCountInString(a.Food.Name), utf8.RuneCountInString(b.Food.Name)
		if la != lb {
			return la < lb
		}
		return a.Food.Name < b.Food.Name
	})
}

// Upsert inserts a food or overwrites the existing one with the same name.
func (c *Catalog) Upsert(ctx context.Context, f food.Food) error {
	f.Name = food.Normalize(f.Name)
	if f.Basis == "" {
		f.Basis = food.Per100g
	}
	if err := f.Validate(); err != nil {
		return errors.NewInvalidRequest(err.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		if err := c.store.UpsertFood(ctx, f); err != nil {
			return errors.NewInternal(err)
		}
	}
	c.foods[f.Name] = f
	return nil
}

// UpsertAll validates every food, then stores them all. With a BatchStore
// the write is atomic; otherwise foods are stored one by one and the index
// only takes the ones that were written.
func (c *Catalog) UpsertAll(ctx context.Context, foods []food.Food) error {
	clean := make([]food.Food, 0, len(foods))
	for _, f := range foods {
		f.Name = food.Normalize(f.Name)
		if f.Basis == "" {
			f.Basis = food.Per100g
		}
		if err := f.Validate(); err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("%s: %v", f.Name, err))
		}
		clean = append(clean, f)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch store := c.store.(type) {
	case nil:
	case BatchStore:
		if err := store.UpsertFoods(ctx, clean); err != nil {
			return errors.NewInternal(err)
		}
	default:
		for _, f := range clean {
			if err := store.UpsertFood(ctx, f); err != nil {
				return errors.NewInternal(err)
			}
			c.foods[f.Name] = f
		}
	}

	for _, f := range clean {
		c.foods[f.Name] = f
	}
	return nil
}

// List returns all foods sorted by name.
func (c *Catalog) List() []food.Food {
	c.mu.RLock()
	defer c.mu.RUnlock()

	foods := make([]food.Food, 0, len(c.foods))
	for _, f := range c.foods {
		foods = append(foods, f)
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].Name < foods[j].Name })
	return foods
}

// Len returns the number of foods.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.foods)
}
