package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
)

// FoodStore persists catalog foods in the foods table.
type FoodStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewFoodStore returns a store backed by db.
func NewFoodStore(db *sql.DB) *FoodStore {
	return &FoodStore{db: db, now: time.Now}
}

// ListFoods returns every stored food ordered by name.
func (s *FoodStore) ListFoods(ctx context.Context) ([]food.Food, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, basis, kcal, protein_g, fat_g, carb_g, unit_grams
		FROM foods
		ORDER BY name
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	foods := make([]food.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return foods, nil
}

const upsertFoodQuery = `
	INSERT INTO foods (name, basis, kcal, protein_g, fat_g, carb_g, unit_grams, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		basis = excluded.basis,
		kcal = excluded.kcal,
		protein_g = excluded.protein_g,
		fat_g = excluded.fat_g,
		carb_g = excluded.carb_g,
		unit_grams = excluded.unit_grams,
		updated_at = excluded.updated_at
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertFood(ctx context.Context, ex execer, f food.Food, now int64) error {
	_, err := ex.ExecContext(ctx, upsertFoodQuery,
		food.Normalize(f.Name), string(f.Basis),
		f.Profile.Kcal, f.Profile.ProteinG, f.Profile.FatG, f.Profile.CarbG,
		f.UnitGrams, now, now,
	)
	return err
}

// UpsertFood inserts f or replaces the macros of the food with the same name.
// created_at is kept on update.
func (s *FoodStore) UpsertFood(ctx context.Context, f food.Food) error {
	if err := upsertFood(ctx, s.db, f, s.now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// UpsertFoods upserts every food in one transaction: either all are stored
// or none is.
func (s *FoodStore) UpsertFoods(ctx context.Context, foods []food.Food) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now().Unix()
	for _, f := range foods {
		if err := upsertFood(ctx, tx, f, now); err != nil {
			return errors.NewInternal(fmt.Errorf("upsert %q: %w", f.Name, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// CountFoods returns the number of stored foods.
func (s *FoodStore) CountFoods(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM foods").Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFood(sc scanner) (food.Food, error) {
	var (
		f     food.Food
		basis string
	)
	err := sc.Scan(&f.Name, &basis, &f.Profile.Kcal, &f.Profile.ProteinG, &f.Profile.FatG, &f.Profile.CarbG, &f.UnitGrams)
	if err != nil {
		return food.Food{}, err
	}
	f.Basis = food.Basis(basis)
	return f, nil
}
