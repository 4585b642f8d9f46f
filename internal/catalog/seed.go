package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/nutri/internal/food"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Foods []food.Food `yaml:"foods"`
}

// DefaultFoods returns the built-in catalog. A missing basis means per_100g.
func DefaultFoods() ([]food.Food, error) {
	var seed seedFile
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}

	foods := make([]food.Food, 0, len(seed.Foods))
	for _, f := range seed.Foods {
		f.Name = food.Normalize(f.Name)
		if f.Basis == "" {
			f.Basis = food.Per100g
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("seed food %q: %w", f.Name, err)
		}
		foods = append(foods, f)
	}
	return foods, nil
}
