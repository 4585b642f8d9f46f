package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/logging"
)

// ExportSchemaVersion is written in every export header.
const ExportSchemaVersion = "1.0"

// ExportFoodsInput contains parameters for the ExportFoods operation.
type ExportFoodsInput struct {
	Path string // optional, default: <exports>/foods-<timestamp>.jsonl; a bare file name lands in <exports>
}

// ExportFoodsOutput contains the result of the ExportFoods operation.
type ExportFoodsOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a catalog export file.
type ExportHeader struct {
	NutriExport   bool   `json:"_nutri_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportFoods writes the whole catalog to a JSONL file: a header line, then
// one food per line sorted by name. The file is written to a temp name and
// renamed into place, so an existing export survives a failed run.
func (s *Service) ExportFoods(ctx context.Context, input ExportFoodsInput) (*ExportFoodsOutput, error) {
	now := s.book.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(s.exportsDir, "foods-"+now.Format("2006-01-02T150405")+ExportExt)
	} else {
		exportPath = resolveInDir(exportPath, s.exportsDir)
	}

	if s.exportsDir != "" {
		if err := os.MkdirAll(s.exportsDir, 0700); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to create exports directory: %w", err))
		}
	}
	if err := ValidatePath(exportPath, PathCheckWrite, s.exportsDir); err != nil {
		return nil, err
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)

	header := ExportHeader{NutriExport: true, SchemaVersion: ExportSchemaVersion, ExportedAt: now.Unix()}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	foods := s.catalog.List()
	for _, f := range foods {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewInvalidRequest("export cancelled")
		}
		if err := enc.Encode(f); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink planted after validation
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new file name")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	success = true

	s.logger.InfoContext(ctx, "catalog exported", logging.FieldPath, exportPath, logging.FieldCount, len(foods))

	return &ExportFoodsOutput{
		Path:       exportPath,
		Count:      len(foods),
		ExportedAt: now.Unix(),
	}, nil
}

// exportRecord is one decoded line of an export file. Pointer fields tell a
// missing value from a zero one.
type exportRecord struct {
	NutriExport   bool          `json:"_nutri_export"`
	SchemaVersion string        `json:"schema_version"`
	ExportedAt    int64         `json:"exported_at"`
	Name          string        `json:"name"`
	Basis         food.Basis    `json:"basis"`
	Profile       *food.Profile `json:"profile"`
	UnitGrams     float64       `json:"unit_grams"`
}

func (r exportRecord) toFood() (food.Food, error) {
	if r.Profile == nil {
		return food.Food{}, fmt.Errorf("missing profile field")
	}
	f := food.Food{
		Name:      food.Normalize(r.Name),
		Basis:     r.Basis,
		Profile:   *r.Profile,
		UnitGrams: r.UnitGrams,
	}
	if f.Basis == "" {
		f.Basis = food.Per100g
	}
	return f, f.Validate()
}
