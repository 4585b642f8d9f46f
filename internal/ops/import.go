package ops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/logging"
)

// ImportMode controls what happens when an imported food already exists.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // any problem aborts the whole import
	ImportModeReplace ImportMode = "replace" // overwrite existing foods
	ImportModeSkip    ImportMode = "skip"    // keep existing foods
)

// Import error codes reported per line.
const (
	ImportParseError    = "PARSE_ERROR"
	ImportInvalidRecord = "INVALID_RECORD"
	ImportDuplicate     = "DUPLICATE"
	ImportNameCollision = "NAME_COLLISION"
	ImportReadError     = "READ_ERROR"
)

const maxImportLine = 1 << 20

// ImportFoodsInput contains parameters for the ImportFoods operation.
type ImportFoodsInput struct {
	Path string     // required; a bare file name is looked up in <exports>
	Mode ImportMode // default: error
}

// ImportFoodsOutput contains the result of the ImportFoods operation.
type ImportFoodsOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importRecord struct {
	line int
	food food.Food
}

// ImportFoods loads foods from a catalog export file.
//
// With mode error nothing is written unless every line is valid and no food
// exists yet. The other modes import what they can and report the rest.
func (s *Service) ImportFoods(ctx context.Context, input ImportFoodsInput) (*ImportFoodsOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}

	path := resolveInDir(input.Path, s.exportsDir)
	if err := ValidatePath(path, PathCheckRead, s.exportsDir); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, parseErrors, err := parseExportFile(bufio.NewScanner(file))
	if err != nil {
		return nil, err
	}

	out := &ImportFoodsOutput{Errors: parseErrors}
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return out, nil
	}

	toWrite := make([]food.Food, 0, len(records))
	for _, r := range records {
		if _, exists := s.catalog.LookupExact(r.food.Name); exists {
			switch input.Mode {
			case ImportModeError:
				out.Errors = append(out.Errors, ImportError{
					Line:    r.line,
					Name:    r.food.Name,
					Code:    ImportNameCollision,
					Message: fmt.Sprintf("food %q already exists", r.food.Name),
				})
				continue
			case ImportModeSkip:
				out.Skipped++
				continue
			}
		}
		toWrite = append(toWrite, r.food)
	}
	out.Skipped += len(parseErrors)

	if input.Mode == ImportModeError && len(out.Errors) > 0 {
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewInvalidRequest("import cancelled")
	}
	if len(toWrite) > 0 {
		if err := s.catalog.UpsertAll(ctx, toWrite); err != nil {
			s.logError(ctx, "import_foods", err)
			return nil, err
		}
	}
	out.Imported = len(toWrite)

	s.logger.InfoContext(ctx, "catalog imported",
		logging.FieldPath, path,
		logging.FieldCount, out.Imported,
		logging.FieldSkipped, out.Skipped,
	)
	return out, nil
}

// parseExportFile reads an export: a header line, then one food per line.
// Blank lines are ignored. A missing header is a request error; bad food
// lines are reported and left out. A food repeated later in the file is
// reported as a duplicate.
func parseExportFile(scanner *bufio.Scanner) ([]importRecord, []ImportError, error) {
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)

	var (
		records     []importRecord
		parseErrors []ImportError
		seen        = make(map[string]int)
		lineNum     = 0
		sawHeader   = false
	)

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec exportRecord
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			if !sawHeader {
				return nil, nil, errors.NewInvalidRequest("not a nutri export: missing header line")
			}
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    ImportParseError,
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if !sawHeader {
			if !rec.NutriExport {
				return nil, nil, errors.NewInvalidRequest("not a nutri export: missing header line")
			}
			sawHeader = true
			continue
		}
		if rec.NutriExport {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    ImportInvalidRecord,
				Message: "unexpected header line",
			})
			continue
		}

		f, err := rec.toFood()
		if err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Name:    food.Normalize(rec.Name),
				Code:    ImportInvalidRecord,
				Message: err.Error(),
			})
			continue
		}

		if first, dup := seen[f.Name]; dup {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Name:    f.Name,
				Code:    ImportDuplicate,
				Message: fmt.Sprintf("food %q already appears on line %d", f.Name, first),
			})
			continue
		}
		seen[f.Name] = lineNum
		records = append(records, importRecord{line: lineNum, food: f})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    ImportReadError,
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}
	if !sawHeader && len(parseErrors) == 0 {
		return nil, nil, errors.NewInvalidRequest("not a nutri export: missing header line")
	}

	return records, parseErrors, nil
}
