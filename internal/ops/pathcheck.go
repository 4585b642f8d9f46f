package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/nutri/internal/errors"
)

// ExportExt is the required extension of catalog export files.
const ExportExt = ".jsonl"

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import
	PathCheckWrite                      // export
)

// ValidatePath checks an import/export path:
//
//  1. no ".." components
//  2. .jsonl extension
//  3. the file sits directly in dir (no subdirectories)
//  4. neither dir nor the file is a symlink
//
// Files opened afterwards use O_NOFOLLOW, so only the final component can
// change between the check and the open, and that one is refused.
func ValidatePath(path string, mode PathCheckMode, dir string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if dir == "" {
		return errors.NewInvalidRequest("exports directory is not configured")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ExportExt {
		return errors.NewInvalidRequest("path must have .jsonl extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid exports directory: %v", err))
	}

	if filepath.Dir(absPath) != absDir {
		return errors.NewInvalidRequest(fmt.Sprintf("file must be directly in %s (no subdirectories)", absDir))
	}
	if info, err := os.Lstat(absDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("exports directory must not be a symlink")
	}

	info, err := os.Lstat(absPath)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		return errors.NewInvalidRequest("path must not be a symlink")
	case os.IsNotExist(err) && mode == PathCheckRead:
		return errors.NewInvalidRequest(fmt.Sprintf("file not found: %s", path))
	}
	return nil
}

// resolveInDir joins a bare file name onto dir. Anything containing a
// separator is returned unchanged for ValidatePath to judge.
func resolveInDir(path, dir string) string {
	if path != "" && !strings.ContainsAny(path, `/\`) {
		return filepath.Join(dir, path)
	}
	return path
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}
