package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/prodsynth/internal/config"
	"github.com/hpungsan/prodsynth/internal/db"
	"github.com/hpungsan/prodsynth/internal/errors"
)

// DatasetExt is the required extension for dataset files.
const DatasetExt = ".csv"

// ValidatePath checks a dataset output path and returns it absolute.
// It checks:
// 1. Path traversal (.. sequences)
// 2. Extension (.csv required)
// 3. Directory restrictions (file must be DIRECTLY in the working directory,
// ~/.prodsynth/datasets or allowed_paths - no subdirectories)
// 4. Symlink safety (parent dir and file must not be symlinks)
//
// The "no subdirectories" rule closes the window where an intermediate
// directory could be swapped for a symlink between validation and open.
// O_NOFOLLOW covers the final component.
func ValidatePath(path string, cfg *config.Config) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if !strings.EqualFold(filepath.Ext(cleaned), DatasetExt) {
		return "", errors.NewInvalidRequest("path must have .csv extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// Unsafe paths skip directory checks but never symlink checks
	if cfg != nil && cfg.AllowUnsafePaths {
		if isSymlink(absPath) {
			return "", errors.NewInvalidRequest("path must not be a symlink")
		}
		return absPath, nil
	}

	allowedDirs, err := getAllowedDirs(cfg)
	if err != nil {
		return "", err
	}

	parentDir := filepath.Dir(absPath)
	if !isDirectlyInAllowedDir(parentDir, allowedDirs) {
		return "", errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
				allowedDirs))
	}

	if isSymlink(parentDir) {
		return "", errors.NewInvalidRequest("parent directory must not be a symlink")
	}

	if isSymlink(absPath) {
		return "", errors.NewInvalidRequest("path must not be a symlink")
	}

	return absPath, nil
}

// getAllowedDirs returns the allowed output directories (absolute, cleaned).
// Entries that are themselves symlinks are resolved so they match their target.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to get working directory: %w", err))
	}
	datasetsDir, err := DefaultDatasetsDir()
	if err != nil {
		return nil, err
	}

	dirs := []string{cwd, datasetsDir}

	// Only absolute allowed_paths entries count
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}

		if isSymlink(abs) {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}

	return result, nil
}

// isDirectlyInAllowedDir reports whether parentDir is exactly one of allowedDirs.
func isDirectlyInAllowedDir(parentDir string, allowedDirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowedDirs {
		if parentDir == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// DefaultDatasetsDir returns ~/.prodsynth/datasets.
func DefaultDatasetsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, config.DirName, db.DatasetsDir), nil
}

// DatasetPathFor places a user-supplied name in ~/.prodsynth/datasets.
func DatasetPathFor(name string) (string, error) {
	dir, err := DefaultDatasetsDir()
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(SanitizeForFilename(name), DatasetExt)
	if base == "" {
		base = "unnamed"
	}
	return filepath.Join(dir, base+DatasetExt), nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Forward slashes count on every platform
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeForFilename makes s safe to use as a single path component.
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")

	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	s = strings.TrimSpace(result.String())

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}

	s = strings.Trim(s, "-")

	if s == "" {
		s = "unnamed"
	}

	return s
}
