package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePathValidator keeps the history database, config file and debug log
// inside the directories wkpd owns.
type FilePathValidator struct {
	// AllowedBaseDirs is empty to allow any directory
	AllowedBaseDirs    []string
	AllowHomeExpansion bool
	AllowRelativePaths bool
	MaxPathLength      int
}

func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".wkpd"),
			filepath.Join(homeDir, ".config", "wkpd"),
			os.TempDir(),
		},
		AllowHomeExpansion: true,
		AllowRelativePaths: false,
		MaxPathLength:      4096,
	}
}

// NewPermissiveFilePathValidator accepts any directory.
func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowHomeExpansion: true,
		AllowRelativePaths: true,
		MaxPathLength:      4096,
	}
}

// ValidateAndSanitize expands ~, cleans the path and checks it against the
// allowed base directories.
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}

	if err := checkCharacters(path); err != nil {
		return "", err
	}

	normalized, err := v.normalize(path)
	if err != nil {
		return "", fmt.Errorf("path normalization failed: %w", err)
	}

	if err := v.withinBaseDirs(normalized); err != nil {
		return "", err
	}

	return normalized, nil
}

func checkCharacters(path string) error {
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes")
	}
	for _, r := range path {
		if r < 32 && r != '\t' {
			return fmt.Errorf("path contains control characters")
		}
	}

	for _, seq := range []string{"../", "..\\", "\\\\"} {
		if strings.Contains(path, seq) {
			return fmt.Errorf("path contains dangerous sequence: %s", seq)
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("directory traversal not allowed")
		}
	}

	return nil
}

func (v *FilePathValidator) normalize(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		if !v.AllowHomeExpansion || (path != "~" && !strings.HasPrefix(path, "~/")) {
			return "", fmt.Errorf("tilde expansion not allowed or invalid tilde usage")
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}

	if !filepath.IsAbs(path) {
		if !v.AllowRelativePaths {
			return "", fmt.Errorf("relative paths not allowed: %s", path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot make path absolute: %w", err)
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

func (v *FilePathValidator) withinBaseDirs(path string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}

	for _, baseDir := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(baseDir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// ValidateDirectory validates path as a directory, creating it when asked.
func (v *FilePathValidator) ValidateDirectory(path string, create bool) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(validated)
	switch {
	case os.IsNotExist(err):
		if create {
			if err := os.MkdirAll(validated, 0o755); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}
		}
	case err != nil:
		return "", fmt.Errorf("checking directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path exists but is not a directory: %s", validated)
	}

	return validated, nil
}

// ValidateFile validates path as a regular file location. The file need not
// exist yet.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	if err := v.withinBaseDirs(filepath.Dir(validated)); err != nil {
		return "", fmt.Errorf("parent directory not allowed: %w", err)
	}

	if info, err := os.Stat(validated); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", validated)
	}

	return validated, nil
}
