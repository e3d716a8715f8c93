package validation

import (
	"os"
	"path/filepath"
)

// PathHandler resolves the files wkpd writes, falling back to the default
// locations under the home directory.
type PathHandler struct {
	validator *FilePathValidator
}

func NewSecurePathHandler() *PathHandler {
	return &PathHandler{validator: NewFilePathValidator()}
}

func NewPermissivePathHandler() *PathHandler {
	return &PathHandler{validator: NewPermissiveFilePathValidator()}
}

// HistoryPath validates the bbolt history database location.
func (ph *PathHandler) HistoryPath(userPath string) (string, error) {
	return ph.fileOrDefault(userPath, ".wkpd", "history.db")
}

// ConfigPath validates the TOML config location.
func (ph *PathHandler) ConfigPath(userPath string) (string, error) {
	return ph.fileOrDefault(userPath, ".config", "wkpd", "config.toml")
}

// LogPath validates the debug log location.
func (ph *PathHandler) LogPath(userPath string) (string, error) {
	return ph.fileOrDefault(userPath, ".wkpd", "wkpd.log")
}

// EnsureDirectory validates path and creates it.
func (ph *PathHandler) EnsureDirectory(path string) (string, error) {
	return ph.validator.ValidateDirectory(path, true)
}

func (ph *PathHandler) fileOrDefault(userPath string, defaults ...string) (string, error) {
	if userPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(append([]string{homeDir}, defaults...)...)
	}
	return ph.validator.ValidateFile(userPath)
}
