package repositories

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// PasswordFileRepository stores generated user passwords as a JSON object
// mapping username to password. An empty path disables persistence.
type PasswordFileRepository struct {
	path string
}

// NewPasswordFileRepository creates a new repository for the file at path.
func NewPasswordFileRepository(path string) *PasswordFileRepository {
	return &PasswordFileRepository{path: path}
}

// Load reads the file. A missing file yields an empty map.
func (r *PasswordFileRepository) Load() (map[string]string, error) {
	passwords := make(map[string]string)
	if r.path == "" {
		return passwords, nil
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return passwords, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return passwords, nil
	}

	if err := json.Unmarshal(data, &passwords); err != nil {
		return nil, err
	}
	return passwords, nil
}

// Save replaces the file contents atomically.
func (r *PasswordFileRepository) Save(passwords map[string]string) error {
	if r.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(passwords, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".passwords-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), r.path)
}
