package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the credential in a YAML file readable only by the owner.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultPath returns the per-user credentials file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "catalogadmin", "credentials.yaml")
}

// Load reads the credential. A missing file yields an empty credential.
func (s *FileStore) Load() (Credential, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Credential{}, nil
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	var cred Credential
	if err := yaml.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}
	return cred, nil
}

// Save writes the credential, creating the parent directory if needed.
func (s *FileStore) Save(cred Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := yaml.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return nil
}

// Clear removes the file. Removing a missing file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.Path, err)
	}
	return nil
}
