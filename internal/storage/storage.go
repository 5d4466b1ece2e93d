package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AssetStore keeps flat image assets (thumbnails) under a single base directory
type AssetStore struct {
	basePath string
}

// NewAssetStore creates a new AssetStore rooted at basePath
func NewAssetStore(basePath string) *AssetStore {
	return &AssetStore{
		basePath: filepath.Clean(basePath),
	}
}

// Path returns the full path of name, rejecting names that would leave the base directory
func (s *AssetStore) Path(name string) (string, error) {
	clean := SanitizeFileName(name)
	if clean == "" || clean != name {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Create creates a new file and returns a WriteCloser
func (s *AssetStore) Create(name string) (io.WriteCloser, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, err
	}

	return os.Create(path)
}

// Open opens an asset for reading. *os.File is returned so callers can serve ranges.
func (s *AssetStore) Open(name string) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes an asset
func (s *AssetStore) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
