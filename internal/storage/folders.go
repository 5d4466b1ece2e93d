package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cinemaadmin/backend/internal/models"
)

// ErrUnknownCategory is returned for a category that has no storage folder
var ErrUnknownCategory = errors.New("unknown category")

// Folders maps every category to exactly one storage folder
type Folders struct {
	Movie  string
	Series string
}

// NewFolders validates and cleans the folder pair
func NewFolders(movie, series string) (Folders, error) {
	if movie == "" || series == "" {
		return Folders{}, fmt.Errorf("movie and series folders are required")
	}
	movie, series = filepath.Clean(movie), filepath.Clean(series)
	if movie == series {
		return Folders{}, fmt.Errorf("movie and series folders must differ, both are %s", movie)
	}
	return Folders{Movie: movie, Series: series}, nil
}

// For returns the folder of category c
func (f Folders) For(c models.Category) (string, error) {
	switch c {
	case models.CategoryMovie:
		return f.Movie, nil
	case models.CategorySeries:
		return f.Series, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
}

// Other returns the folder of the category that is not c
func (f Folders) Other(c models.Category) (string, error) {
	switch c {
	case models.CategoryMovie:
		return f.Series, nil
	case models.CategorySeries:
		return f.Movie, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
}

// All returns every configured folder
func (f Folders) All() []string {
	return []string{f.Movie, f.Series}
}

// Ensure creates any missing folder
func (f Folders) Ensure(fsys FileSystem) error {
	for _, dir := range f.All() {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", dir, err)
		}
	}
	return nil
}
