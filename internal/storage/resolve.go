package storage

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrFileNotFound is returned when a video file is in none of the candidate folders
var ErrFileNotFound = errors.New("file not found")

// ResolveFileName returns baseName unchanged when it has an extension. Otherwise it returns the
// first entry of folder (by name) that starts with baseName + ".", or baseName when none does.
// An unreadable folder is treated as having no match.
func ResolveFileName(fsys FileSystem, baseName, folder string) string {
	if filepath.Ext(baseName) != "" {
		return baseName
	}

	entries, err := fsys.ReadDir(folder)
	if err != nil {
		return baseName
	}

	prefix := baseName + "."
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			return entry.Name()
		}
	}
	return baseName
}

// LocateFile returns primary/fileName if it exists, else fallback/fileName if that exists.
// The fallback covers files left behind by an earlier failed move or stale metadata.
func LocateFile(fsys FileSystem, fileName, primary, fallback string) (string, error) {
	candidate := filepath.Join(primary, fileName)
	if isRegularFile(fsys, candidate) {
		return candidate, nil
	}

	candidate = filepath.Join(fallback, fileName)
	if isRegularFile(fsys, candidate) {
		return candidate, nil
	}

	return "", ErrFileNotFound
}

func isRegularFile(fsys FileSystem, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// StripExtension returns name without its final extension
func StripExtension(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
