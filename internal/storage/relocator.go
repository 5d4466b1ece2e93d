package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cinemaadmin/backend/internal/models"
	"go.uber.org/zap"
)

// RelocationError describes why a video could not be moved to its new category folder
type RelocationError struct {
	MediaID  int
	FileName string
	Op       string
	Err      error
}

func (e *RelocationError) Error() string {
	return fmt.Sprintf("relocate video %q of media item %d: %s: %v", e.FileName, e.MediaID, e.Op, e.Err)
}

func (e *RelocationError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the video could not be located in any folder
func (e *RelocationError) IsNotFound() bool {
	return errors.Is(e.Err, ErrFileNotFound)
}

// Relocator keeps a media item's video file in the folder of its category
type Relocator struct {
	folders Folders
	fs      FileSystem
	mover   *Mover
	locks   *KeyedMutex[int]
	logger  *zap.Logger
}

// NewRelocator creates a relocator for the injected folder configuration
func NewRelocator(folders Folders, fsys FileSystem, logger *zap.Logger) *Relocator {
	return &Relocator{
		folders: folders,
		fs:      fsys,
		mover:   NewMover(fsys, logger),
		locks:   NewKeyedMutex[int](),
		logger:  logger,
	}
}

// RelocateForCategoryChange moves item's video into the folder of newCategory.
//
// It does nothing, and touches no file, when the category is unchanged or the item has no video.
// On success item.VideoFileName holds the resolved file name without extension; item.Category is
// left to the caller. Every failure is a *RelocationError and leaves item untouched.
// Relocations of the same item ID are serialised.
func (r *Relocator) RelocateForCategoryChange(item *models.MediaItem, newCategory models.Category) error {
	if item == nil || item.Category == newCategory || item.VideoFileName == "" {
		return nil
	}

	fail := func(op string, err error) error {
		return &RelocationError{MediaID: item.ID, FileName: item.VideoFileName, Op: op, Err: err}
	}

	oldFolder, err := r.folders.For(item.Category)
	if err != nil {
		return fail("resolve source folder", err)
	}
	newFolder, err := r.folders.For(newCategory)
	if err != nil {
		return fail("resolve destination folder", err)
	}

	unlock := r.locks.Lock(item.ID)
	defer unlock()

	fileName := ResolveFileName(r.fs, item.VideoFileName, oldFolder)
	if fileName == item.VideoFileName && filepath.Ext(fileName) == "" {
		fileName = ResolveFileName(r.fs, item.VideoFileName, newFolder)
	}

	oldPath, err := LocateFile(r.fs, fileName, oldFolder, newFolder)
	if err != nil {
		return fail("locate", fmt.Errorf("%w in %s or %s", err, oldFolder, newFolder))
	}

	newPath := filepath.Join(newFolder, fileName)
	if oldPath == newPath {
		r.logger.Info("video already in destination folder",
			zap.Int("media_id", item.ID),
			zap.String("path", newPath),
		)
	} else {
		if err := r.fs.MkdirAll(newFolder, 0o755); err != nil {
			return fail("prepare destination", err)
		}
		if err := r.mover.Move(oldPath, newPath); err != nil {
			return fail("move", err)
		}
		r.logger.Info("video relocated",
			zap.Int("media_id", item.ID),
			zap.String("from", oldPath),
			zap.String("to", newPath),
		)
	}

	item.VideoFileName = StripExtension(fileName)
	return nil
}

// VideoPath returns the absolute path of item's video. The folder of its category is searched
// first, then the other folder, where a move whose record update failed leaves the file.
func (r *Relocator) VideoPath(item *models.MediaItem) (string, error) {
	folder, err := r.folders.For(item.Category)
	if err != nil {
		return "", err
	}
	other, err := r.folders.Other(item.Category)
	if err != nil {
		return "", err
	}

	fileName := ResolveFileName(r.fs, item.VideoFileName, folder)
	if fileName == item.VideoFileName && filepath.Ext(fileName) == "" {
		fileName = ResolveFileName(r.fs, item.VideoFileName, other)
	}
	return LocateFile(r.fs, fileName, folder, other)
}
