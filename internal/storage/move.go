package storage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
)

// Mover moves files, falling back to copy and delete when a rename crosses devices
type Mover struct {
	fs     FileSystem
	logger *zap.Logger
}

// NewMover creates a mover over fsys
func NewMover(fsys FileSystem, logger *zap.Logger) *Mover {
	return &Mover{fs: fsys, logger: logger}
}

// IsCrossDevice reports whether err is the EXDEV failure of a rename across filesystems
func IsCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// Move renames oldPath to newPath. When the rename fails with EXDEV the file is streamed into a
// temporary file next to newPath, synced, renamed into place and only then is oldPath removed.
// A crash before the final rename leaves the source intact and no file under newPath; a crash
// after it can leave both copies. Failing to remove the source is logged, not returned.
func (m *Mover) Move(oldPath, newPath string) error {
	err := m.fs.Rename(oldPath, newPath)
	if err == nil {
		return nil
	}
	if !IsCrossDevice(err) {
		return fmt.Errorf("failed to rename %s to %s: %w", oldPath, newPath, err)
	}

	m.logger.Info("rename crosses devices, copying instead",
		zap.String("from", oldPath),
		zap.String("to", newPath),
	)

	if err := m.copyStaged(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", oldPath, newPath, err)
	}

	if err := m.fs.Remove(oldPath); err != nil {
		m.logger.Warn("failed to remove source after copy, duplicate file remains",
			zap.String("path", oldPath),
			zap.Error(err),
		)
	}
	return nil
}

// copyStaged copies src to a temp file in dst's directory and renames it to dst.
// The copy keeps the permission bits of src, as a plain rename would.
func (m *Mover) copyStaged(src, dst string) (err error) {
	info, err := m.fs.Stat(src)
	if err != nil {
		return err
	}
	in, err := m.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := m.fs.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := m.fs.Remove(tmp.Name()); rmErr != nil {
				m.logger.Warn("failed to remove staging file", zap.String("path", tmp.Name()), zap.Error(rmErr))
			}
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return m.fs.Rename(tmp.Name(), dst)
}
