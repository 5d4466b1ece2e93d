package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cinemaadmin/backend/internal/metrics"
	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/internal/repositories"
	"github.com/cinemaadmin/backend/internal/storage"
	"go.uber.org/zap"
)

// UploadSessionRepository stores the receive side state of chunked uploads
type UploadSessionRepository interface {
	Save(ctx context.Context, session *models.ChunkSession) error
	Get(ctx context.Context, uploadID string) (*models.ChunkSession, error)
	Delete(ctx context.Context, uploadID string) error
	ListStale(ctx context.Context, cutoff time.Time) ([]models.ChunkSession, error)
}

// FileMover moves a file, possibly across filesystems
type FileMover interface {
	Move(oldPath, newPath string) error
}

// ChunkInput is one chunk as received by the chunk endpoint
type ChunkInput struct {
	UploadID string
	Index    int
	Total    int
	Category models.Category
	FileName string
	Data     io.Reader
}

// UploadConfig holds the upload service settings
type UploadConfig struct {
	TempDir      string
	MaxChunkSize int64
	Folders      storage.Folders
}

const partSuffix = ".part"

var (
	uploadIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	videoExtensions = map[string]bool{
		".mp4":  true,
		".m4v":  true,
		".mkv":  true,
		".webm": true,
		".mov":  true,
		".avi":  true,
	}
)

type uploadService struct {
	sessions UploadSessionRepository
	mover    FileMover
	cfg      UploadConfig
	locks    *storage.KeyedMutex[string]
	logger   *zap.Logger
	now      func() time.Time
}

// NewUploadService creates a new upload service
func NewUploadService(sessions UploadSessionRepository, mover FileMover, cfg UploadConfig, logger *zap.Logger) *uploadService {
	return &uploadService{
		sessions: sessions,
		mover:    mover,
		cfg:      cfg,
		locks:    storage.NewKeyedMutex[string](),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *uploadService) tempPath(uploadID string) string {
	return filepath.Join(s.cfg.TempDir, uploadID+partSuffix)
}

// ReceiveChunk appends a chunk to its upload. Chunks must arrive in order; index 0 (re)starts the
// upload and a repeat of the last accepted index is acknowledged without writing. The final chunk
// moves the assembled file into the folder of the upload's category as <uploadID><ext>.
func (s *uploadService) ReceiveChunk(ctx context.Context, in ChunkInput) (*models.ChunkAck, error) {
	ext, err := s.validateChunk(&in)
	if err != nil {
		metrics.UploadChunksTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	unlock := s.locks.Lock(in.UploadID)
	defer unlock()

	session, err := s.sessions.Get(ctx, in.UploadID)
	if err != nil && !errors.Is(err, repositories.ErrUploadSessionNotFound) {
		metrics.UploadChunksTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load upload session: %w", err)
	}

	switch {
	case session != nil && in.Index == session.NextIndex-1 && in.Total == session.TotalChunks:
		metrics.UploadChunksTotal.WithLabelValues("duplicate").Inc()
		s.logger.Debug("duplicate chunk acknowledged", zap.String("upload_id", in.UploadID), zap.Int("index", in.Index))
		return ackFor(session, in.Index), nil

	case in.Index == 0:
		now := s.now()
		session = &models.ChunkSession{
			UploadID:    in.UploadID,
			VideoID:     in.UploadID,
			Category:    in.Category,
			FileName:    in.FileName,
			TotalChunks: in.Total,
			TempPath:    s.tempPath(in.UploadID),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

	case session == nil:
		metrics.UploadChunksTotal.WithLabelValues("rejected").Inc()
		return nil, notFoundError("upload session %s", in.UploadID)

	case in.Total != session.TotalChunks || in.Category != session.Category:
		metrics.UploadChunksTotal.WithLabelValues("rejected").Inc()
		return nil, validationError("chunk %d does not match upload %s (total %d, category %s)",
			in.Index, in.UploadID, session.TotalChunks, session.Category)

	case in.Index != session.NextIndex:
		metrics.UploadChunksTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: upload %s expects chunk %d, got %d", ErrUploadOrder, in.UploadID, session.NextIndex, in.Index)
	}

	n, err := s.writeChunk(session, in.Data)
	if err != nil {
		metrics.UploadChunksTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	session.NextIndex++
	session.Received += n
	session.UpdatedAt = s.now()
	metrics.UploadChunksTotal.WithLabelValues("accepted").Inc()
	metrics.UploadBytesTotal.Add(float64(n))

	if session.NextIndex < session.TotalChunks {
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to save upload session: %w", err)
		}
		return ackFor(session, in.Index), nil
	}

	return s.commit(ctx, session, ext)
}

func (s *uploadService) validateChunk(in *ChunkInput) (string, error) {
	if !uploadIDPattern.MatchString(in.UploadID) {
		return "", validationError("uploadId must be 1-64 letters, digits, '-' or '_'")
	}
	if in.Total <= 0 {
		return "", validationError("total must be positive")
	}
	if in.Index < 0 || in.Index >= in.Total {
		return "", validationError("index %d out of range [0, %d)", in.Index, in.Total)
	}
	if !in.Category.Valid() {
		return "", validationError("category must be %q or %q", models.CategoryMovie, models.CategorySeries)
	}
	in.FileName = storage.SanitizeFileName(in.FileName)
	if in.FileName == "" {
		return "", validationError("fileName is required")
	}
	ext := strings.ToLower(filepath.Ext(in.FileName))
	if !videoExtensions[ext] {
		return "", validationError("unsupported video extension %q", ext)
	}
	if in.Data == nil {
		return "", validationError("chunk data is required")
	}
	return ext, nil
}

// writeChunk truncates the temp file to the bytes already accepted and appends data, so a chunk
// that failed half way is overwritten by its retry
func (s *uploadService) writeChunk(session *models.ChunkSession, data io.Reader) (int64, error) {
	if err := os.MkdirAll(s.cfg.TempDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create upload temp dir: %w", err)
	}

	f, err := os.OpenFile(session.TempPath, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open upload temp file: %w", err)
	}
	defer f.Close()

	if err := f.Truncate(session.Received); err != nil {
		return 0, fmt.Errorf("failed to truncate upload temp file: %w", err)
	}
	if _, err := f.Seek(session.Received, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek upload temp file: %w", err)
	}

	limit := s.cfg.MaxChunkSize
	if limit <= 0 {
		limit = 10 << 20
	}
	n, err := io.Copy(f, io.LimitReader(data, limit+1))
	if err != nil {
		return 0, fmt.Errorf("failed to write chunk: %w", err)
	}
	if n > limit {
		return 0, validationError("chunk exceeds %d bytes", limit)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close upload temp file: %w", err)
	}
	return n, nil
}

func (s *uploadService) commit(ctx context.Context, session *models.ChunkSession, ext string) (*models.ChunkAck, error) {
	folder, err := s.cfg.Folders.For(session.Category)
	if err != nil {
		return nil, validationError("%v", err)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", folder, err)
	}

	dest := filepath.Join(folder, session.VideoID+ext)
	if err := s.mover.Move(session.TempPath, dest); err != nil {
		return nil, fmt.Errorf("failed to commit upload %s: %w", session.UploadID, err)
	}

	if err := s.sessions.Delete(ctx, session.UploadID); err != nil {
		s.logger.Warn("failed to delete finished upload session", zap.String("upload_id", session.UploadID), zap.Error(err))
	}
	metrics.UploadsCompletedTotal.Inc()

	s.logger.Info("upload committed",
		zap.String("upload_id", session.UploadID),
		zap.String("path", dest),
		zap.Int64("bytes", session.Received),
		zap.Int("chunks", session.TotalChunks),
	)

	ack := ackFor(session, session.TotalChunks-1)
	ack.Completed = true
	ack.FilePath = dest
	ack.VideoID = session.VideoID
	return ack, nil
}

func ackFor(session *models.ChunkSession, index int) *models.ChunkAck {
	return &models.ChunkAck{
		UploadID: session.UploadID,
		Index:    index,
		Total:    session.TotalChunks,
		Progress: session.Progress(),
	}
}

// GetStatus returns the progress of an upload in flight
func (s *uploadService) GetStatus(ctx context.Context, uploadID string) (*models.UploadStatus, error) {
	session, err := s.sessions.Get(ctx, uploadID)
	if errors.Is(err, repositories.ErrUploadSessionNotFound) {
		return nil, notFoundError("upload session %s", uploadID)
	}
	if err != nil {
		return nil, err
	}

	return &models.UploadStatus{
		UploadID:       session.UploadID,
		VideoID:        session.VideoID,
		Category:       session.Category,
		FileName:       session.FileName,
		TotalChunks:    session.TotalChunks,
		UploadedChunks: session.NextIndex,
		Progress:       session.Progress(),
	}, nil
}

// Abort discards an upload in flight and its temp data
func (s *uploadService) Abort(ctx context.Context, uploadID string) error {
	if !uploadIDPattern.MatchString(uploadID) {
		return validationError("invalid upload id")
	}

	unlock := s.locks.Lock(uploadID)
	defer unlock()

	session, err := s.sessions.Get(ctx, uploadID)
	if errors.Is(err, repositories.ErrUploadSessionNotFound) {
		return notFoundError("upload session %s", uploadID)
	}
	if err != nil {
		return err
	}

	return s.discard(ctx, session)
}

func (s *uploadService) discard(ctx context.Context, session *models.ChunkSession) error {
	tempPath := session.TempPath
	if tempPath == "" {
		tempPath = s.tempPath(session.UploadID)
	}
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload temp file: %w", err)
	}
	if err := s.sessions.Delete(ctx, session.UploadID); err != nil {
		return fmt.Errorf("failed to delete upload session: %w", err)
	}
	return nil
}

// DeleteAsset removes an uploaded file. The path must lie inside a category folder or the
// upload temp dir.
func (s *uploadService) DeleteAsset(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return validationError("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return validationError("invalid path: %v", err)
	}

	roots := append(s.cfg.Folders.All(), s.cfg.TempDir)
	if !storage.IsWithin(abs, roots...) {
		return validationError("path is outside the media folders")
	}

	info, err := os.Lstat(abs)
	if os.IsNotExist(err) {
		return notFoundError("file %s", filepath.Base(abs))
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if !info.Mode().IsRegular() {
		return validationError("path is not a regular file")
	}

	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("failed to delete %s: %w", abs, err)
	}

	s.logger.Info("uploaded asset deleted", zap.String("path", abs))
	return nil
}

// CleanupStale removes sessions not updated within maxAge together with their temp files,
// then removes orphaned temp files of the same age. It returns the number of sessions removed.
func (s *uploadService) CleanupStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)

	stale, err := s.sessions.ListStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range stale {
		session := stale[i]
		unlock := s.locks.Lock(session.UploadID)
		err := s.discard(ctx, &session)
		unlock()
		if err != nil {
			s.logger.Warn("failed to clean stale upload", zap.String("upload_id", session.UploadID), zap.Error(err))
			continue
		}
		removed++
	}

	s.removeOrphans(ctx, cutoff)

	if removed > 0 {
		metrics.UploadSessionsCleanedTotal.Add(float64(removed))
		s.logger.Info("stale uploads cleaned", zap.Int("count", removed), zap.Duration("max_age", maxAge))
	}
	return removed, nil
}

// removeOrphans deletes temp files whose session is gone, e.g. after a restart with the in-memory store
func (s *uploadService) removeOrphans(ctx context.Context, cutoff time.Time) {
	entries, err := os.ReadDir(s.cfg.TempDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, partSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		uploadID := strings.TrimSuffix(name, partSuffix)
		if _, err := s.sessions.Get(ctx, uploadID); !errors.Is(err, repositories.ErrUploadSessionNotFound) {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.TempDir, name)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove orphaned upload file", zap.String("file", name), zap.Error(err))
		}
	}
}
