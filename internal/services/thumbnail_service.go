package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/internal/storage"
	"github.com/cinemaadmin/backend/internal/thumbnail"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// FrameCapturer produces candidate frames of a video
type FrameCapturer interface {
	Capture(ctx context.Context, videoPath string, offset float64) (*thumbnail.Result, error)
}

// CandidateStore keeps the candidate set of each video until one is selected
type CandidateStore interface {
	Put(set models.ThumbnailCandidates)
	Select(videoID string, index int) (string, error)
	Delete(videoID string)
}

// AssetStore persists committed thumbnail images
type AssetStore interface {
	Create(name string) (io.WriteCloser, error)
	Delete(name string) error
}

const (
	maxThumbnailWidth  = 1920
	maxThumbnailHeight = 1080
)

type thumbnailService struct {
	capturer   FrameCapturer
	candidates CandidateStore
	assets     AssetStore
	folders    storage.Folders
	baseURL    string
	logger     *zap.Logger
}

// NewThumbnailService creates a new thumbnail service. baseURL prefixes the URLs of committed thumbnails.
func NewThumbnailService(capturer FrameCapturer, candidates CandidateStore, assets AssetStore, folders storage.Folders, baseURL string, logger *zap.Logger) *thumbnailService {
	return &thumbnailService{
		capturer:   capturer,
		candidates: candidates,
		assets:     assets,
		folders:    folders,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Generate captures candidates at the default offset
func (s *thumbnailService) Generate(ctx context.Context, videoID, videoPath string) (*models.CaptureResponse, error) {
	return s.capture(ctx, videoID, videoPath, 0)
}

// Regenerate discards the current candidates and captures a new set at a random offset
func (s *thumbnailService) Regenerate(ctx context.Context, videoID, videoPath string) (*models.CaptureResponse, error) {
	return s.capture(ctx, videoID, videoPath, thumbnail.RandomOffset())
}

func (s *thumbnailService) capture(ctx context.Context, videoID, videoPath string, offset float64) (*models.CaptureResponse, error) {
	if videoID == "" {
		return nil, validationError("videoId is required")
	}
	abs, err := filepath.Abs(videoPath)
	if err != nil || !storage.IsWithin(abs, s.folders.All()...) {
		return nil, validationError("path must point into a category folder")
	}
	if info, err := os.Stat(abs); err != nil || !info.Mode().IsRegular() {
		return nil, notFoundError("video %s", filepath.Base(abs))
	}

	s.candidates.Delete(videoID)

	result, err := s.capturer.Capture(ctx, abs, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to capture thumbnails: %w", err)
	}

	if result.Status == thumbnail.StatusUnavailable {
		s.logger.Info("thumbnail capture unavailable", zap.String("video_id", videoID), zap.String("reason", result.Reason))
		return &models.CaptureResponse{Available: false, Reason: result.Reason}, nil
	}

	set := models.ThumbnailCandidates{
		VideoID:    videoID,
		Offset:     result.Offset,
		Candidates: result.Candidates,
	}
	s.candidates.Put(set)

	return &models.CaptureResponse{Available: true, Set: &set}, nil
}

// Select commits candidate index of videoID as a thumbnail and clears the candidate set
func (s *thumbnailService) Select(ctx context.Context, videoID string, index int) (*models.ThumbnailRef, error) {
	uri, err := s.candidates.Select(videoID, index)
	switch {
	case errors.Is(err, thumbnail.ErrNoCandidates):
		return nil, notFoundError("thumbnail candidates for %s", videoID)
	case errors.Is(err, thumbnail.ErrCandidateIndex):
		return nil, validationError("index %d out of range", index)
	case err != nil:
		return nil, err
	}

	data, err := thumbnail.DecodeDataURI(uri)
	if err != nil {
		return nil, fmt.Errorf("stored candidate is corrupt: %w", err)
	}

	return s.save(data)
}

// UploadManual stores an uploaded image as a thumbnail, re-encoded as JPEG and fitted into 1920x1080
func (s *thumbnailService) UploadManual(ctx context.Context, r io.Reader) (*models.ThumbnailRef, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, validationError("unsupported image: %v", err)
	}

	b := img.Bounds()
	if b.Dx() > maxThumbnailWidth || b.Dy() > maxThumbnailHeight {
		img = imaging.Fit(img, maxThumbnailWidth, maxThumbnailHeight, imaging.Lanczos)
	}

	data, err := thumbnail.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}
	return s.save(data)
}

func (s *thumbnailService) save(data []byte) (*models.ThumbnailRef, error) {
	name := storage.GenerateFileName(".jpg")

	w, err := s.assets.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		s.assets.Delete(name)
		return nil, fmt.Errorf("failed to write thumbnail: %w", err)
	}
	if err := w.Close(); err != nil {
		s.assets.Delete(name)
		return nil, fmt.Errorf("failed to write thumbnail: %w", err)
	}

	ref := &models.ThumbnailRef{
		FileName: name,
		URL:      fmt.Sprintf("%s/api/v1/thumbnails/%s", s.baseURL, name),
	}
	s.logger.Info("thumbnail saved", zap.String("file", name), zap.Int("bytes", len(data)))
	return ref, nil
}
