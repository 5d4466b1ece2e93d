package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/cinemaadmin/backend/internal/metrics"
	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/internal/repositories"
	"github.com/cinemaadmin/backend/internal/storage"
	"go.uber.org/zap"
)

// MediaItemRepository is the interface that wraps methods for media_items and media_actors data access
type MediaItemRepository interface {
	// Method List retrieves a page of media items, optionally filtered by category.
	List(ctx context.Context, filter models.MediaListFilter) ([]models.MediaItem, error)
	// Method GetByID retrieves a media item together with its actor IDs.
	//
	// repositories.ErrMediaItemNotFound is returned when the ID does not exist.
	GetByID(ctx context.Context, id int) (*models.MediaItem, error)
	// Method Create inserts a media item and sets its ID.
	Create(ctx context.Context, item *models.MediaItem) error
	// Method Update overwrites the editable columns of a media item.
	//
	// repositories.ErrMediaItemNotFound is returned when the ID does not exist.
	Update(ctx context.Context, item *models.MediaItem) error
	// Method ReplaceActors deletes every actor association of a media item and recreates one row per actor ID.
	//
	// The result only depends on the final list, so repeating the call is harmless.
	ReplaceActors(ctx context.Context, mediaID int, actorIDs []int) error
	// Method Delete removes a media item and its actor associations.
	Delete(ctx context.Context, id int) error
}

// VideoRelocator keeps video files in the folder of their category
type VideoRelocator interface {
	// Method RelocateForCategoryChange moves the video of item into the folder of newCategory.
	//
	// On success item.VideoFileName holds the resolved name without extension.
	// Failures are *storage.RelocationError and leave the file and item untouched.
	RelocateForCategoryChange(item *models.MediaItem, newCategory models.Category) error
	// Method VideoPath returns the path of the video of item in its category folder.
	VideoPath(item *models.MediaItem) (string, error)
}

// FileRemover deletes files from disk
type FileRemover interface {
	Remove(name string) error
}

const (
	defaultPageCount = 20
	maxPageCount     = 100
	maxTitleLength   = 255
)

var durationPattern = regexp.MustCompile(`^(\d{2,}:)?[0-5]\d:[0-5]\d$`)

type mediaService struct {
	repo      MediaItemRepository
	relocator VideoRelocator
	files     FileRemover
	logger    *zap.Logger
}

// NewMediaService creates a new media service
func NewMediaService(repo MediaItemRepository, relocator VideoRelocator, files FileRemover, logger *zap.Logger) *mediaService {
	return &mediaService{
		repo:      repo,
		relocator: relocator,
		files:     files,
		logger:    logger,
	}
}

// List retrieves a page of media items
func (s *mediaService) List(ctx context.Context, category string, page, count int) ([]models.MediaItem, error) {
	filter := models.MediaListFilter{Page: page, Count: count}

	if category != "" {
		c, err := models.ParseCategory(category)
		if err != nil {
			return nil, validationError("%v", err)
		}
		filter.Category = c
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Count < 1 {
		filter.Count = defaultPageCount
	}
	if filter.Count > maxPageCount {
		filter.Count = maxPageCount
	}

	return s.repo.List(ctx, filter)
}

// Get retrieves a media item by ID
func (s *mediaService) Get(ctx context.Context, id int) (*models.MediaItem, error) {
	if id <= 0 {
		return nil, validationError("id must be positive")
	}
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrMediaItemNotFound) {
		return nil, notFoundError("media item %d", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Create validates input and stores a new media item with its actors
func (s *mediaService) Create(ctx context.Context, input *models.MediaItemInput) (*models.MediaItem, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	item := &models.MediaItem{}
	applyInput(item, input)
	item.VideoFileName = storage.StripExtension(input.VideoFileName)

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create media item: %w", err)
	}

	if len(item.ActorIDs) > 0 {
		if err := s.repo.ReplaceActors(ctx, item.ID, item.ActorIDs); err != nil {
			return nil, fmt.Errorf("failed to save actors of media item %d: %w", item.ID, err)
		}
	}

	s.logger.Info("media item created", zap.Int("media_id", item.ID), zap.String("category", string(item.Category)))
	return item, nil
}

// Update validates input, moves the video when the category changes and only then writes the
// record and its actor associations. A failed relocation aborts before any database write.
func (s *mediaService) Update(ctx context.Context, id int, input *models.MediaItemInput) (*models.MediaItem, error) {
	if id <= 0 {
		return nil, validationError("id must be positive")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// the submitted video may be a fresh upload that replaces the stored one
	item := *current
	if input.VideoFileName != "" {
		item.VideoFileName = input.VideoFileName
	}

	if input.Category != current.Category {
		if err := s.relocator.RelocateForCategoryChange(&item, input.Category); err != nil {
			recordRelocation(err)
			s.logger.Error("failed to relocate video",
				zap.Int("media_id", id),
				zap.String("from", string(current.Category)),
				zap.String("to", string(input.Category)),
				zap.Error(err),
			)
			return nil, err
		}
		if item.VideoFileName != "" {
			recordRelocation(nil)
		}
	}

	videoFileName := storage.StripExtension(item.VideoFileName)
	applyInput(&item, input)
	item.VideoFileName = videoFileName

	if err := s.repo.Update(ctx, &item); err != nil {
		if errors.Is(err, repositories.ErrMediaItemNotFound) {
			return nil, notFoundError("media item %d", id)
		}
		return nil, fmt.Errorf("failed to update media item %d: %w", id, err)
	}

	if err := s.repo.ReplaceActors(ctx, id, item.ActorIDs); err != nil {
		return nil, fmt.Errorf("failed to save actors of media item %d: %w", id, err)
	}

	s.logger.Info("media item updated", zap.Int("media_id", id), zap.String("category", string(item.Category)))
	return &item, nil
}

// Delete removes a media item and then its video file. A missing file is only logged.
func (s *mediaService) Delete(ctx context.Context, id int) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMediaItemNotFound) {
			return notFoundError("media item %d", id)
		}
		return fmt.Errorf("failed to delete media item %d: %w", id, err)
	}

	if item.VideoFileName == "" {
		return nil
	}
	path, err := s.relocator.VideoPath(item)
	if err != nil {
		s.logger.Warn("video of deleted media item not found", zap.Int("media_id", id), zap.Error(err))
		return nil
	}
	if err := s.files.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove video of deleted media item", zap.Int("media_id", id), zap.String("path", path), zap.Error(err))
	}
	return nil
}

func recordRelocation(err error) {
	var relocErr *storage.RelocationError
	switch {
	case err == nil:
		metrics.RelocationsTotal.WithLabelValues("moved").Inc()
	case errors.As(err, &relocErr) && relocErr.IsNotFound():
		metrics.RelocationsTotal.WithLabelValues("not_found").Inc()
	default:
		metrics.RelocationsTotal.WithLabelValues("failed").Inc()
	}
}

func applyInput(item *models.MediaItem, input *models.MediaItemInput) {
	item.Title = strings.TrimSpace(input.Title)
	item.Description = strings.TrimSpace(input.Description)
	item.Category = input.Category
	item.Genre = strings.TrimSpace(input.Genre)
	item.Duration = input.Duration
	item.ThumbnailURL = input.ThumbnailURL
	item.ActorIDs = input.ActorIDs
	if item.ActorIDs == nil {
		item.ActorIDs = []int{}
	}
}

func validateInput(input *models.MediaItemInput) error {
	if input == nil {
		return validationError("request body is required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return validationError("title is required")
	}
	if len(title) > maxTitleLength {
		return validationError("title must be at most %d characters", maxTitleLength)
	}
	if !input.Category.Valid() {
		return validationError("category must be %q or %q", models.CategoryMovie, models.CategorySeries)
	}
	if input.Duration != "" && !durationPattern.MatchString(input.Duration) {
		return validationError("duration must be HH:MM:SS or MM:SS")
	}
	if input.VideoFileName != "" && storage.SanitizeFileName(input.VideoFileName) != input.VideoFileName {
		return validationError("videoFileName must be a plain file name")
	}
	for _, actorID := range input.ActorIDs {
		if actorID <= 0 {
			return validationError("actor ids must be positive")
		}
	}
	return nil
}
