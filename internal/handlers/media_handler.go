package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MediaService is the interface that wraps methods for media item business logic.
type MediaService interface {
	// Method List retrieve a page of media items using configured repository.
	//
	// "category" parameter filters the list by "Movie" or "Series"; empty means all categories.
	// "page" and "count" parameters are clamped to sane defaults.
	List(ctx context.Context, category string, page, count int) ([]models.MediaItem, error)
	// Method Get retrieve a media item with its actor IDs.
	Get(ctx context.Context, id int) (*models.MediaItem, error)
	// Method Create validates and stores a new media item.
	Create(ctx context.Context, input *models.MediaItemInput) (*models.MediaItem, error)
	// Method Update validates input and, when the category changes, moves the video file into the
	// folder of the new category before any database write.
	//
	// If the move fails the media item is left untouched and a *storage.RelocationError is returned.
	Update(ctx context.Context, id int, input *models.MediaItemInput) (*models.MediaItem, error)
	// Method Delete removes a media item together with its video file.
	Delete(ctx context.Context, id int) error
}

// MediaHandler handles HTTP requests for media items
type MediaHandler struct {
	handlers.BaseHandler
	mediaService MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler:  handlers.BaseHandler{Logger: logger},
		mediaService: mediaService,
	}
}

// RegisterRoutes registers the public media routes
func (h *MediaHandler) RegisterRoutes(r chi.Router) {
	r.Route("/media", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

// RegisterAdminRoutes registers the media routes that require the admin role
func (h *MediaHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/media", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /media
// @Summary List media items
// @Description Get a page of media items, optionally filtered by category
// @Tags media
// @Produce json
// @Param category query string false "Movie or Series"
// @Param page query int false "Page number (default: 1)"
// @Param count query int false "Items per page (default: 20, max: 100)"
// @Success 200 {array} models.MediaItem
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /media [get]
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := optionalInt(query.Get("page"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid page parameter")
		return
	}
	count, err := optionalInt(query.Get("count"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid count parameter")
		return
	}

	items, err := h.mediaService.List(r.Context(), query.Get("category"), page, count)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "list media items")
		return
	}

	h.RespondJSON(w, http.StatusOK, items)
}

// Get handles GET /media/{id}
// @Summary Get media item
// @Description Get a media item by ID together with its actor IDs
// @Tags media
// @Produce json
// @Param id path int true "Media item ID"
// @Success 200 {object} models.MediaItem
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /media/{id} [get]
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	item, err := h.mediaService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "get media item", zap.Int("media_id", id))
		return
	}

	h.RespondJSON(w, http.StatusOK, item)
}

// Create handles POST /admin/media
// @Summary Create media item
// @Tags admin
// @Accept json
// @Produce json
// @Param item body models.MediaItemInput true "Media item"
// @Success 201 {object} models.MediaItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/media [post]
func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.MediaItemInput
	if err := h.DecodeJSON(r, &input); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.mediaService.Create(r.Context(), &input)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "create media item")
		return
	}

	h.RespondJSON(w, http.StatusCreated, item)
}

// Update handles PUT /admin/media/{id}
// @Summary Update media item
// @Description Update a media item. A category change moves the video file into the folder of the new category first; if the move fails nothing is written.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Media item ID"
// @Param item body models.MediaItemInput true "Media item"
// @Success 200 {object} models.MediaItem
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string "Video file not found in either category folder"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/media/{id} [put]
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var input models.MediaItemInput
	if err := h.DecodeJSON(r, &input); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.mediaService.Update(r.Context(), id, &input)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "update media item", zap.Int("media_id", id))
		return
	}

	h.RespondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /admin/media/{id}
// @Summary Delete media item
// @Tags admin
// @Param id path int true "Media item ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/media/{id} [delete]
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.mediaService.Delete(r.Context(), id); err != nil {
		respondServiceError(&h.BaseHandler, w, err, "delete media item", zap.Int("media_id", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
