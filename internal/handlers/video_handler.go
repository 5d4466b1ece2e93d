package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/internal/storage"
	"github.com/cinemaadmin/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// VideoHandler serves video files from the category folders with range support
type VideoHandler struct {
	handlers.BaseHandler
	folders storage.Folders
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(folders storage.Folders, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		folders:     folders,
	}
}

// RegisterRoutes registers the playback route
func (h *VideoHandler) RegisterRoutes(r chi.Router) {
	r.Get("/videos/{category}/{filename}", h.Stream)
}

// Stream handles GET /videos/{category}/{filename}
// @Summary Stream video
// @Description Serve a video file of a category folder. Range requests are supported.
// @Tags videos
// @Produce application/octet-stream
// @Param category path string true "Movie or Series"
// @Param filename path string true "Video file name"
// @Param Range header string false "Range"
// @Success 200 "File content"
// @Success 206 "Partial file content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /videos/{category}/{filename} [get]
func (h *VideoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	folder, err := h.folders.For(category)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := chi.URLParam(r, "filename")
	if storage.SanitizeFileName(filename) != filename {
		h.RespondError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	file, err := os.Open(filepath.Join(folder, filename))
	if err != nil {
		if !os.IsNotExist(err) {
			h.Logger.Error("failed to open video", zap.String("file", filename), zap.Error(err))
		}
		h.RespondError(w, http.StatusNotFound, "video not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		h.RespondError(w, http.StatusNotFound, "video not found")
		return
	}

	http.ServeContent(w, r, filename, info.ModTime(), file)
}
