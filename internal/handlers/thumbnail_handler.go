package handlers

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ThumbnailService is the interface that wraps methods for thumbnail capture and storage.
type ThumbnailService interface {
	// Method Generate captures candidate frames of a video at the default offset.
	//
	// A response with Available false means capture is not possible for this video
	// (no ffmpeg, no video stream, zero duration) and is not an error.
	Generate(ctx context.Context, videoID, videoPath string) (*models.CaptureResponse, error)
	// Method Regenerate discards the current candidates and captures a new set at a random offset.
	Regenerate(ctx context.Context, videoID, videoPath string) (*models.CaptureResponse, error)
	// Method Select stores one candidate as the thumbnail of a video.
	Select(ctx context.Context, videoID string, index int) (*models.ThumbnailRef, error)
	// Method UploadManual stores an uploaded image as a thumbnail.
	UploadManual(ctx context.Context, r io.Reader) (*models.ThumbnailRef, error)
}

// ThumbnailFiles opens stored thumbnails
type ThumbnailFiles interface {
	Open(name string) (*os.File, error)
}

const maxThumbnailUpload = 20 << 20

// ThumbnailHandler handles thumbnail requests
type ThumbnailHandler struct {
	handlers.BaseHandler
	thumbnailService ThumbnailService
	files            ThumbnailFiles
}

// NewThumbnailHandler creates a new thumbnail handler
func NewThumbnailHandler(thumbnailService ThumbnailService, files ThumbnailFiles, logger *zap.Logger) *ThumbnailHandler {
	return &ThumbnailHandler{
		BaseHandler:      handlers.BaseHandler{Logger: logger},
		thumbnailService: thumbnailService,
		files:            files,
	}
}

// RegisterRoutes registers the public thumbnail routes
func (h *ThumbnailHandler) RegisterRoutes(r chi.Router) {
	r.Get("/thumbnails/{filename}", h.Serve)
}

// RegisterAdminRoutes registers the thumbnail routes that require the admin role
func (h *ThumbnailHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/thumbnails", func(r chi.Router) {
		r.Post("/candidates", h.Candidates)
		r.Post("/select", h.Select)
		r.Post("/manual", h.UploadManual)
	})
}

// CandidatesRequest is the body of the capture endpoint
type CandidatesRequest struct {
	VideoID    string `json:"videoId"`
	Path       string `json:"path"`
	Regenerate bool   `json:"regenerate"`
}

// SelectRequest is the body of the select endpoint
type SelectRequest struct {
	VideoID string `json:"videoId"`
	Index   *int   `json:"index"`
}

// Candidates handles POST /admin/thumbnails/candidates
// @Summary Capture thumbnail candidates
// @Description Capture evenly spaced frames of an uploaded video as JPEG data URIs. With regenerate set the frames are taken at a random offset.
// @Tags thumbnails
// @Accept json
// @Produce json
// @Param request body CandidatesRequest true "Video to capture"
// @Success 200 {object} models.CaptureResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/thumbnails/candidates [post]
func (h *ThumbnailHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	var req CandidatesRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	capture := h.thumbnailService.Generate
	if req.Regenerate {
		capture = h.thumbnailService.Regenerate
	}

	resp, err := capture(r.Context(), req.VideoID, req.Path)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "capture thumbnails", zap.String("video_id", req.VideoID))
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Select handles POST /admin/thumbnails/select
// @Summary Select thumbnail candidate
// @Tags thumbnails
// @Accept json
// @Produce json
// @Param request body SelectRequest true "Candidate to keep"
// @Success 201 {object} models.ThumbnailRef
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "No candidates for video"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/thumbnails/select [post]
func (h *ThumbnailHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VideoID == "" || req.Index == nil {
		h.RespondError(w, http.StatusBadRequest, "videoId and index are required")
		return
	}

	ref, err := h.thumbnailService.Select(r.Context(), req.VideoID, *req.Index)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "select thumbnail", zap.String("video_id", req.VideoID))
		return
	}

	h.RespondJSON(w, http.StatusCreated, ref)
}

// UploadManual handles POST /admin/thumbnails/manual
// @Summary Upload thumbnail image
// @Description Store an uploaded image as a thumbnail. The image is re-encoded as JPEG and fitted into 1920x1080.
// @Tags thumbnails
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 201 {object} models.ThumbnailRef
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/thumbnails/manual [post]
func (h *ThumbnailHandler) UploadManual(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxThumbnailUpload); err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	ref, err := h.thumbnailService.UploadManual(r.Context(), file)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "store thumbnail")
		return
	}

	h.RespondJSON(w, http.StatusCreated, ref)
}

// Serve handles GET /thumbnails/{filename}
// @Summary Get thumbnail
// @Tags thumbnails
// @Produce image/jpeg
// @Param filename path string true "Thumbnail file name"
// @Success 200 "Image"
// @Failure 404 {object} map[string]string
// @Router /thumbnails/{filename} [get]
func (h *ThumbnailHandler) Serve(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	file, err := h.files.Open(filename)
	if err != nil {
		h.RespondError(w, http.StatusNotFound, "thumbnail not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		h.RespondError(w, http.StatusNotFound, "thumbnail not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, filename, info.ModTime(), file)
}
