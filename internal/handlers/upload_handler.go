package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/internal/services"
	"github.com/cinemaadmin/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UploadService is the interface that wraps methods for chunked video uploads.
type UploadService interface {
	// Method ReceiveChunk appends one chunk to an upload.
	//
	// Chunks must arrive in order. Index 0 (re)starts the upload, a repeat of the last accepted
	// index is acknowledged again and any other index fails with services.ErrUploadOrder.
	// The ack of the final chunk carries the path of the assembled file.
	ReceiveChunk(ctx context.Context, in services.ChunkInput) (*models.ChunkAck, error)
	// Method GetStatus returns the progress of an upload in flight.
	GetStatus(ctx context.Context, uploadID string) (*models.UploadStatus, error)
	// Method Abort discards an upload in flight.
	Abort(ctx context.Context, uploadID string) error
	// Method DeleteAsset removes a previously uploaded file inside the media folders.
	DeleteAsset(ctx context.Context, path string) error
}

// maxChunkMemory is the part of a multipart chunk request kept in memory, the rest spills to disk
const maxChunkMemory = 32 << 20

// UploadHandler handles chunked upload requests
type UploadHandler struct {
	handlers.BaseHandler
	uploadService UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   handlers.BaseHandler{Logger: logger},
		uploadService: uploadService,
	}
}

// RegisterAdminRoutes registers all upload routes, all of which require the admin role
func (h *UploadHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/uploads", func(r chi.Router) {
		r.Post("/chunks", h.ReceiveChunk)
		r.Delete("/", h.DeleteAsset)
		r.Get("/{uploadId}", h.GetStatus)
		r.Delete("/{uploadId}", h.Abort)
	})
}

// ReceiveChunk handles POST /admin/uploads/chunks
// @Summary Upload a video chunk
// @Description Append one chunk to a chunked upload. The response to the final chunk carries the path of the assembled file.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param uploadId formData string true "Upload ID"
// @Param index formData int true "Zero based chunk index"
// @Param total formData int true "Total number of chunks"
// @Param category formData string true "Movie or Series"
// @Param fileName formData string true "Original file name"
// @Param chunk formData file true "Chunk bytes"
// @Success 200 {object} models.ChunkAck
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Unknown upload"
// @Failure 409 {object} map[string]string "Chunk out of order"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/uploads/chunks [post]
func (h *UploadHandler) ReceiveChunk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxChunkMemory); err != nil {
		h.Logger.Warn("failed to parse chunk request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid index")
		return
	}
	total, err := strconv.Atoi(r.FormValue("total"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid total")
		return
	}

	file, fileHeader, err := r.FormFile("chunk")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "chunk is required")
		return
	}
	defer file.Close()

	fileName := r.FormValue("fileName")
	if fileName == "" {
		fileName = fileHeader.Filename
	}

	in := services.ChunkInput{
		UploadID: r.FormValue("uploadId"),
		Index:    index,
		Total:    total,
		Category: models.Category(r.FormValue("category")),
		FileName: fileName,
		Data:     file,
	}

	ack, err := h.uploadService.ReceiveChunk(r.Context(), in)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "store chunk",
			zap.String("upload_id", in.UploadID), zap.Int("index", index))
		return
	}

	h.RespondJSON(w, http.StatusOK, ack)
}

// GetStatus handles GET /admin/uploads/{uploadId}
// @Summary Get upload status
// @Tags uploads
// @Produce json
// @Param uploadId path string true "Upload ID"
// @Success 200 {object} models.UploadStatus
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/uploads/{uploadId} [get]
func (h *UploadHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadId")

	status, err := h.uploadService.GetStatus(r.Context(), uploadID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, err, "get upload status", zap.String("upload_id", uploadID))
		return
	}

	h.RespondJSON(w, http.StatusOK, status)
}

// Abort handles DELETE /admin/uploads/{uploadId}
// @Summary Abort upload
// @Description Discard an upload in flight together with the bytes received so far
// @Tags uploads
// @Param uploadId path string true "Upload ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/uploads/{uploadId} [delete]
func (h *UploadHandler) Abort(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadId")

	if err := h.uploadService.Abort(r.Context(), uploadID); err != nil {
		respondServiceError(&h.BaseHandler, w, err, "abort upload", zap.String("upload_id", uploadID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAssetRequest is the body of the asset deletion endpoint
type DeleteAssetRequest struct {
	Path string `json:"path"`
}

// DeleteAsset handles DELETE /admin/uploads
// @Summary Delete uploaded asset
// @Description Delete a previously uploaded file. The path must lie inside a category folder.
// @Tags uploads
// @Accept json
// @Param request body DeleteAssetRequest true "File path"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/uploads [delete]
func (h *UploadHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	var req DeleteAssetRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.uploadService.DeleteAsset(r.Context(), req.Path); err != nil {
		respondServiceError(&h.BaseHandler, w, err, "delete asset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
