package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/cinemaadmin/backend/internal/services"
	"github.com/cinemaadmin/backend/internal/storage"
	"github.com/cinemaadmin/backend/libs/handlers"
	"go.uber.org/zap"
)

// respondServiceError maps a service error onto an HTTP status. action completes the
// "failed to ..." message used for unexpected errors.
func respondServiceError(h *handlers.BaseHandler, w http.ResponseWriter, err error, action string, fields ...zap.Field) {
	var relocErr *storage.RelocationError

	switch {
	case errors.Is(err, services.ErrValidation):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUploadOrder):
		h.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &relocErr) && relocErr.IsNotFound():
		h.Logger.Warn("video file missing for relocation", append(fields, zap.Error(err))...)
		h.RespondError(w, http.StatusUnprocessableEntity, "video file not found in either category folder")
	case errors.As(err, &relocErr):
		h.Logger.Error("failed to relocate video file", append(fields, zap.Error(err))...)
		h.RespondError(w, http.StatusInternalServerError, "failed to move video file")
	case errors.Is(err, context.Canceled):
		h.Logger.Info("request cancelled", append(fields, zap.String("action", action))...)
	default:
		h.Logger.Error("failed to "+action, append(fields, zap.Error(err))...)
		h.RespondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
