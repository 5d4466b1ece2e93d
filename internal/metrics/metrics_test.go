package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric any
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"RelocationsTotal", RelocationsTotal},
		{"UploadChunksTotal", UploadChunksTotal},
		{"UploadBytesTotal", UploadBytesTotal},
		{"UploadsCompletedTotal", UploadsCompletedTotal},
		{"UploadSessionsCleanedTotal", UploadSessionsCleanedTotal},
		{"ThumbnailCapturesTotal", ThumbnailCapturesTotal},
		{"ThumbnailFrameDuration", ThumbnailFrameDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.metric)
		})
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware("/health"))
	r.Get("/media/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/media/{id}", "418"))

	for _, path := range []string{"/media/1", "/media/2", "/health"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/media/{id}", "418"))
	assert.Equal(t, 2.0, after-before)
	assert.Zero(t, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")))
}
