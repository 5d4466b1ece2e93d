package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSender is a mock implementation of ChunkSender
type mockSender struct {
	mu       sync.Mutex
	chunks   []Chunk
	data     []byte
	failAt   int
	onSend   func(index int)
	filePath string
}

func (m *mockSender) SendChunk(ctx context.Context, chunk Chunk) (*models.ChunkAck, error) {
	m.mu.Lock()
	copied := chunk
	copied.Data = append([]byte(nil), chunk.Data...)
	m.chunks = append(m.chunks, copied)
	m.data = append(m.data, chunk.Data...)
	m.mu.Unlock()

	if m.onSend != nil {
		m.onSend(chunk.Index)
	}
	if m.failAt > 0 && chunk.Index == m.failAt {
		return nil, errors.New("connection reset")
	}

	ack := &models.ChunkAck{UploadID: chunk.UploadID, Index: chunk.Index, Total: chunk.Total}
	if chunk.Index == chunk.Total-1 {
		ack.Completed = true
		ack.FilePath = m.filePath
		ack.VideoID = chunk.UploadID
	}
	return ack, nil
}

// mockProber is a mock implementation of DurationProber
type mockProber struct {
	duration time.Duration
	err      error
	release  chan struct{}
}

func (m *mockProber) ProbeDuration(ctx context.Context, filePath string) (time.Duration, error) {
	if m.release != nil {
		<-m.release
	}
	return m.duration, m.err
}

func writeTempFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feature.mp4")
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// fakeClock advances by step on every call
func fakeClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func TestChunkPercent(t *testing.T) {
	for _, total := range []int{1, 2, 3, 7, 10, 99, 1000} {
		prev := 0
		for i := 0; i < total; i++ {
			p := ChunkPercent(i, total)
			assert.GreaterOrEqual(t, p, prev, "total %d index %d", total, i)
			assert.LessOrEqual(t, p, 100)
			prev = p
		}
		assert.Equal(t, 100, prev, "total %d", total)
	}
	assert.Equal(t, 33, ChunkPercent(0, 3))
	assert.Equal(t, 67, ChunkPercent(1, 3))
	assert.Equal(t, 0, ChunkPercent(0, 0))
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		fraction float64
		expected string
	}{
		{name: "half way", elapsed: 30 * time.Second, fraction: 0.5, expected: "0m 30s"},
		{name: "quarter", elapsed: 45 * time.Second, fraction: 0.25, expected: "2m 15s"},
		{name: "done", elapsed: time.Minute, fraction: 1, expected: "0m 0s"},
		{name: "no progress", elapsed: time.Minute, fraction: 0, expected: ""},
		{name: "out of range", elapsed: time.Minute, fraction: 1.5, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatETA(tt.elapsed, tt.fraction))
		})
	}
}

func TestNewVideoID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewVideoID(now)

	assert.Regexp(t, regexp.MustCompile(`^1700000000123-[0-9a-z]{1,9}$`), id)
	assert.NotEqual(t, id, NewVideoID(now))
}

func TestSession_Upload(t *testing.T) {
	path := writeTempFile(t, 10*1024+17)
	sender := &mockSender{filePath: "/srv/movies/x.mp4"}

	var progress []Progress
	session := NewSession(sender, nil, Options{
		ChunkSize:  1024,
		OnProgress: func(p Progress) { progress = append(progress, p) },
		Now:        fakeClock(time.Second),
	})

	require.NoError(t, session.Select(context.Background(), path))
	assert.Equal(t, StateSelecting, session.State())

	result, err := session.Upload(context.Background(), models.CategoryMovie)

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, session.State())
	assert.Equal(t, "/srv/movies/x.mp4", result.FilePath)
	assert.Equal(t, session.VideoID(), result.VideoID)

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, sender.data)

	require.Len(t, sender.chunks, 11)
	for i, c := range sender.chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, 11, c.Total)
		assert.Equal(t, session.VideoID(), c.UploadID)
		assert.Equal(t, "feature.mp4", c.FileName)
		assert.Equal(t, models.CategoryMovie, c.Category)
	}
	assert.Len(t, sender.chunks[10].Data, 17)

	require.Len(t, progress, 11)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Percent, progress[i-1].Percent)
		assert.NotEmpty(t, progress[i].ETA)
	}
	assert.Equal(t, 100, progress[10].Percent)

	assert.Equal(t, Progress{Percent: 100}, session.Progress(), "ETA is cleared once the upload ends")
}

func TestSession_CancelStopsFurtherChunks(t *testing.T) {
	path := writeTempFile(t, 8*512)
	var session *Session
	sender := &mockSender{}
	sender.onSend = func(index int) {
		if index == 2 {
			session.Cancel()
		}
	}
	session = NewSession(sender, nil, Options{ChunkSize: 512})
	require.NoError(t, session.Select(context.Background(), path))

	result, err := session.Upload(context.Background(), models.CategorySeries)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, result)
	assert.Equal(t, StateCancelled, session.State())
	assert.Len(t, sender.chunks, 3, "no chunk after the one in flight when cancel was requested")
	assert.Empty(t, session.Progress().ETA)
}

func TestSession_UploadAgainAfterCancel(t *testing.T) {
	path := writeTempFile(t, 4*512)
	var session *Session
	sender := &mockSender{filePath: "/srv/series/v.mp4"}
	sender.onSend = func(index int) {
		if index == 1 {
			session.Cancel()
		}
	}
	session = NewSession(sender, nil, Options{ChunkSize: 512})
	require.NoError(t, session.Select(context.Background(), path))

	_, err := session.Upload(context.Background(), models.CategorySeries)
	require.ErrorIs(t, err, ErrCancelled)
	require.Len(t, sender.chunks, 2)

	sender.onSend = nil
	result, err := session.Upload(context.Background(), models.CategorySeries)

	require.NoError(t, err)
	assert.Equal(t, "/srv/series/v.mp4", result.FilePath)
	assert.Equal(t, StateCompleted, session.State())
	require.Len(t, sender.chunks, 6)
	assert.Equal(t, 0, sender.chunks[2].Index, "retry starts from the first chunk")
}

func TestSession_CancelBeforeUpload(t *testing.T) {
	path := writeTempFile(t, 2*512)
	sender := &mockSender{}
	session := NewSession(sender, nil, Options{ChunkSize: 512})
	require.NoError(t, session.Select(context.Background(), path))

	session.Cancel()
	_, err := session.Upload(context.Background(), models.CategoryMovie)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, sender.chunks)
}

func TestSession_ContextCancelled(t *testing.T) {
	path := writeTempFile(t, 4*512)
	ctx, cancel := context.WithCancel(context.Background())
	sender := &mockSender{onSend: func(index int) {
		if index == 0 {
			cancel()
		}
	}}
	session := NewSession(sender, nil, Options{ChunkSize: 512})
	require.NoError(t, session.Select(context.Background(), path))

	_, err := session.Upload(ctx, models.CategoryMovie)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Len(t, sender.chunks, 1)
}

func TestSession_ChunkFailureHalts(t *testing.T) {
	path := writeTempFile(t, 5*100)
	sender := &mockSender{failAt: 2}
	session := NewSession(sender, nil, Options{ChunkSize: 100})
	require.NoError(t, session.Select(context.Background(), path))

	_, err := session.Upload(context.Background(), models.CategoryMovie)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, 2, uploadErr.Index)
	assert.Equal(t, session.VideoID(), uploadErr.UploadID)
	assert.Equal(t, StateFailed, session.State())
	assert.Len(t, sender.chunks, 3)
}

func TestSession_Errors(t *testing.T) {
	t.Run("upload without file", func(t *testing.T) {
		session := NewSession(&mockSender{}, nil, Options{})
		_, err := session.Upload(context.Background(), models.CategoryMovie)
		assert.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("invalid category", func(t *testing.T) {
		session := NewSession(&mockSender{}, nil, Options{})
		_, err := session.Upload(context.Background(), "Documentary")
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.mp4")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		session := NewSession(&mockSender{}, nil, Options{})
		assert.ErrorIs(t, session.Select(context.Background(), path), ErrEmptyFile)
		assert.Equal(t, StateIdle, session.State())
	})

	t.Run("missing file", func(t *testing.T) {
		session := NewSession(&mockSender{}, nil, Options{})
		assert.Error(t, session.Select(context.Background(), "/nonexistent/file.mp4"))
	})
}

func TestSession_Duration(t *testing.T) {
	path := writeTempFile(t, 10)
	prober := &mockProber{duration: time.Hour + 2*time.Minute + 3*time.Second, release: make(chan struct{})}
	session := NewSession(&mockSender{}, prober, Options{})
	require.NoError(t, session.Select(context.Background(), path))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := session.Duration(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(prober.release)
	d, err := session.Duration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01:02:03", d)
}

func TestSession_DurationWithoutProber(t *testing.T) {
	path := writeTempFile(t, 10)
	session := NewSession(&mockSender{}, nil, Options{})
	require.NoError(t, session.Select(context.Background(), path))

	_, err := session.Duration(context.Background())
	assert.ErrorIs(t, err, ErrNoDuration)
}

func TestSession_Reset(t *testing.T) {
	path := writeTempFile(t, 10)
	session := NewSession(&mockSender{}, nil, Options{})
	require.NoError(t, session.Select(context.Background(), path))

	require.NoError(t, session.Reset())
	assert.Equal(t, StateIdle, session.State())
	assert.Empty(t, session.VideoID())
	_, err := session.Duration(context.Background())
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestHTTPClient_SendChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/admin/uploads/chunks", r.URL.Path)
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "vid-1", r.FormValue("uploadId"))
		assert.Equal(t, "1", r.FormValue("index"))
		assert.Equal(t, "2", r.FormValue("total"))
		assert.Equal(t, "Series", r.FormValue("category"))

		f, _, err := r.FormFile("chunk")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "abc", string(data))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ChunkAck{UploadID: "vid-1", Index: 1, Total: 2, Progress: 100, Completed: true, FilePath: "/srv/series/vid-1.mp4", VideoID: "vid-1"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", "admin-token", time.Second)
	ack, err := client.SendChunk(context.Background(), Chunk{UploadID: "vid-1", Index: 1, Total: 2, Category: models.CategorySeries, FileName: "a.mp4", Data: []byte("abc")})

	require.NoError(t, err)
	assert.True(t, ack.Completed)
	assert.Equal(t, "/srv/series/vid-1.mp4", ack.FilePath)
}

func TestHTTPClient_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/etc/passwd", body["path"])
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"path is outside the media folders"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", time.Second)
	err := client.DeleteAsset(context.Background(), "/etc/passwd")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.True(t, strings.Contains(apiErr.Message, "outside"))
}
