package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cinemaadmin/backend/internal/models"
)

// HTTPClient talks to the admin upload endpoints
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client for the API at baseURL (scheme and host, no /api/v1 suffix)
// authenticating with an admin bearer token
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// SendChunk posts one chunk as multipart form data
func (c *HTTPClient) SendChunk(ctx context.Context, chunk Chunk) (*models.ChunkAck, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"uploadId": chunk.UploadID,
		"index":    strconv.Itoa(chunk.Index),
		"total":    strconv.Itoa(chunk.Total),
		"category": string(chunk.Category),
		"fileName": chunk.FileName,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("chunk", chunk.FileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(chunk.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/uploads/chunks", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var ack models.ChunkAck
	if err := c.do(req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Status returns the server view of an upload
func (c *HTTPClient) Status(ctx context.Context, uploadID string) (*models.UploadStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/uploads/"+url.PathEscape(uploadID), nil)
	if err != nil {
		return nil, err
	}
	var status models.UploadStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AbortUpload discards the chunks the server holds for uploadID
func (c *HTTPClient) AbortUpload(ctx context.Context, uploadID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/admin/uploads/"+url.PathEscape(uploadID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// DeleteAsset removes an uploaded file by the path returned on completion
func (c *HTTPClient) DeleteAsset(ctx context.Context, path string) error {
	payload, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/admin/uploads", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// CaptureCandidates asks the server for thumbnail candidates of an uploaded video
func (c *HTTPClient) CaptureCandidates(ctx context.Context, videoID, path string, regenerate bool) (*models.CaptureResponse, error) {
	payload, err := json.Marshal(map[string]any{"videoId": videoID, "path": path, "regenerate": regenerate})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/thumbnails/candidates", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp models.CaptureResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SelectCandidate commits candidate index of videoID as a thumbnail
func (c *HTTPClient) SelectCandidate(ctx context.Context, videoID string, index int) (*models.ThumbnailRef, error) {
	payload, err := json.Marshal(map[string]any{"videoId": videoID, "index": index})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/thumbnails/select", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var ref models.ThumbnailRef
	if err := c.do(req, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
