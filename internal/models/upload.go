package models

import "time"

// ChunkSession is the server side record of an in-progress chunked upload
type ChunkSession struct {
	UploadID    string    `json:"uploadId"`
	VideoID     string    `json:"videoId"`
	Category    Category  `json:"category"`
	FileName    string    `json:"fileName"`
	TotalChunks int       `json:"totalChunks"`
	NextIndex   int       `json:"nextIndex"`
	Received    int64     `json:"received"`
	TempPath    string    `json:"tempPath"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Progress returns the share of received chunks as a 0-100 percentage
func (s *ChunkSession) Progress() int {
	if s.TotalChunks <= 0 {
		return 0
	}
	return s.NextIndex * 100 / s.TotalChunks
}

// ChunkAck acknowledges a received chunk. FilePath and VideoID are set on the final chunk only.
type ChunkAck struct {
	UploadID  string `json:"uploadId"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
	FilePath  string `json:"filePath,omitempty"`
	VideoID   string `json:"videoId,omitempty"`
}

// UploadStatus describes an upload session to the admin UI
type UploadStatus struct {
	UploadID       string   `json:"uploadId"`
	VideoID        string   `json:"videoId"`
	Category       Category `json:"category"`
	FileName       string   `json:"fileName"`
	TotalChunks    int      `json:"totalChunks"`
	UploadedChunks int      `json:"uploadedChunks"`
	Progress       int      `json:"progress"`
}
