package models

// ThumbnailCandidates is the set of captured frames offered for selection
type ThumbnailCandidates struct {
	VideoID    string   `json:"videoId"`
	Offset     float64  `json:"offset"`
	Candidates []string `json:"candidates"`
}

// CaptureResponse is returned by the capture endpoint. Available is false when frames
// could not be captured (no decoder, unreadable duration) so the UI can fall back to manual upload.
type CaptureResponse struct {
	Available bool                 `json:"available"`
	Reason    string               `json:"reason,omitempty"`
	Set       *ThumbnailCandidates `json:"set,omitempty"`
}

// ThumbnailRef points at a committed thumbnail image
type ThumbnailRef struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}
