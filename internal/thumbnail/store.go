package thumbnail

import (
	"errors"
	"sync"

	"github.com/cinemaadmin/backend/internal/models"
)

var (
	// ErrNoCandidates is returned when no candidate set exists for a video
	ErrNoCandidates = errors.New("no thumbnail candidates for video")
	// ErrCandidateIndex is returned for an index outside the candidate set
	ErrCandidateIndex = errors.New("candidate index out of range")
)

// CandidateStore holds the current candidate set of each video in memory
type CandidateStore struct {
	mu   sync.Mutex
	sets map[string]models.ThumbnailCandidates
}

// NewCandidateStore creates an empty store
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{sets: make(map[string]models.ThumbnailCandidates)}
}

// Put replaces the candidate set of set.VideoID
func (s *CandidateStore) Put(set models.ThumbnailCandidates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[set.VideoID] = set
}

// Get returns the candidate set of videoID
func (s *CandidateStore) Get(videoID string) (models.ThumbnailCandidates, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[videoID]
	return set, ok
}

// Select returns candidate index of videoID and discards the set.
// On error the set is kept so the admin can pick again.
func (s *CandidateStore) Select(videoID string, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[videoID]
	if !ok {
		return "", ErrNoCandidates
	}
	if index < 0 || index >= len(set.Candidates) {
		return "", ErrCandidateIndex
	}

	delete(s.sets, videoID)
	return set.Candidates[index], nil
}

// Delete discards the candidate set of videoID
func (s *CandidateStore) Delete(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, videoID)
}

// Len returns the number of videos with a pending candidate set
func (s *CandidateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}
