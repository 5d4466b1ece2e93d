package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cinemaadmin/backend/internal/models"
	"github.com/go-redis/redis/v8"
)

// ErrUploadSessionNotFound is returned when no session has the requested upload ID
var ErrUploadSessionNotFound = errors.New("upload session not found")

const uploadSessionsZSet = "upload:sessions"

func uploadSessionKey(uploadID string) string {
	return fmt.Sprintf("upload:session:%s", uploadID)
}

// redisUploadSessionRepository stores chunk sessions as JSON strings with a TTL and indexes
// them in a sorted set scored by last update
type redisUploadSessionRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisUploadSessionRepository creates a Redis backed session repository.
// Sessions expire ttl after their last update.
func NewRedisUploadSessionRepository(client *redis.Client, ttl time.Duration) *redisUploadSessionRepository {
	return &redisUploadSessionRepository{
		redis: client,
		ttl:   ttl,
	}
}

// Save creates or replaces a session
func (r *redisUploadSessionRepository) Save(ctx context.Context, session *models.ChunkSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode upload session: %w", err)
	}

	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, uploadSessionKey(session.UploadID), data, r.ttl)
	pipe.ZAdd(ctx, uploadSessionsZSet, &redis.Z{
		Score:  float64(session.UpdatedAt.Unix()),
		Member: session.UploadID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save upload session: %w", err)
	}
	return nil
}

// Get retrieves a session by upload ID
func (r *redisUploadSessionRepository) Get(ctx context.Context, uploadID string) (*models.ChunkSession, error) {
	data, err := r.redis.Get(ctx, uploadSessionKey(uploadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUploadSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload session: %w", err)
	}

	var session models.ChunkSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode upload session: %w", err)
	}
	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *redisUploadSessionRepository) Delete(ctx context.Context, uploadID string) error {
	pipe := r.redis.TxPipeline()
	pipe.Del(ctx, uploadSessionKey(uploadID))
	pipe.ZRem(ctx, uploadSessionsZSet, uploadID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete upload session: %w", err)
	}
	return nil
}

// ListStale returns sessions last updated before cutoff. Index entries whose key already
// expired are returned with only UploadID set so the caller can still clean their temp data.
func (r *redisUploadSessionRepository) ListStale(ctx context.Context, cutoff time.Time) ([]models.ChunkSession, error) {
	members, err := r.redis.ZRangeByScore(ctx, uploadSessionsZSet, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stale upload sessions: %w", err)
	}

	sessions := make([]models.ChunkSession, 0, len(members))
	for _, uploadID := range members {
		session, err := r.Get(ctx, uploadID)
		if errors.Is(err, ErrUploadSessionNotFound) {
			sessions = append(sessions, models.ChunkSession{UploadID: uploadID})
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// memoryUploadSessionRepository keeps sessions in process memory when Redis is not configured
type memoryUploadSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.ChunkSession
}

// NewMemoryUploadSessionRepository creates an in-memory session repository
func NewMemoryUploadSessionRepository() *memoryUploadSessionRepository {
	return &memoryUploadSessionRepository{
		sessions: make(map[string]models.ChunkSession),
	}
}

// Save creates or replaces a session
func (r *memoryUploadSessionRepository) Save(ctx context.Context, session *models.ChunkSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.UploadID] = *session
	return nil
}

// Get retrieves a session by upload ID
func (r *memoryUploadSessionRepository) Get(ctx context.Context, uploadID string) (*models.ChunkSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[uploadID]
	if !ok {
		return nil, ErrUploadSessionNotFound
	}
	return &session, nil
}

// Delete removes a session
func (r *memoryUploadSessionRepository) Delete(ctx context.Context, uploadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, uploadID)
	return nil
}

// ListStale returns sessions last updated before cutoff, oldest first
func (r *memoryUploadSessionRepository) ListStale(ctx context.Context, cutoff time.Time) ([]models.ChunkSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stale := make([]models.ChunkSession, 0)
	for _, session := range r.sessions {
		if session.UpdatedAt.Before(cutoff) {
			stale = append(stale, session)
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		return stale[i].UpdatedAt.Before(stale[j].UpdatedAt)
	})
	return stale, nil
}
