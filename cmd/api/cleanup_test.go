package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCleaner is a mock implementation of StaleUploadCleaner
type mockCleaner struct {
	calls  int
	maxAge time.Duration
	err    error
}

func (m *mockCleaner) CleanupStale(ctx context.Context, maxAge time.Duration) (int, error) {
	m.calls++
	m.maxAge = maxAge
	return 2, m.err
}

func TestNewCleanupScheduler(t *testing.T) {
	tests := []struct {
		name          string
		schedule      string
		expectedError bool
	}{
		{name: "descriptor", schedule: "@hourly"},
		{name: "standard expression", schedule: "*/15 * * * *"},
		{name: "invalid", schedule: "every hour", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewCleanupScheduler(tt.schedule, &mockCleaner{}, time.Hour, zap.NewNop())
			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestCleanupScheduler_Run(t *testing.T) {
	cleaner := &mockCleaner{}
	s, err := NewCleanupScheduler("@daily", cleaner, 24*time.Hour, zap.NewNop())
	require.NoError(t, err)

	s.run()
	assert.Equal(t, 1, cleaner.calls)
	assert.Equal(t, 24*time.Hour, cleaner.maxAge)

	cleaner.err = errors.New("redis down")
	assert.NotPanics(t, s.run)

	s.Start()
	s.Stop()
}
