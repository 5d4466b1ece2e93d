package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/cinemaadmin/backend/internal/mediainfo"
	"github.com/cinemaadmin/backend/internal/metrics"
	"go.uber.org/zap"
)

// DefaultCount is the number of candidates captured per run
const DefaultCount = 6

// Status tells whether a capture run produced candidates
type Status int

const (
	// StatusCaptured means every requested frame was captured
	StatusCaptured Status = iota
	// StatusUnavailable means the video could not be captured at all (no decoder, no duration)
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusCaptured:
		return "captured"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of a capture run
type Result struct {
	Status     Status
	Reason     string
	Offset     float64
	Duration   time.Duration
	Timestamps []time.Duration
	Candidates []string
}

// Prober reads video metadata
type Prober interface {
	Probe(ctx context.Context, filePath string) (*mediainfo.Info, error)
}

// FrameGrabber decodes one frame of a video
type FrameGrabber interface {
	Grab(ctx context.Context, filePath string, at time.Duration) (image.Image, error)
}

// availability is implemented by grabbers backed by an external binary
type availability interface {
	Available() bool
}

// Capturer grabs candidate frames one at a time
type Capturer struct {
	prober       Prober
	grabber      FrameGrabber
	count        int
	frameTimeout time.Duration
	logger       *zap.Logger
}

// NewCapturer creates a capturer. count <= 0 selects DefaultCount; frameTimeout <= 0 disables
// the per-frame bound.
func NewCapturer(prober Prober, grabber FrameGrabber, count int, frameTimeout time.Duration, logger *zap.Logger) *Capturer {
	if count <= 0 {
		count = DefaultCount
	}
	return &Capturer{
		prober:       prober,
		grabber:      grabber,
		count:        count,
		frameTimeout: frameTimeout,
		logger:       logger,
	}
}

func unavailable(reason string) *Result {
	metrics.ThumbnailCapturesTotal.WithLabelValues(StatusUnavailable.String()).Inc()
	return &Result{Status: StatusUnavailable, Reason: reason}
}

// Capture grabs the candidate frames of videoPath at Timestamps(duration, count, offset).
// Missing tooling or an unreadable duration yields StatusUnavailable with a nil error.
// A frame that fails or exceeds the frame timeout aborts the run with an error.
func (c *Capturer) Capture(ctx context.Context, videoPath string, offset float64) (*Result, error) {
	if c.prober == nil || c.grabber == nil {
		return unavailable("frame capture is not configured"), nil
	}
	for _, dep := range []any{c.prober, c.grabber} {
		if a, ok := dep.(availability); ok && !a.Available() {
			return unavailable("ffmpeg is not installed"), nil
		}
	}

	info, err := c.prober.Probe(ctx, videoPath)
	if err != nil {
		if errors.Is(err, mediainfo.ErrNoVideoStream) {
			return unavailable("file has no video stream"), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("failed to probe video", zap.String("path", videoPath), zap.Error(err))
		return unavailable("video metadata could not be read"), nil
	}
	if info.Duration <= 0 {
		return unavailable("video duration is unknown"), nil
	}

	timestamps := Timestamps(info.Duration, c.count, offset)
	candidates := make([]string, 0, len(timestamps))

	for i, at := range timestamps {
		uri, err := c.captureFrame(ctx, videoPath, at)
		if err != nil {
			metrics.ThumbnailCapturesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("frame %d/%d at %s: %w", i+1, len(timestamps), at, err)
		}
		candidates = append(candidates, uri)
	}

	metrics.ThumbnailCapturesTotal.WithLabelValues(StatusCaptured.String()).Inc()
	c.logger.Info("captured thumbnail candidates",
		zap.String("path", videoPath),
		zap.Int("count", len(candidates)),
		zap.Float64("offset", offset),
		zap.Duration("duration", info.Duration),
	)

	return &Result{
		Status:     StatusCaptured,
		Offset:     offset,
		Duration:   info.Duration,
		Timestamps: timestamps,
		Candidates: candidates,
	}, nil
}

func (c *Capturer) captureFrame(ctx context.Context, videoPath string, at time.Duration) (string, error) {
	start := time.Now()
	defer func() {
		metrics.ThumbnailFrameDuration.Observe(time.Since(start).Seconds())
	}()

	frameCtx := ctx
	if c.frameTimeout > 0 {
		var cancel context.CancelFunc
		frameCtx, cancel = context.WithTimeout(ctx, c.frameTimeout)
		defer cancel()
	}

	img, err := c.grabber.Grab(frameCtx, videoPath, at)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(img)
}
