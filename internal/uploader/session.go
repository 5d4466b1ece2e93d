// Package uploader is the client side of the chunked upload protocol
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cinemaadmin/backend/internal/mediainfo"
	"github.com/cinemaadmin/backend/internal/models"
)

// DefaultChunkSize is the size of every chunk but the last
const DefaultChunkSize = 5 << 20

// State is the phase of an upload session
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateUploading
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateUploading:
		return "uploading"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

var (
	ErrNoFile          = errors.New("no file selected")
	ErrEmptyFile       = errors.New("file is empty")
	ErrBusy            = errors.New("upload already in progress")
	ErrCancelled       = errors.New("upload cancelled")
	ErrNoDuration      = errors.New("duration not available")
	ErrInvalidCategory = errors.New("invalid category")
)

// Chunk is one slice of the selected file
type Chunk struct {
	UploadID string
	Index    int
	Total    int
	Category models.Category
	FileName string
	Data     []byte
}

// ChunkSender delivers a chunk and returns the server acknowledgement
type ChunkSender interface {
	SendChunk(ctx context.Context, chunk Chunk) (*models.ChunkAck, error)
}

// DurationProber reads the duration of a local video
type DurationProber interface {
	ProbeDuration(ctx context.Context, filePath string) (time.Duration, error)
}

// Progress is reported after every acknowledged chunk
type Progress struct {
	Percent int
	ETA     string
}

// Result is returned by a completed upload
type Result struct {
	FilePath string
	VideoID  string
}

// UploadError is returned when a chunk could not be delivered. Chunks before Index were
// accepted by the server and stay there until the upload is aborted or expires.
type UploadError struct {
	UploadID string
	Index    int
	Total    int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: chunk %d/%d: %v", e.UploadID, e.Index+1, e.Total, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Options tunes a session
type Options struct {
	ChunkSize  int64
	OnProgress func(Progress)
	Now        func() time.Time
}

// Session walks one file through select, upload and completion
type Session struct {
	sender ChunkSender
	prober DurationProber
	opts   Options

	cancelled atomic.Bool

	mu        sync.Mutex
	state     State
	file      *os.File
	path      string
	size      int64
	videoID   string
	percent   int
	eta       string
	startedAt time.Time

	durationDone chan struct{}
	duration     time.Duration
	durationErr  error
}

// NewSession creates an idle session. prober may be nil, in which case Duration reports ErrNoDuration.
func NewSession(sender ChunkSender, prober DurationProber, opts Options) *Session {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{sender: sender, prober: prober, opts: opts}
}

// NewVideoID returns "<unix millis>-<random base36>". It only correlates chunks and names the asset.
func NewVideoID(now time.Time) string {
	suffix := strconv.FormatUint(rand.Uint64(), 36)
	if len(suffix) > 9 {
		suffix = suffix[:9]
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

// Select opens path, assigns a new video ID and starts reading its duration in the background.
// Any previously selected file is released.
func (s *Session) Select(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		f.Close()
		return ErrEmptyFile
	}

	s.mu.Lock()
	if s.state == StateUploading {
		s.mu.Unlock()
		f.Close()
		return ErrBusy
	}
	if s.file != nil {
		s.file.Close()
	}
	s.file = f
	s.path = path
	s.size = info.Size()
	s.videoID = NewVideoID(s.opts.Now())
	s.state = StateSelecting
	s.percent = 0
	s.eta = ""
	s.cancelled.Store(false)

	done := make(chan struct{})
	s.durationDone = done
	s.duration, s.durationErr = 0, nil
	s.mu.Unlock()

	go s.probe(ctx, path, done)
	return nil
}

func (s *Session) probe(ctx context.Context, path string, done chan struct{}) {
	var (
		d   time.Duration
		err error
	)
	if s.prober == nil {
		err = ErrNoDuration
	} else {
		d, err = s.prober.ProbeDuration(ctx, path)
	}

	s.mu.Lock()
	// a newer Select owns the fields now
	if s.durationDone == done {
		s.duration, s.durationErr = d, err
	}
	s.mu.Unlock()
	close(done)
}

// Duration waits for the background probe and returns the formatted duration
func (s *Session) Duration(ctx context.Context) (string, error) {
	s.mu.Lock()
	done := s.durationDone
	s.mu.Unlock()
	if done == nil {
		return "", ErrNoFile
	}

	select {
	case <-done:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.durationDone != done {
		return "", ErrNoFile
	}
	if s.durationErr != nil {
		return "", s.durationErr
	}
	return mediainfo.FormatDuration(s.duration), nil
}

// Upload sends the selected file chunk by chunk, waiting for each acknowledgement before
// reading the next chunk. Cancel and ctx are checked before every send.
func (s *Session) Upload(ctx context.Context, category models.Category) (*Result, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	s.mu.Lock()
	switch {
	case s.file == nil:
		s.mu.Unlock()
		return nil, ErrNoFile
	case s.state == StateUploading:
		s.mu.Unlock()
		return nil, ErrBusy
	}
	// a cancel requested before the first upload still applies to it
	if s.state != StateSelecting {
		s.cancelled.Store(false)
	}
	s.state = StateUploading
	s.percent = 0
	s.eta = ""
	s.startedAt = s.opts.Now()
	file, size, videoID := s.file, s.size, s.videoID
	fileName := filepath.Base(s.path)
	s.mu.Unlock()

	total := int((size + s.opts.ChunkSize - 1) / s.opts.ChunkSize)
	buf := make([]byte, s.opts.ChunkSize)

	var ack *models.ChunkAck
	for i := 0; i < total; i++ {
		if s.cancelled.Load() || ctx.Err() != nil {
			s.finish(StateCancelled)
			return nil, ErrCancelled
		}

		n, err := file.ReadAt(buf, int64(i)*s.opts.ChunkSize)
		if err != nil && !errors.Is(err, io.EOF) {
			s.finish(StateFailed)
			return nil, &UploadError{UploadID: videoID, Index: i, Total: total, Err: err}
		}

		ack, err = s.sender.SendChunk(ctx, Chunk{
			UploadID: videoID,
			Index:    i,
			Total:    total,
			Category: category,
			FileName: fileName,
			Data:     buf[:n],
		})
		if err != nil {
			if ctx.Err() != nil {
				s.finish(StateCancelled)
				return nil, ErrCancelled
			}
			s.finish(StateFailed)
			return nil, &UploadError{UploadID: videoID, Index: i, Total: total, Err: err}
		}

		s.advance(i, total)
	}

	if ack == nil || !ack.Completed || ack.FilePath == "" {
		s.finish(StateFailed)
		return nil, &UploadError{UploadID: videoID, Index: total - 1, Total: total, Err: errors.New("server did not commit the file")}
	}

	s.finish(StateCompleted)
	resultID := ack.VideoID
	if resultID == "" {
		resultID = videoID
	}
	return &Result{FilePath: ack.FilePath, VideoID: resultID}, nil
}

func (s *Session) advance(index, total int) {
	percent := ChunkPercent(index, total)

	s.mu.Lock()
	s.percent = percent
	s.eta = FormatETA(s.opts.Now().Sub(s.startedAt), float64(index+1)/float64(total))
	p := Progress{Percent: s.percent, ETA: s.eta}
	s.mu.Unlock()

	if s.opts.OnProgress != nil {
		s.opts.OnProgress(p)
	}
}

func (s *Session) finish(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.eta = ""
}

// Cancel stops the upload before its next chunk. A chunk already in flight completes.
// Called before the first Upload of a selected file, it cancels that upload. A later Upload
// call, for example a retry after a cancelled or failed run, starts again from chunk 0.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// Reset releases the file and returns the session to idle
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUploading {
		return ErrBusy
	}
	var err error
	if s.file != nil {
		err = s.file.Close()
	}
	s.file = nil
	s.path = ""
	s.size = 0
	s.videoID = ""
	s.state = StateIdle
	s.percent = 0
	s.eta = ""
	s.durationDone = nil
	s.cancelled.Store(false)
	return err
}

// State returns the current phase
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the last reported progress. ETA is empty unless an upload is running.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{Percent: s.percent}
	if s.state == StateUploading {
		p.ETA = s.eta
	}
	return p
}

// VideoID returns the identifier of the selected file
func (s *Session) VideoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID
}
