// Package mediainfo wraps the ffprobe and ffmpeg binaries used to read video metadata and frames
package mediainfo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// ErrNoVideoStream is returned when a file has no decodable video stream
var ErrNoVideoStream = errors.New("no video stream")

// Info holds the metadata needed for thumbnails and the duration field of a media item
type Info struct {
	Duration time.Duration
	Width    int
	Height   int
	Codec    string
}

// ffprobeOutput is the subset of `ffprobe -print_format json -show_streams -show_format` we read
type ffprobeOutput struct {
	Streams []struct {
		CodecName string `json:"codec_name"`
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Prober runs ffprobe
type Prober struct {
	path string
}

// NewProber creates a prober for the ffprobe binary at path
func NewProber(path string) *Prober {
	if path == "" {
		path = "ffprobe"
	}
	return &Prober{path: path}
}

// Available reports whether the ffprobe binary can be found
func (p *Prober) Available() bool {
	_, err := exec.LookPath(p.path)
	return err == nil
}

// Probe returns the duration and dimensions of the first video stream of filePath
func (p *Prober) Probe(ctx context.Context, filePath string) (*Info, error) {
	cmd := exec.CommandContext(ctx, p.path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		filePath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	return parseProbeOutput(out)
}

// ProbeDuration returns only the duration of filePath
func (p *Prober) ProbeDuration(ctx context.Context, filePath string) (time.Duration, error) {
	info, err := p.Probe(ctx, filePath)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

func parseProbeOutput(out []byte) (*Info, error) {
	var data ffprobeOutput
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	found := false
	for _, s := range data.Streams {
		if s.CodecType != "video" {
			continue
		}
		found = true
		info.Codec = s.CodecName
		info.Width = s.Width
		info.Height = s.Height
		info.Duration = parseSeconds(s.Duration)
		break
	}
	if !found {
		return nil, ErrNoVideoStream
	}

	// Containers such as mkv only report the duration on the format
	if info.Duration == 0 {
		info.Duration = parseSeconds(data.Format.Duration)
	}

	return info, nil
}

func parseSeconds(s string) time.Duration {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
