package mediainfo

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
)

// FrameGrabber extracts single frames with ffmpeg
type FrameGrabber struct {
	path string
}

// NewFrameGrabber creates a grabber for the ffmpeg binary at path
func NewFrameGrabber(path string) *FrameGrabber {
	if path == "" {
		path = "ffmpeg"
	}
	return &FrameGrabber{path: path}
}

// Available reports whether the ffmpeg binary can be found
func (g *FrameGrabber) Available() bool {
	_, err := exec.LookPath(g.path)
	return err == nil
}

// Grab decodes the frame of filePath at offset at its native resolution.
// ctx bounds the ffmpeg process; the process is killed when it is done.
func (g *FrameGrabber) Grab(ctx context.Context, filePath string, at time.Duration) (image.Image, error) {
	// -ss before -i seeks on input
	cmd := exec.CommandContext(ctx, g.path,
		"-v", "error",
		"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
		"-i", filePath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ffmpeg frame at %s: %w", at, ctxErr)
		}
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame at %s for %s", at, filePath)
	}

	img, err := imaging.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}
