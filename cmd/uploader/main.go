// Command uploader sends a local video to the media service in chunks, then lets the operator
// pick a thumbnail from frames captured by the server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cinemaadmin/backend/internal/mediainfo"
	"github.com/cinemaadmin/backend/internal/models"
	"github.com/cinemaadmin/backend/internal/thumbnail"
	"github.com/cinemaadmin/backend/internal/uploader"
	"github.com/cinemaadmin/backend/libs/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type options struct {
	server     string
	token      string
	category   string
	chunkSize  int64
	ffprobe    string
	previewDir string
	timeout    time.Duration
	logLevel   string
}

func main() {
	_ = godotenv.Load()

	opts := options{}
	flag.StringVar(&opts.server, "server", envOr("CINEMA_API_URL", "http://localhost:8080"), "media service base URL")
	flag.StringVar(&opts.token, "token", os.Getenv("CINEMA_TOKEN"), "admin access token")
	flag.StringVar(&opts.category, "category", string(models.CategoryMovie), "Movie or Series")
	flag.Int64Var(&opts.chunkSize, "chunk-size", uploader.DefaultChunkSize, "chunk size in bytes")
	flag.StringVar(&opts.ffprobe, "ffprobe", envOr("FFPROBE_PATH", "ffprobe"), "ffprobe binary used for the duration")
	flag.StringVar(&opts.previewDir, "preview-dir", "", "directory for thumbnail candidate previews (default: a temp dir)")
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "timeout of a single request")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <video file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(opts.logLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, path string) error {
	category, err := models.ParseCategory(opts.category)
	if err != nil {
		return err
	}

	client := uploader.NewHTTPClient(opts.server, opts.token, opts.timeout)
	session := uploader.NewSession(client, mediainfo.NewProber(opts.ffprobe), uploader.Options{
		ChunkSize:  opts.chunkSize,
		OnProgress: printProgress,
	})
	defer session.Reset()

	if err := session.Select(ctx, path); err != nil {
		return err
	}

	duration, err := session.Duration(ctx)
	switch {
	case err == nil:
		fmt.Printf("Duration: %s\n", duration)
	case errors.Is(err, uploader.ErrNoDuration):
		fmt.Println("Duration: unknown")
	default:
		logger.Logger.Warn("failed to read duration", zap.Error(err))
	}

	result, err := session.Upload(ctx, category)
	fmt.Println()
	if err != nil {
		abort(client, session.VideoID(), err)
		return err
	}
	fmt.Printf("Uploaded %s as %s\n", filepath.Base(path), result.FilePath)

	ref, err := pickThumbnail(ctx, client, result, opts.previewDir)
	if err != nil {
		return err
	}
	if ref != nil {
		fmt.Printf("Thumbnail: %s\n", ref.URL)
	}

	fmt.Printf("Video ID: %s\n", result.VideoID)
	return nil
}

// abort discards the partial upload on the server after a cancelled or failed transfer
func abort(client *uploader.HTTPClient, videoID string, cause error) {
	var uploadErr *uploader.UploadError
	if !errors.Is(cause, uploader.ErrCancelled) && !errors.As(cause, &uploadErr) {
		return
	}
	if videoID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if status, err := client.Status(ctx, videoID); err == nil {
		fmt.Printf("\nServer holds %d/%d chunks, discarding\n", status.UploadedChunks, status.TotalChunks)
	}

	var apiErr *uploader.APIError
	if err := client.AbortUpload(ctx, videoID); err != nil && !(errors.As(err, &apiErr) && apiErr.StatusCode == 404) {
		logger.Logger.Warn("failed to abort upload on server", zap.String("upload_id", videoID), zap.Error(err))
	}
}

func printProgress(p uploader.Progress) {
	line := fmt.Sprintf("\rUploading: %3d%%", p.Percent)
	if p.ETA != "" {
		line += fmt.Sprintf("  ETA %s", p.ETA)
	}
	fmt.Printf("%-40s", line)
}

// pickThumbnail captures candidates, writes previews and asks which one to keep.
// Answering "r" captures a new set at a random offset; an empty answer skips the thumbnail.
func pickThumbnail(ctx context.Context, client *uploader.HTTPClient, result *uploader.Result, previewDir string) (*models.ThumbnailRef, error) {
	in := bufio.NewReader(os.Stdin)
	regenerate := false

	for {
		resp, err := client.CaptureCandidates(ctx, result.VideoID, result.FilePath, regenerate)
		if err != nil {
			return nil, fmt.Errorf("failed to capture thumbnails: %w", err)
		}
		if !resp.Available {
			fmt.Printf("Thumbnail capture unavailable: %s\n", resp.Reason)
			return nil, nil
		}

		dir, err := writePreviews(resp.Set, previewDir)
		if err != nil {
			return nil, err
		}
		fmt.Printf("%d candidates written to %s\n", len(resp.Set.Candidates), dir)
		fmt.Printf("Pick a thumbnail [0-%d], r to regenerate, empty to skip: ", len(resp.Set.Candidates)-1)

		answer, err := in.ReadString('\n')
		if err != nil && answer == "" {
			return nil, nil
		}
		answer = strings.TrimSpace(answer)

		switch answer {
		case "":
			return nil, nil
		case "r", "R":
			regenerate = true
			continue
		}

		index, err := strconv.Atoi(answer)
		if err != nil || index < 0 || index >= len(resp.Set.Candidates) {
			fmt.Println("Invalid choice, capturing again")
			continue
		}
		return client.SelectCandidate(ctx, result.VideoID, index)
	}
}

func writePreviews(set *models.ThumbnailCandidates, dir string) (string, error) {
	var err error
	if dir == "" {
		dir, err = os.MkdirTemp("", "thumbs-"+set.VideoID+"-")
	} else {
		err = os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create preview dir: %w", err)
	}

	for i, uri := range set.Candidates {
		data, err := thumbnail.DecodeDataURI(uri)
		if err != nil {
			return "", fmt.Errorf("candidate %d: %w", i, err)
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.jpg", i)), data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write preview: %w", err)
		}
	}
	return dir, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
