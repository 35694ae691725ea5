package snapshot

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"firewatch-go/internal/config"
	"firewatch-go/internal/models"
)

var sampleExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Result is the typed outcome of a capture attempt. No error propagates past
// this boundary.
type Result struct {
	Success  bool
	FilePath string
	// Temporary marks a freshly written snapshot the caller must reclaim.
	// Sample-pool files are shared and must not be removed.
	Temporary bool
	Err       string
}

// Service obtains one still frame from a camera, preferring the live stream
// and falling back to the local sample pool.
type Service struct {
	cfg  *config.Config
	grab func(streamURL, outputPath string) Result
}

func NewService(cfg *config.Config) (*Service, error) {
	if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &Service{cfg: cfg, grab: grabFrame}, nil
}

// Capture attempts a live grab within the capture budget and falls back to a
// random sample image. It fails only when both paths fail.
func (s *Service) Capture(ctx context.Context, camera *models.Camera) Result {
	live := s.captureLive(ctx, camera)
	if live.Success {
		return live
	}

	log.Warn().
		Uint("camera_id", camera.ID).
		Str("error", live.Err).
		Msg("Live capture failed, falling back to sample pool")

	return s.captureSample()
}

// captureLive opens the stream and reads exactly one frame. The open+read is
// run on its own goroutine so an unresponsive stream cannot exceed the
// capture budget.
func (s *Service) captureLive(ctx context.Context, camera *models.Camera) Result {
	outputPath := filepath.Join(s.cfg.SnapshotDir,
		fmt.Sprintf("camera_%d_%s.jpg", camera.ID, uuid.NewString()))

	done := make(chan Result, 1)
	go func() {
		done <- s.grab(camera.URL, outputPath)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		go discardLateFrame(done)
		return Result{Err: fmt.Sprintf("capture cancelled: %v", ctx.Err())}
	case <-time.After(s.cfg.CaptureTimeout):
		go discardLateFrame(done)
		return Result{Err: fmt.Sprintf("capture timed out after %s", s.cfg.CaptureTimeout)}
	}
}

// discardLateFrame reclaims the output of a grab that was abandoned by its
// caller: whatever the goroutine eventually wrote nobody will read.
func discardLateFrame(done <-chan Result) {
	res := <-done
	if res.Success && res.FilePath != "" {
		os.Remove(res.FilePath)
	}
}

func grabFrame(streamURL, outputPath string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Sprintf("capture panicked: %v", r)}
		}
	}()

	capture, err := gocv.OpenVideoCapture(streamURL)
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to open stream %s: %v", streamURL, err)}
	}
	defer capture.Close()

	capture.Set(gocv.VideoCaptureBufferSize, 1)
	if !capture.IsOpened() {
		return Result{Err: fmt.Sprintf("stream %s is not opened", streamURL)}
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := capture.Read(&img); !ok || img.Empty() {
		return Result{Err: fmt.Sprintf("failed to read frame from %s", streamURL)}
	}

	if ok := gocv.IMWrite(outputPath, img); !ok {
		return Result{Err: fmt.Sprintf("failed to write frame to %s", outputPath)}
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		os.Remove(outputPath)
		return Result{Err: "written snapshot is empty"}
	}

	return Result{Success: true, FilePath: outputPath, Temporary: true}
}

// captureSample picks one random image from the fixed local pool. An empty
// pool is the sole fatal condition of the component.
func (s *Service) captureSample() Result {
	entries, err := os.ReadDir(s.cfg.SamplePoolDir)
	if err != nil {
		return Result{Err: fmt.Sprintf("failed to read sample pool %s: %v", s.cfg.SamplePoolDir, err)}
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if sampleExtensions[filepath.Ext(entry.Name())] {
			images = append(images, filepath.Join(s.cfg.SamplePoolDir, entry.Name()))
		}
	}

	if len(images) == 0 {
		return Result{Err: fmt.Sprintf("no sample images found in %s", s.cfg.SamplePoolDir)}
	}

	return Result{Success: true, FilePath: images[rand.Intn(len(images))]}
}
