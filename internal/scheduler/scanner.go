package scheduler

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"firewatch-go/internal/config"
	"firewatch-go/internal/logging"
	"firewatch-go/internal/models"
	"firewatch-go/internal/services/alerts"
	"firewatch-go/internal/services/prediction"
	"firewatch-go/internal/services/snapshot"
)

// CameraSource enumerates and resolves scan targets, and records the one
// camera field the scan mutates besides the snapshot URL: operational status.
type CameraSource interface {
	EligibleCameras(ctx context.Context) ([]models.Camera, error)
	CameraByID(ctx context.Context, id uint) (*models.Camera, error)
	SetCameraStatus(ctx context.Context, cameraID uint, status models.CameraStatus) error
}

// SnapshotAcquirer obtains one still frame for a camera.
type SnapshotAcquirer interface {
	Capture(ctx context.Context, camera *models.Camera) snapshot.Result
}

// Predictor classifies a snapshot.
type Predictor interface {
	Predict(ctx context.Context, filePath string) prediction.Result
}

// AlertCreator persists a detection alert and triggers the fanout.
type AlertCreator interface {
	CreateDetectionAlert(ctx context.Context, camera *models.Camera, confidence float64, snapshotPath string) alerts.Result
}

// Scanner runs one camera scan task: capture, predict, evaluate, alert.
// Stages execute strictly sequentially; any stage's failure ends the task,
// the next cycle starts over.
type Scanner struct {
	cfg       *config.Config
	cameras   CameraSource
	snapshots SnapshotAcquirer
	predictor Predictor
	alerts    AlertCreator
	log       zerolog.Logger
}

func NewScanner(cfg *config.Config, cameras CameraSource, snapshots SnapshotAcquirer, predictor Predictor, creator AlertCreator) *Scanner {
	return &Scanner{
		cfg:       cfg,
		cameras:   cameras,
		snapshots: snapshots,
		predictor: predictor,
		alerts:    creator,
		log:       logging.NewServiceLogger(cfg, "scanner"),
	}
}

// Process scans one camera. Failures are logged with the camera's identity
// and never propagate to sibling tasks.
func (s *Scanner) Process(ctx context.Context, cameraID uint) {
	camera, err := s.cameras.CameraByID(ctx, cameraID)
	if err != nil {
		s.log.Error().Err(err).Uint("camera_id", cameraID).Msg("Failed to load camera")
		return
	}
	if camera == nil {
		s.log.Warn().Uint("camera_id", cameraID).Msg("Camera vanished before scan")
		return
	}
	logger := logging.WithCamera(s.log, camera.ID)

	snap := s.snapshots.Capture(ctx, camera)
	if !snap.Success {
		logger.Error().Str("error", snap.Err).Msg("Snapshot failed")
		// Both capture paths failed; flag the camera for operator attention.
		if err := s.cameras.SetCameraStatus(ctx, camera.ID, models.CameraStatusError); err != nil {
			logger.Error().Err(err).Msg("Failed to record camera error status")
		}
		return
	}
	if snap.Temporary {
		defer os.Remove(snap.FilePath)
	}

	pred := s.predictor.Predict(ctx, snap.FilePath)
	if !pred.Success {
		logger.Error().Str("error", pred.Err).Bool("transport", pred.Transport).Msg("Prediction failed")
		return
	}

	if pred.Label != s.cfg.FireLabel || pred.Confidence < s.cfg.DetectionThreshold {
		logger.Debug().
			Str("label", pred.Label).
			Float64("confidence", pred.Confidence).
			Msg("No fire detected")
		return
	}

	logger.Warn().Float64("confidence", pred.Confidence).Msg("FIRE detected by AI")

	result := s.alerts.CreateDetectionAlert(ctx, camera, pred.Confidence, snap.FilePath)
	if !result.Success {
		logger.Error().Strs("errors", result.Errors).Msg("Failed to create alert")
	}
}
