package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"firewatch-go/internal/config"
	"firewatch-go/internal/logging"
	"firewatch-go/internal/models"
	"firewatch-go/internal/services/upload"
	"firewatch-go/internal/storage"
)

// Uploader pushes a local snapshot to the object store.
type Uploader interface {
	Upload(ctx context.Context, filePath, publicID string) upload.Result
}

// Dispatcher fans a created alert out across the notification channels.
type Dispatcher interface {
	Dispatch(alert *models.Alert, sourceName, localImagePath string)
}

// ReadingBroadcaster publishes accepted sensor readings.
type ReadingBroadcaster interface {
	PublishSensorReading(reading *models.SensorLog) error
}

// Result is the typed outcome of an alert operation.
type Result struct {
	Success bool
	Alert   *models.Alert
	Errors  []string
}

// Service owns alert creation, per-sensor deduplication, and status
// transitions.
type Service struct {
	cfg         *config.Config
	store       *storage.Store
	uploader    Uploader
	fanout      Dispatcher
	broadcaster ReadingBroadcaster
	log         zerolog.Logger
}

func NewService(cfg *config.Config, store *storage.Store, uploader Uploader, fanout Dispatcher, broadcaster ReadingBroadcaster) *Service {
	return &Service{
		cfg:         cfg,
		store:       store,
		uploader:    uploader,
		fanout:      fanout,
		broadcaster: broadcaster,
		log:         logging.NewServiceLogger(cfg, "alerts"),
	}
}

// DetectionMessage renders the human-readable ML detection message with the
// confidence rounded to two decimals.
func DetectionMessage(cameraName string, confidence float64) string {
	return fmt.Sprintf("FIRE DETECTED by AI at camera '%s'. Confidence: %.2f", cameraName, confidence)
}

// ThresholdMessage renders the threshold-breach message for a sensor reading.
func ThresholdMessage(sensor *models.Sensor, temperature, threshold float64) string {
	return fmt.Sprintf("Temperature %.2f exceeded threshold %.2f at sensor '%s' (%s)",
		temperature, threshold, sensor.Name, sensor.Location)
}

// CreateDetectionAlert persists a pending ml_detection alert for a camera.
// The snapshot is uploaded first; an upload failure aborts creation so no
// alert exists without evidence.
func (s *Service) CreateDetectionAlert(ctx context.Context, camera *models.Camera, confidence float64, snapshotPath string) Result {
	publicID := fmt.Sprintf("camera_%d_%d", camera.ID, time.Now().Unix())
	uploaded := s.uploader.Upload(ctx, snapshotPath, publicID)
	if !uploaded.Success {
		return Result{Errors: []string{uploaded.Err}}
	}

	alert := &models.Alert{
		Message:    DetectionMessage(camera.Name, confidence),
		Origin:     models.OriginMLDetection,
		Status:     models.AlertStatusPending,
		SourceKind: models.SourceCamera,
		SourceID:   camera.ID,
		ZoneID:     camera.ZoneID,
		ImageURL:   uploaded.URL,
		ViaEmail:   true,
	}
	if errs := validate(alert); len(errs) > 0 {
		return Result{Errors: errs}
	}

	if err := s.store.DB.WithContext(ctx).Create(alert).Error; err != nil {
		return Result{Errors: []string{err.Error()}}
	}
	alert.Zone = camera.Zone

	// Keep the camera's last-known snapshot current.
	if err := s.store.UpdateCameraSnapshotURL(ctx, camera.ID, uploaded.URL); err != nil {
		s.log.Error().Err(err).Uint("camera_id", camera.ID).Msg("Failed to update last snapshot URL")
	}

	s.fanout.Dispatch(alert, camera.Name, snapshotPath)
	return Result{Success: true, Alert: alert}
}

// RecordReading persists one sensor reading and applies the threshold rule
// inside a single transaction. The reading broadcast happens after commit;
// a newly created alert triggers the notification fanout exactly once.
func (s *Service) RecordReading(ctx context.Context, sensor *models.Sensor, temperature, humidity float64) (*models.SensorLog, error) {
	reading := &models.SensorLog{
		SensorID:    sensor.ID,
		Temperature: &temperature,
		Humidity:    &humidity,
	}

	var created *models.Alert
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(reading).Error; err != nil {
			return fmt.Errorf("failed to create sensor log: %w", err)
		}

		alert, isNew, err := s.applyThreshold(tx, sensor, reading)
		if err != nil {
			return err
		}
		if isNew {
			created = alert
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("log_id", reading.ID).
		Uint("sensor_id", sensor.ID).
		Msg("Sensor log created")

	if err := s.broadcaster.PublishSensorReading(reading); err != nil {
		s.log.Error().Err(err).Uint("log_id", reading.ID).Msg("Failed to broadcast sensor reading")
	}

	if created != nil {
		created.Zone = sensor.Zone
		s.fanout.Dispatch(created, sensor.Name, "")
	}
	return reading, nil
}

// applyThreshold enforces the at-most-one-pending-alert-per-sensor
// invariant: an existing pending sensor_threshold alert is updated in place,
// otherwise a new one is created. The second return value reports creation.
func (s *Service) applyThreshold(tx *gorm.DB, sensor *models.Sensor, reading *models.SensorLog) (*models.Alert, bool, error) {
	if sensor.Threshold == nil || reading.Temperature == nil || *reading.Temperature < *sensor.Threshold {
		return nil, false, nil
	}

	message := ThresholdMessage(sensor, *reading.Temperature, *sensor.Threshold)
	s.log.Warn().Uint("sensor_id", sensor.ID).Msg(message)

	existing, err := storage.PendingSensorAlert(tx, sensor.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up pending alert: %w", err)
	}
	if existing != nil {
		if err := tx.Model(existing).Update("message", message).Error; err != nil {
			return nil, false, fmt.Errorf("failed to update pending alert: %w", err)
		}
		return existing, false, nil
	}

	alert := &models.Alert{
		Message:    message,
		Origin:     models.OriginSensorThreshold,
		Status:     models.AlertStatusPending,
		SourceKind: models.SourceSensor,
		SourceID:   sensor.ID,
		ZoneID:     sensor.ZoneID,
		ViaEmail:   true,
	}
	if errs := validate(alert); len(errs) > 0 {
		return nil, false, fmt.Errorf("invalid alert: %v", errs)
	}
	if err := tx.Create(alert).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create alert: %w", err)
	}
	return alert, true, nil
}

// UpdateStatus performs the pending→resolved|ignored transition, recording
// the acting user. It has no further side effects.
func (s *Service) UpdateStatus(ctx context.Context, alert *models.Alert, user *models.User, newStatus models.AlertStatus) Result {
	if !models.ValidStatusTransition(newStatus) {
		return Result{Errors: []string{fmt.Sprintf("invalid status %q", newStatus)}}
	}
	if user == nil {
		return Result{Errors: []string{"acting user is required"}}
	}

	alert.Status = newStatus
	alert.UserID = &user.ID
	err := s.store.DB.WithContext(ctx).
		Model(alert).
		Updates(map[string]interface{}{"status": newStatus, "user_id": user.ID}).Error
	if err != nil {
		return Result{Errors: []string{err.Error()}}
	}
	return Result{Success: true, Alert: alert}
}

func validate(alert *models.Alert) []string {
	var errs []string
	if alert.Message == "" {
		errs = append(errs, "message can't be blank")
	}
	if alert.SourceID == 0 || alert.SourceKind == "" {
		errs = append(errs, "source must exist")
	}
	if alert.ZoneID == 0 {
		errs = append(errs, "zone must exist")
	}
	return errs
}
