package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"firewatch-go/internal/models"
)

// EligibleCameras returns cameras the scan sweep may visit: online with
// detection enabled.
func (s *Store) EligibleCameras(ctx context.Context) ([]models.Camera, error) {
	var cameras []models.Camera
	err := s.DB.WithContext(ctx).
		Where("status = ? AND is_detecting = ?", models.CameraStatusOnline, true).
		Find(&cameras).Error
	return cameras, err
}

// CameraByID loads one camera with its zone.
func (s *Store) CameraByID(ctx context.Context, id uint) (*models.Camera, error) {
	var camera models.Camera
	err := s.DB.WithContext(ctx).Preload("Zone").First(&camera, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &camera, nil
}

// SimulationZones returns zones eligible for the sensor simulation sweep: a
// resolvable location and at least one active sensor. Only active sensors are
// preloaded.
func (s *Store) SimulationZones(ctx context.Context) ([]models.Zone, error) {
	var zones []models.Zone
	err := s.DB.WithContext(ctx).
		Preload("Sensors", "status = ?", models.SensorStatusActive).
		Joins("JOIN sensors ON sensors.zone_id = zones.id AND sensors.status = ?", models.SensorStatusActive).
		Where("(zones.city IS NOT NULL AND zones.city <> '') OR (zones.latitude IS NOT NULL AND zones.longitude IS NOT NULL)").
		Group("zones.id").
		Find(&zones).Error
	return zones, err
}

// PendingSensorAlert looks up the at-most-one pending sensor_threshold alert
// for a sensor. Returns nil when none exists.
func PendingSensorAlert(tx *gorm.DB, sensorID uint) (*models.Alert, error) {
	var alert models.Alert
	err := tx.
		Where("source_kind = ? AND source_id = ? AND status = ? AND origin = ?",
			models.SourceSensor, sensorID, models.AlertStatusPending, models.OriginSensorThreshold).
		First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// ZoneOwner returns the owning user of a zone.
func (s *Store) ZoneOwner(ctx context.Context, zoneID uint) (*models.User, error) {
	var zone models.Zone
	err := s.DB.WithContext(ctx).Preload("User").First(&zone, zoneID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return zone.User, nil
}

// AdminFor resolves the administrative supervisor linked to a user, if any.
func (s *Store) AdminFor(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil || user.AdminID == nil {
		return nil, nil
	}
	var admin models.User
	err := s.DB.WithContext(ctx).
		Where("id = ? AND role = ?", *user.AdminID, models.RoleAdmin).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// UpdateCameraSnapshotURL records the camera's last-known snapshot.
func (s *Store) UpdateCameraSnapshotURL(ctx context.Context, cameraID uint, url string) error {
	return s.DB.WithContext(ctx).
		Model(&models.Camera{}).
		Where("id = ?", cameraID).
		Update("last_snapshot_url", url).Error
}

// SetCameraStatus updates the operational status of a camera.
func (s *Store) SetCameraStatus(ctx context.Context, cameraID uint, status models.CameraStatus) error {
	return s.DB.WithContext(ctx).
		Model(&models.Camera{}).
		Where("id = ?", cameraID).
		Update("status", status).Error
}

// PendingAlertCount counts alerts awaiting human disposition.
func (s *Store) PendingAlertCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Alert{}).
		Where("status = ?", models.AlertStatusPending).
		Count(&count).Error
	return count, err
}

// SensorStats holds aggregate reading statistics for the ops surface.
type SensorStats struct {
	AverageTemperature *float64 `json:"average_temperature"`
	AverageHumidity    *float64 `json:"average_humidity"`
	SampleCount        int64    `json:"sample_count"`
}

// SensorStatsSince aggregates readings with a temperature recorded after the
// given time.
func (s *Store) SensorStatsSince(ctx context.Context, since time.Time) (SensorStats, error) {
	var stats SensorStats
	row := s.DB.WithContext(ctx).
		Model(&models.SensorLog{}).
		Where("created_at >= ? AND temperature IS NOT NULL", since).
		Select("AVG(temperature) AS average_temperature, AVG(humidity) AS average_humidity, COUNT(*) AS sample_count").
		Row()
	if err := row.Scan(&stats.AverageTemperature, &stats.AverageHumidity, &stats.SampleCount); err != nil {
		return SensorStats{}, err
	}
	return stats, nil
}

// ChartPoint is one reading in a per-sensor time series.
type ChartPoint struct {
	SensorID    uint      `json:"sensor_id"`
	CreatedAt   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
}

// SensorChartData returns ordered reading series grouped by sensor id.
func (s *Store) SensorChartData(ctx context.Context, sensorIDs []uint, start, end time.Time) (map[uint][]ChartPoint, error) {
	var points []ChartPoint
	err := s.DB.WithContext(ctx).
		Model(&models.SensorLog{}).
		Where("sensor_id IN ? AND created_at BETWEEN ? AND ?", sensorIDs, start, end).
		Order("created_at").
		Select("sensor_id, created_at, temperature, humidity").
		Scan(&points).Error
	if err != nil {
		return nil, err
	}

	series := make(map[uint][]ChartPoint)
	for _, p := range points {
		series[p.SensorID] = append(series[p.SensorID], p)
	}
	return series, nil
}
