package models

import (
	"time"

	"gorm.io/gorm"
)

// SensorLog is an immutable timestamped reading belonging to a sensor.
// Append-only; soft-deleted for audit, never mutated.
type SensorLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SensorID    uint           `gorm:"not null;index" json:"sensor_id"`
	Temperature *float64       `json:"temperature,omitempty"`
	Humidity    *float64       `json:"humidity,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Sensor *Sensor `gorm:"foreignKey:SensorID" json:"sensor,omitempty"`
}
