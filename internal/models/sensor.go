package models

import (
	"time"
)

// SensorStatus represents the operational status of an environmental probe
type SensorStatus string

const (
	SensorStatusActive   SensorStatus = "active"
	SensorStatusInactive SensorStatus = "inactive"
	SensorStatusError    SensorStatus = "error"
)

// Sensor represents an environmental probe in a zone. Readings above the
// threshold raise sensor_threshold alerts.
type Sensor struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(100);not null" json:"name"`
	Location    string       `gorm:"type:varchar(255)" json:"location"`
	ZoneID      uint         `gorm:"not null;index" json:"zone_id"`
	Threshold   *float64     `json:"threshold,omitempty"`
	Sensitivity float64      `gorm:"default:1" json:"sensitivity"`
	Status      SensorStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}
