package models

import (
	"time"
)

// AlertOrigin is the cause category of an alert
type AlertOrigin string

const (
	OriginSensorThreshold AlertOrigin = "sensor_threshold"
	OriginSensorError     AlertOrigin = "sensor_error"
	OriginMLDetection     AlertOrigin = "ml_detection"
	OriginManualInput     AlertOrigin = "manual_input"
)

// AlertStatus is the disposition of an alert
type AlertStatus string

const (
	AlertStatusPending  AlertStatus = "pending"
	AlertStatusResolved AlertStatus = "resolved"
	AlertStatusIgnored  AlertStatus = "ignored"
)

// SourceKind tags the polymorphic alert source
type SourceKind string

const (
	SourceCamera SourceKind = "camera"
	SourceSensor SourceKind = "sensor"
)

// Alert is the central record of the detection pipeline. The source is a
// tagged (kind, id) pair; lookups branch on the kind explicitly.
type Alert struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Message    string      `gorm:"type:text;not null" json:"message"`
	Origin     AlertOrigin `gorm:"type:varchar(20);not null;default:'sensor_threshold'" json:"origin"`
	Status     AlertStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SourceKind SourceKind  `gorm:"type:varchar(10);not null;index:idx_alerts_source" json:"source_kind"`
	SourceID   uint        `gorm:"not null;index:idx_alerts_source" json:"source_id"`
	ZoneID     uint        `gorm:"not null;index" json:"zone_id"`
	ImageURL   string      `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	ViaEmail   bool        `gorm:"default:true" json:"via_email"`
	UserID     *uint       `json:"user_id,omitempty"` // who resolved/ignored the alert
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// ValidStatusTransition reports whether a status value is accepted by the
// status-update operation.
func ValidStatusTransition(status AlertStatus) bool {
	return status == AlertStatusResolved || status == AlertStatusIgnored
}
