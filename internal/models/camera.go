package models

import (
	"time"
)

// CameraStatus represents the operational status of a video source
type CameraStatus string

const (
	CameraStatusOnline    CameraStatus = "online"
	CameraStatusOffline   CameraStatus = "offline"
	CameraStatusRecording CameraStatus = "recording"
	CameraStatusError     CameraStatus = "error"
)

// Camera represents a video source attached to a zone. Only cameras that are
// online with detection enabled are eligible for scanning.
type Camera struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_cameras_zone_name" json:"name"`
	URL             string       `gorm:"type:varchar(255);not null" json:"url"`
	ZoneID          uint         `gorm:"not null;uniqueIndex:idx_cameras_zone_name" json:"zone_id"`
	Latitude        *float64     `json:"latitude,omitempty"`
	Longitude       *float64     `json:"longitude,omitempty"`
	Status          CameraStatus `gorm:"type:varchar(20);not null;default:'online'" json:"status"`
	IsDetecting     bool         `gorm:"default:false" json:"is_detecting"`
	LastSnapshotURL string       `gorm:"type:varchar(255)" json:"last_snapshot_url,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}
