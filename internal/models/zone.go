package models

import (
	"time"
)

// Zone groups cameras and sensors under an owning user, who receives the
// notifications for that zone. The optional locator (lat/long or city) keys
// the external weather fetch.
type Zone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	City      *string   `gorm:"type:varchar(100)" json:"city,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Cameras []Camera `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE" json:"cameras,omitempty"`
	Sensors []Sensor `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE" json:"sensors,omitempty"`
}

// HasLocation reports whether the zone can be resolved against the weather
// data source, either by coordinates or by city name.
func (z *Zone) HasLocation() bool {
	if z.Latitude != nil && z.Longitude != nil {
		return true
	}
	return z.City != nil && *z.City != ""
}
