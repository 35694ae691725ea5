package models

import (
	"time"
)

// UserRole distinguishes zone-owning supervisors from their administrative
// supervisors.
type UserRole string

const (
	RoleSupervisor UserRole = "supervisor"
	RoleAdmin      UserRole = "admin"
)

// User is a notification recipient. Supervisors own zones and link to an
// admin; inactive users are skipped during email delivery.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'supervisor'" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	AdminID   *uint     `json:"admin_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Admin *User  `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Zones []Zone `gorm:"foreignKey:UserID" json:"zones,omitempty"`
}
