package models

import "time"

// RoleAdmin may run bulk operations such as imports and recomputes.
const RoleAdmin = "admin"

// User is a back-office account. Only the seeded admin exists unless more
// are inserted by hand.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"`
	Role        string     `gorm:"type:varchar(50);not null" json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
