package domain

import "time"

// Session Model
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"session_id"`           // Primary key
	UserID    uint      `gorm:"index;not null" json:"user_id"`          // Foreign key to User
	Token     string    `gorm:"unique;not null" json:"-"`               // Opaque 256-bit hex token, globally unique
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`             // Sessions past this instant are deleted on lookup
	CreatedAt int64     `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
