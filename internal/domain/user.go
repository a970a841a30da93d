package domain

import "time"

// User Model
type User struct {
	ID               uint       `gorm:"primaryKey" json:"user_id"`                  // Primary key
	Username         string     `gorm:"unique;not null" json:"username"`            // Unique username
	Email            *string    `gorm:"uniqueIndex" json:"email"`                   // Optional unique email, nullable
	PasswordHash     string     `gorm:"not null" json:"-"`                          // Bcrypt digest, never serialized
	CharacterClass   string     `gorm:"not null" json:"character_class"`            // One of: warrior, mage, ranger, monk
	Level            int        `gorm:"not null;default:1" json:"level"`            // Current level, starts at 1
	XP               int        `gorm:"not null;default:0" json:"xp"`               // Accumulated experience points
	TotalActivities  int        `gorm:"not null;default:0" json:"total_activities"` // Lifetime activity count, floored at 0
	StreakDays       int        `gorm:"not null;default:0" json:"streak_days"`      // Consecutive-day streak
	LastActivityDate *time.Time `json:"last_activity_date"`                         // Timestamp of the most recent activity, nullable
	IsActive         bool       `gorm:"default:true" json:"is_active"`              // Disabled accounts cannot log in or authorize
	CreatedAt        int64      `gorm:"autoCreateTime:milli" json:"created_at"`     // Timestamp of creation in milliseconds
}
