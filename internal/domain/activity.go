package domain

import "time"

// Activity Model
type Activity struct {
	ID              uint      `gorm:"primaryKey" json:"activity_id"`             // Primary key
	UserID          uint      `gorm:"index;not null" json:"-"`                   // Owning user, immutable after creation
	ActivityType    string    `gorm:"not null" json:"activity_type"`             // Free-form activity type (e.g. running, yoga)
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`          // Duration in minutes
	CaloriesBurned  int       `gorm:"not null;default:0" json:"calories_burned"` // Calories, defaults to 0
	Notes           *string   `json:"notes"`                                     // Optional free-form notes, nullable
	XPEarned        int       `gorm:"not null" json:"xp_earned"`                 // XP awarded for this activity
	ActivityDate    time.Time `gorm:"index;not null" json:"activity_date"`       // When the activity happened, defaults to creation time
	CreatedAt       int64     `gorm:"autoCreateTime:milli" json:"created_at"`    // Timestamp of creation in milliseconds
}
