package domain

import "time"

// HealthRecord Model
type HealthRecord struct {
	ID           uint      `gorm:"primaryKey" json:"health_id"`       // Primary key
	UserID       uint      `gorm:"index;not null" json:"-"`           // Owning user, immutable after creation
	Weight       float64   `gorm:"not null" json:"weight"`            // Current weight, mandatory
	Height       float64   `gorm:"not null" json:"height"`            // Height, mandatory
	BMI          *float64  `json:"bmi"`                               // Caller-supplied BMI, never computed server-side
	TargetWeight *float64  `json:"target_weight"`                     // Optional goal weight, nullable
	StartWeight  *float64  `json:"start_weight"`                      // Optional starting weight, nullable
	RecordedAt   time.Time `gorm:"index;not null" json:"recorded_at"` // Measurement timestamp, defaults to creation time
}
