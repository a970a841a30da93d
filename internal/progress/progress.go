package progress

import (
	"errors" // Sentinel errors
	"time"   // Activity dates

	"fitquest/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

var (
	ErrNoFields = errors.New("no fields to update") // Empty stats update set
	ErrNotFound = errors.New("user not found")      // No user row for the given id
)

// StatsUpdate is a sparse update of a user's progress counters.
// Only non-nil fields are written; the set of updatable fields is closed.
type StatsUpdate struct {
	Level            *int       `json:"level"`              // New level
	XP               *int       `json:"xp"`                 // New experience total
	TotalActivities  *int       `json:"total_activities"`   // New activity count
	StreakDays       *int       `json:"streak_days"`        // New streak length
	LastActivityDate *time.Time `json:"last_activity_date"` // New last-activity timestamp
}

// ApplyStatsUpdate writes the supplied fields in a single UPDATE statement.
// No bounds checking is performed; callers compute valid values.
func ApplyStatsUpdate(db *gorm.DB, userID uint, update StatsUpdate) error {
	fields := map[string]any{} // Column set for the UPDATE
	if update.Level != nil {
		fields["level"] = *update.Level // Level supplied
	}
	if update.XP != nil {
		fields["xp"] = *update.XP // XP supplied
	}
	if update.TotalActivities != nil {
		fields["total_activities"] = *update.TotalActivities // Count supplied
	}
	if update.StreakDays != nil {
		fields["streak_days"] = *update.StreakDays // Streak supplied
	}
	if update.LastActivityDate != nil {
		fields["last_activity_date"] = *update.LastActivityDate // Date supplied
	}
	if len(fields) == 0 {
		return ErrNoFields // Nothing to write
	}
	res := db.Model(&domain.User{}).Where("id = ?", userID).Updates(fields) // One UPDATE for all supplied fields
	if res.Error != nil {
		return res.Error // Store failure
	}
	// Zero rows matched either means the user is gone or the values were
	// already current; only the former is an error
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err // Store failure
		}
		if count == 0 {
			return ErrNotFound // No user row to update
		}
	}
	return nil // Stats written
}

// IncrementActivityCount bumps total_activities by one and records the
// activity date as the user's last_activity_date. The increment is a single
// SQL expression so concurrent logs for the same user cannot lose updates.
func IncrementActivityCount(tx *gorm.DB, userID uint, activityDate time.Time) error {
	return tx.Model(&domain.User{}).Where("id = ?", userID).Updates(map[string]any{
		"total_activities":   gorm.Expr("total_activities + ?", 1), // Atomic increment
		"last_activity_date": activityDate,                         // Most recent activity
	}).Error
}

// DecrementActivityCount lowers total_activities by one, flooring at zero.
// last_activity_date is left untouched on decrement.
func DecrementActivityCount(tx *gorm.DB, userID uint) error {
	// CASE keeps the floor inside one atomic UPDATE expression
	return tx.Model(&domain.User{}).Where("id = ?", userID).
		Update("total_activities", gorm.Expr("CASE WHEN total_activities > 0 THEN total_activities - 1 ELSE 0 END")).
		Error
}
