package session

import (
	"errors"  // Sentinel errors
	"strings" // Bearer prefix handling
	"time"    // Expiry arithmetic

	"fitquest/internal/domain" // Importing domain models
	"fitquest/internal/utils"  // Token generation

	"gorm.io/gorm" // GORM ORM library
)

const (
	TokenTTL        = 30 * 24 * time.Hour // Sessions live for 30 days
	MaxLiveSessions = 5                   // A user holds at most 5 live sessions
)

var (
	ErrNotFound = errors.New("session not found") // Token does not match any session
	ErrExpired  = errors.New("session expired")   // Token matched but the session expired (and was deleted)
)

// Resolved is the result of a successful token lookup
type Resolved struct {
	UserID    uint      // Owning user
	IsActive  bool      // Owning user's enabled flag
	ExpiresAt time.Time // Session expiry
}

// TokenFromHeader extracts the session token from an Authorization header value.
// A literal "Bearer " prefix is stripped; without it the whole value is the token.
func TokenFromHeader(header string) string {
	return strings.TrimPrefix(header, "Bearer ")
}

// Issue creates a new session for a user and returns its token.
// Before inserting, the user's sessions are pruned to the 4 most recent
// so the new one becomes the 5th; prune and insert share one transaction.
func Issue(db *gorm.DB, userID uint) (string, error) {
	token, err := utils.GenerateSessionToken() // Generate a fresh 256-bit token
	if err != nil {
		return "", err // Propagate randomness failure
	}
	// Prune old sessions and insert the new one atomically
	err = db.Transaction(func(tx *gorm.DB) error {
		var keep []uint // IDs of the sessions to survive the prune
		// Most recent first; ties on created_at broken by id descending
		if err := tx.Model(&domain.Session{}).
			Where("user_id = ?", userID).
			Order("created_at desc, id desc").
			Limit(MaxLiveSessions - 1).
			Pluck("id", &keep).Error; err != nil {
			return err // Return error to rollback
		}
		// Delete everything for this user outside the keep set
		if len(keep) > 0 {
			if err := tx.Where("user_id = ? AND id NOT IN ?", userID, keep).
				Delete(&domain.Session{}).Error; err != nil {
				return err // Return error to rollback
			}
		}
		// Insert the new session with its expiry
		s := domain.Session{
			UserID:    userID,                   // Owning user
			Token:     token,                    // Opaque token
			ExpiresAt: time.Now().Add(TokenTTL), // Expires in 30 days
		}
		return tx.Create(&s).Error // Commit on success
	})
	if err != nil {
		return "", err // Issue failed, no session persisted
	}
	return token, nil // Return the new token
}

// Resolve looks up a token and returns the owning user's id, enabled flag
// and the session expiry. An expired session is deleted during the lookup
// (lazy pruning) and reported as ErrExpired, distinct from ErrNotFound.
func Resolve(db *gorm.DB, token string) (*Resolved, error) {
	var s domain.Session // Session row for the token
	// Unknown and malformed tokens fail the same way: no matching row
	if err := db.Where("token = ?", token).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound // Token matches no session
		}
		return nil, err // Store failure
	}
	// Expired sessions are removed as a side effect of the failed lookup
	if time.Now().After(s.ExpiresAt) {
		if err := db.Where("token = ?", token).Delete(&domain.Session{}).Error; err != nil {
			return nil, err // Store failure during lazy prune
		}
		return nil, ErrExpired // Distinct from unknown-token
	}
	var user domain.User // Owning user, for the enabled flag
	if err := db.First(&user, s.UserID).Error; err != nil {
		return nil, err // Every session references an existing user
	}
	return &Resolved{
		UserID:    s.UserID,      // Owning user id
		IsActive:  user.IsActive, // Enabled flag
		ExpiresAt: s.ExpiresAt,   // Session expiry
	}, nil
}

// Revoke deletes the session for a token. Revoking an absent token returns
// ErrNotFound; logout callers treat that as success (idempotent logout).
func Revoke(db *gorm.DB, token string) error {
	res := db.Where("token = ?", token).Delete(&domain.Session{}) // Delete the session row
	if res.Error != nil {
		return res.Error // Store failure
	}
	if res.RowsAffected == 0 {
		return ErrNotFound // Nothing deleted: token was unknown or already revoked
	}
	return nil // Session revoked
}
