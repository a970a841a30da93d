package api

import (
	"net/http"
	"testing"
	"time"

	"fitquest/internal/domain"
	"fitquest/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterReturnsTokenAndUser(t *testing.T) {
	r, _ := newTestApp(t)

	rr := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username":  "aragorn",
		"password":  "hunter22",
		"character": "ranger",
		"email":     "aragorn@gondor.example",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode(t, rr)
	require.Len(t, resp["token"].(string), 64)

	user := resp["user"].(map[string]any)
	require.Equal(t, "aragorn", user["username"])
	require.Equal(t, "ranger", user["character_class"])
	require.EqualValues(t, 1, user["level"])
	require.EqualValues(t, 0, user["xp"])
	require.EqualValues(t, 0, user["total_activities"])
	require.Equal(t, true, user["is_active"])
	// The digest never appears in any payload
	require.NotContains(t, rr.Body.String(), "password")
}

func TestRegisterTokenImmediatelyVerifies(t *testing.T) {
	r, _ := newTestApp(t)
	token, userID := registerUser(t, r, "gimli")

	rr := doJSON(t, r, http.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	user := decode(t, rr)["user"].(map[string]any)
	require.EqualValues(t, userID, user["user_id"])
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestApp(t)

	cases := []struct {
		name string
		body gin.H
		want string
	}{
		{"missing fields", gin.H{"username": "frodo"}, "Missing required fields"},
		{"short username", gin.H{"username": "ab", "password": "hunter22", "character": "monk"}, "Username must be at least 3 characters long"},
		{"short password", gin.H{"username": "frodo", "password": "12345", "character": "monk"}, "Password must be at least 6 characters long"},
		{"bad class", gin.H{"username": "frodo", "password": "hunter22", "character": "paladin"}, "Invalid character class"},
		{"bad email", gin.H{"username": "frodo", "password": "hunter22", "character": "monk", "email": "not-an-email"}, "Invalid email address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, r, http.MethodPost, "/auth/register", "", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tc.want, decode(t, rr)["error"])
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r, _ := newTestApp(t)
	registerUser(t, r, "legolas")

	rr := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username":  "legolas",
		"password":  "hunter22",
		"character": "mage",
	})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "Username already taken", decode(t, rr)["error"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _ := newTestApp(t)
	rr := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username": "boromir", "password": "hunter22", "character": "warrior", "email": "steward@gondor.example",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username": "faramir", "password": "hunter22", "character": "warrior", "email": "steward@gondor.example",
	})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "Email already registered", decode(t, rr)["error"])
}

func TestLoginWrongPasswordAndUnknownUserReadAlike(t *testing.T) {
	r, _ := newTestApp(t)
	registerUser(t, r, "samwise")

	wrongPassword := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"username": "samwise", "password": "wrong-password",
	})
	unknownUser := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"username": "nobody", "password": "hunter22",
	})
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// Identical message either way, leaking nothing about which check failed
	require.Equal(t, decode(t, wrongPassword)["error"], decode(t, unknownUser)["error"])
	require.Equal(t, "Invalid username or password", decode(t, wrongPassword)["error"])
}

func TestLoginSucceedsAndIssuesFreshToken(t *testing.T) {
	r, _ := newTestApp(t)
	registerToken, userID := registerUser(t, r, "samwise")

	rr := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"username": "samwise", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode(t, rr)
	loginToken := resp["token"].(string)
	require.NotEqual(t, registerToken, loginToken)
	require.EqualValues(t, userID, resp["user"].(map[string]any)["user_id"])
}

func TestLoginDisabledAccount(t *testing.T) {
	r, db := newTestApp(t)
	_, userID := registerUser(t, r, "saruman")
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", userID).Update("is_active", false).Error)

	rr := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"username": "saruman", "password": "hunter22",
	})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "Account is disabled", decode(t, rr)["error"])
}

func TestLogoutRevokesSession(t *testing.T) {
	r, _ := newTestApp(t)
	token, _ := registerUser(t, r, "merry")

	rr := doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// The revoked token no longer verifies
	rr = doJSON(t, r, http.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Invalid session token", decode(t, rr)["error"])
}

func TestLogoutIsIdempotent(t *testing.T) {
	r, _ := newTestApp(t)
	token, _ := registerUser(t, r, "pippin")

	// First logout deletes the session, the second finds nothing; both succeed
	for i := 0; i < 2; i++ {
		rr := doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "Logout successful", decode(t, rr)["message"])
	}

	// A token that never existed also logs out successfully
	rr := doJSON(t, r, http.MethodPost, "/auth/logout", "nonexistent-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLogoutWithoutToken(t *testing.T) {
	r, _ := newTestApp(t)

	rr := doJSON(t, r, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "No session token provided", decode(t, rr)["error"])
}

func TestVerifyExpiredSession(t *testing.T) {
	r, db := newTestApp(t)
	_, userID := registerUser(t, r, "bilbo")

	expired := domain.Session{UserID: userID, Token: "staletoken", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(&expired).Error)

	rr := doJSON(t, r, http.MethodGet, "/auth/verify", "staletoken", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Session expired", decode(t, rr)["error"])

	// The expired session was pruned, so the second attempt is just unknown
	rr = doJSON(t, r, http.MethodGet, "/auth/verify", "staletoken", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Invalid session token", decode(t, rr)["error"])
}

func TestVerifyDisabledAccount(t *testing.T) {
	r, db := newTestApp(t)
	token, userID := registerUser(t, r, "grima")
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", userID).Update("is_active", false).Error)

	rr := doJSON(t, r, http.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "Account is disabled", decode(t, rr)["error"])
}

func TestSixthLoginEvictsOldestSession(t *testing.T) {
	r, db := newTestApp(t)
	firstToken, userID := registerUser(t, r, "gandalf")

	// Five further logins push the registration session over the cap
	for i := 0; i < session.MaxLiveSessions; i++ {
		rr := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
			"username": "gandalf", "password": "hunter22",
		})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	var count int64
	require.NoError(t, db.Model(&domain.Session{}).Where("user_id = ?", userID).Count(&count).Error)
	require.EqualValues(t, session.MaxLiveSessions, count)

	rr := doJSON(t, r, http.MethodGet, "/auth/verify", firstToken, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
