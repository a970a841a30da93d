package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitquest/internal/domain"
	"fitquest/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestApp wires the full route surface against an in-memory database
// and an in-process redis, mirroring cmd/server/main.go
func newTestApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.Activity{}, &domain.HealthRecord{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	gin.SetMode(gin.TestMode)
	r := gin.New()

	authGroup := r.Group("/auth")
	authGroup.POST("/register", RegisterHandler(db))
	authGroup.POST("/login", LoginHandler(db))
	authGroup.POST("/logout", LogoutHandler(db))
	authGroup.GET("/verify", VerifyHandler(db, rdb))

	userGroup := r.Group("/user")
	userGroup.Use(middleware.SessionAuth(db))
	userGroup.POST("/stats", UpdateStatsHandler(db, rdb))
	userGroup.POST("/health", SaveHealthHandler(db, rdb))
	userGroup.GET("/health", GetHealthHandler(db, rdb))
	userGroup.POST("/activities", AddActivityHandler(db, rdb))
	userGroup.GET("/activities", GetActivitiesHandler(db, rdb))
	userGroup.DELETE("/activities/:id", DeleteActivityHandler(db, rdb))

	return r, db
}

// doJSON performs a request with an optional JSON body and bearer token
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals a response body into a generic map
func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

// registerUser registers a user through the API and returns its token and id
func registerUser(t *testing.T, r *gin.Engine, username string) (string, uint) {
	t.Helper()
	rr := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username":  username,
		"password":  "hunter22",
		"character": "warrior",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode(t, rr)
	token := resp["token"].(string)
	user := resp["user"].(map[string]any)
	return token, uint(user["user_id"].(float64))
}
