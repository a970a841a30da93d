package main

import (
	"context"                      // context package is needed for Redis operations
	"log"                          // log package is needed for logging
	"fitquest/internal/api"        // Custom package for API handlers
	"fitquest/internal/config"     // Custom package for configuration
	"fitquest/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	// TranslateError maps duplicate-key violations to gorm.ErrDuplicatedKey,
	// which registration relies on to report conflicts
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes (no session required; logout/verify handle their own token)
	authGroup := r.Group("/auth")
	authGroup.POST("/register", api.RegisterHandler(db))         // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(db))               // Login endpoint
	authGroup.POST("/logout", api.LogoutHandler(db))             // Logout endpoint (token only, no enabled check)
	authGroup.GET("/verify", api.VerifyHandler(db, redisClient)) // Session verification endpoint

	// User data routes (protected by the session gate)
	userGroup := r.Group("/user")
	userGroup.Use(middleware.SessionAuth(db))                                       // Resolve the bearer token to a user id
	userGroup.POST("/stats", api.UpdateStatsHandler(db, redisClient))               // Stats update endpoint
	userGroup.POST("/health", api.SaveHealthHandler(db, redisClient))               // Save health data endpoint
	userGroup.GET("/health", api.GetHealthHandler(db, redisClient))                 // Latest health data endpoint
	userGroup.POST("/activities", api.AddActivityHandler(db, redisClient))          // Log activity endpoint
	userGroup.GET("/activities", api.GetActivitiesHandler(db, redisClient))         // Activity log endpoint
	userGroup.DELETE("/activities/:id", api.DeleteActivityHandler(db, redisClient)) // Delete activity endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
