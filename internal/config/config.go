// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the process together.
type Config struct {
	MongoURI  string
	MongoDB   string
	JWTSecret string
	Port      string
}

// EnvOrDefault returns the environment variable value, or fallback when the
// variable is empty. Used for flag defaults before Load runs.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads a .env file when present and validates required variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "tasktracker"
	}

	return &Config{
		MongoURI:  mongoURI,
		MongoDB:   mongoDB,
		JWTSecret: jwtSecret,
		Port:      os.Getenv("PORT"),
	}, nil
}
