package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=restaurant port=5432 sslmode=disable"

type Config struct {
	HTTPPort        string
	DatabaseDSN     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CORSOrigins     string
	MediaPath       string // menu item images are written here
	MediaURLPrefix  string
	AuthRateLimit   int // token requests per minute per IP
}

func Load() (*Config, error) {
	// .env is optional; real deployments pass the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] could not read .env: %v", err)
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getDuration("JWT_ACCESS_TTL", 30*time.Minute),
		RefreshTokenTTL: getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		MediaPath:       getEnv("MEDIA_PATH", "./media"),
		MediaURLPrefix:  getEnv("MEDIA_URL_PREFIX", "/media"),
		AuthRateLimit:   getInt("AUTH_RATE_LIMIT", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value; set your own Postgres DSN in production.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value.")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[WARN] %s=%q is not a positive integer, using %d", key, v, def)
		return def
	}
	return n
}
