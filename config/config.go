package config

import (
	"os"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Presence   PresenceConfig
	Map        MapConfig
	Ping       PingConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// PresenceConfig holds the liveness knobs. A record older than
// LivenessThreshold is evicted from the shared store; OnlineThreshold is
// cosmetic only ("online now" label) and independent of eviction.
type PresenceConfig struct {
	LivenessThreshold time.Duration
	SweepInterval     time.Duration
	OnlineThreshold   time.Duration
	HeartbeatInterval time.Duration
	GeoTimeout        time.Duration
}

// MapConfig controls which presence records become markers and how the pin
// zoom interaction behaves.
type MapConfig struct {
	VisibilityRadiusMeters float64
	NearThresholdMeters    float64
	ZoomDebounce           time.Duration
}

type PingConfig struct {
	BannerDuration time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8080"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "putping:putping@tcp(localhost:3306)/putping?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: envOr("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: 168 * time.Hour,
			Issuer:       "putping",
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		Presence: PresenceConfig{
			LivenessThreshold: 60 * time.Second,
			SweepInterval:     30 * time.Second,
			OnlineThreshold:   30 * time.Second,
			HeartbeatInterval: 15 * time.Second,
			GeoTimeout:        10 * time.Second,
		},
		Map: MapConfig{
			VisibilityRadiusMeters: 5000,
			NearThresholdMeters:    500,
			ZoomDebounce:           350 * time.Millisecond,
		},
		Ping: PingConfig{
			BannerDuration: 4 * time.Second,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
