package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Photos
		Legacy
		Mail
		Auth
		Tasks
		StaleListings
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		PublicURL                string // Base URL used in email links
	}
	Database struct {
		Path string
	}
	Photos struct {
		Dir      string // Where resized listing photos are served from
		MaxWidth int    // Resize bound, never upscaled
		Quality  int    // JPEG re-encode quality
	}
	Legacy struct {
		DataDir   string // Directory holding logements.json, photos.json and photo files
		StopsPath string // Static transit stop dataset
	}
	Mail struct {
		Host         string
		Port         int
		User         string
		Password     string
		From         string
		TemplatesDir string
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration // Email validation / password reset tokens
		BcryptCost      int
		SecureCookies   bool
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	StaleListings struct {
		Enabled  bool
		Schedule string        // Cron format: "0 8 * * *" = daily at 08:00
		MaxAge   time.Duration // Listings untouched longer than this get archived
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8177)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("public_url", "https://loca7.enseeiht.fr")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("photos_dir", DefaultPhotosDir)
	v.SetDefault("photos_max_width", 1000)
	v.SetDefault("photos_quality", 80)
	v.SetDefault("legacy_data_dir", DefaultLegacyDataDir)
	v.SetDefault("legacy_stops_path", DefaultStopsPath)

	// Mail defaults
	v.SetDefault("mail_host", "localhost")
	v.SetDefault("mail_port", 587)
	v.SetDefault("mail_from", "no-reply@loca7.enseeiht.fr")
	v.SetDefault("mail_templates_dir", "./mail-templates")

	// Auth defaults
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_token_expiry", "1h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Stale listing sweep defaults
	v.SetDefault("stale_listings_enabled", false)
	v.SetDefault("stale_listings_schedule", "0 8 * * *")
	v.SetDefault("stale_listings_max_age", "2160h") // 90 days

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			PublicURL:                v.GetString("PUBLIC_URL"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Photos: Photos{
			Dir:      v.GetString("PHOTOS_DIR"),
			MaxWidth: v.GetInt("PHOTOS_MAX_WIDTH"),
			Quality:  v.GetInt("PHOTOS_QUALITY"),
		},
		Legacy: Legacy{
			DataDir:   v.GetString("LEGACY_DATA_DIR"),
			StopsPath: v.GetString("LEGACY_STOPS_PATH"),
		},
		Mail: Mail{
			Host:         v.GetString("MAIL_HOST"),
			Port:         v.GetInt("MAIL_PORT"),
			User:         v.GetString("MAIL_USER"),
			Password:     v.GetString("MAIL_PASS"),
			From:         v.GetString("MAIL_FROM"),
			TemplatesDir: v.GetString("MAIL_TEMPLATES_DIR"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:     v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		StaleListings: StaleListings{
			Enabled:  v.GetBool("STALE_LISTINGS_ENABLED"),
			Schedule: v.GetString("STALE_LISTINGS_SCHEDULE"),
			MaxAge:   v.GetDuration("STALE_LISTINGS_MAX_AGE"),
		},
	}
}
