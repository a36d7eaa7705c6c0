package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the server
type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	RedisAddr          string   `mapstructure:"REDIS_ADDR"`
	JWTSecret          string   `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int      `mapstructure:"JWT_EXPIRATION_HOURS"`
	Timezone           string   `mapstructure:"APP_TIMEZONE"`
	LapseCron          string   `mapstructure:"LAPSE_CRON"`
	LapseLookbackDays  int      `mapstructure:"LAPSE_LOOKBACK_DAYS"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	Mail               MailConfig
	Cloudinary         CloudinaryConfig
}

// MailConfig holds SMTP settings
type MailConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	User     string `mapstructure:"EMAIL_USER"`
	Password string `mapstructure:"EMAIL_PASS"`
}

// CloudinaryConfig holds Cloudinary configuration
type CloudinaryConfig struct {
	CloudName    string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	APIKey       string `mapstructure:"CLOUDINARY_API_KEY"`
	APISecret    string `mapstructure:"CLOUDINARY_API_SECRET"`
	UploadPreset string `mapstructure:"CLOUDINARY_UPLOAD_PRESET"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "REDIS_ADDR", "JWT_SECRET", "JWT_EXPIRATION_HOURS",
	"APP_TIMEZONE", "LAPSE_CRON", "LAPSE_LOOKBACK_DAYS", "CORS_ORIGINS",
	"SMTP_HOST", "SMTP_PORT", "EMAIL_USER", "EMAIL_PASS",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET", "CLOUDINARY_UPLOAD_PRESET",
}

// Load reads .env (if present) into the environment and builds the Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment variables directly")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("JWT_EXPIRATION_HOURS", 72)
	v.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("LAPSE_CRON", "5 0 * * *")
	v.SetDefault("LAPSE_LOOKBACK_DAYS", 7)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SMTP_PORT", 587)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := v.Unmarshal(&cfg.Mail); err != nil {
		return nil, fmt.Errorf("unmarshal mail config: %w", err)
	}
	if err := v.Unmarshal(&cfg.Cloudinary); err != nil {
		return nil, fmt.Errorf("unmarshal cloudinary config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "safein_dev_secret"
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
