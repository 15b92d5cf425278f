package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Upstream  UpstreamConfig
	Dashboard DashboardConfig
	Sessions  SessionConfig
	Links     LinksConfig
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig guards the administrative endpoints (refresh, export).
type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UpstreamConfig describes the spreadsheet-backed case API and its retry policy.
type UpstreamConfig struct {
	BaseURL           string
	Timeout           time.Duration
	PingAttempts      int
	FetchAttempts     int
	BackoffBase       time.Duration
	BackoffMultiplier float64
}

// DashboardConfig governs snapshot caching, polling and paging limits.
type DashboardConfig struct {
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	DefaultPageSize int
	MaxPageSize     int
	Timezone        string
}

// SessionConfig controls how long an idle view session is retained.
type SessionConfig struct {
	TTL time.Duration
}

// LinksConfig holds the outbound link targets echoed to clients.
type LinksConfig struct {
	AddCaseForm  string
	ResidentView string
	FacultyView  string
}

// Location resolves the configured dashboard timezone. An empty zone means
// local time; Load rejects zones that cannot be resolved.
func (c DashboardConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that would otherwise be silently replaced.
func (c *Config) Validate() error {
	if tz := c.Dashboard.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid DASHBOARD_TIMEZONE %q: %w", tz, err)
		}
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled:   v.GetBool("AUTH_ENABLED"),
		JWTSecret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	multiplier := v.GetFloat64("UPSTREAM_BACKOFF_MULTIPLIER")
	if multiplier < 1 {
		multiplier = 2
	}
	cfg.Upstream = UpstreamConfig{
		BaseURL:           strings.TrimSpace(v.GetString("UPSTREAM_BASE_URL")),
		Timeout:           parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 20*time.Second),
		PingAttempts:      positiveOr(v.GetInt("UPSTREAM_PING_ATTEMPTS"), 2),
		FetchAttempts:     positiveOr(v.GetInt("UPSTREAM_FETCH_ATTEMPTS"), 3),
		BackoffBase:       parseDuration(v.GetString("UPSTREAM_BACKOFF_BASE"), 600*time.Millisecond),
		BackoffMultiplier: multiplier,
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL:        parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		RefreshInterval: parseDuration(v.GetString("DASHBOARD_REFRESH_INTERVAL"), 0),
		DefaultPageSize: positiveOr(v.GetInt("DASHBOARD_DEFAULT_PAGE_SIZE"), 25),
		MaxPageSize:     positiveOr(v.GetInt("DASHBOARD_MAX_PAGE_SIZE"), 500),
		Timezone:        v.GetString("DASHBOARD_TIMEZONE"),
	}

	cfg.Sessions = SessionConfig{
		TTL: parseDuration(v.GetString("SESSION_TTL"), 30*time.Minute),
	}

	cfg.Links = LinksConfig{
		AddCaseForm:  v.GetString("LINK_ADD_CASE_FORM"),
		ResidentView: v.GetString("LINK_RESIDENT_VIEW"),
		FacultyView:  v.GetString("LINK_FACULTY_VIEW"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPSTREAM_BASE_URL", "https://script.google.com/macros/s/AKfycbxWo8oso7UXzam3YoFVNTTLXeARPTus5yoFzI8aGUfy/exec")
	v.SetDefault("UPSTREAM_TIMEOUT", "20s")
	v.SetDefault("UPSTREAM_PING_ATTEMPTS", 2)
	v.SetDefault("UPSTREAM_FETCH_ATTEMPTS", 3)
	v.SetDefault("UPSTREAM_BACKOFF_BASE", "600ms")
	v.SetDefault("UPSTREAM_BACKOFF_MULTIPLIER", 2)

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_REFRESH_INTERVAL", "")
	v.SetDefault("DASHBOARD_DEFAULT_PAGE_SIZE", 25)
	v.SetDefault("DASHBOARD_MAX_PAGE_SIZE", 500)
	v.SetDefault("DASHBOARD_TIMEZONE", "")

	v.SetDefault("SESSION_TTL", "30m")

	v.SetDefault("LINK_ADD_CASE_FORM", "")
	v.SetDefault("LINK_RESIDENT_VIEW", "")
	v.SetDefault("LINK_FACULTY_VIEW", "")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
