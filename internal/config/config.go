// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/advancepark/parkterm/internal/creds"
)

// defaultAPIURL points at the hosted backend; override for local work.
const defaultAPIURL = "https://advancepackingsystem-backend.onrender.com/api"

// defaultWebURL is the browser dashboard the TUI links out to.
const defaultWebURL = "https://advance-parking-system.vercel.app"

// Config aggregates runtime configuration for the client.
type Config struct {
	API    APIConfig
	Logger LoggerConfig
	Auth   AuthConfig
}

// APIConfig holds the REST and push-channel endpoints, plus the browser
// dashboard the TUI links out to.
type APIConfig struct {
	BaseURL string
	WSURL   string
	WebURL  string
}

// LoggerConfig configures logging behavior. The TUI owns the terminal, so
// logs go to a file.
type LoggerConfig struct {
	Level string
	File  string
}

// AuthConfig defines client-side session parameters.
type AuthConfig struct {
	TokenFile              string
	RefreshIntervalMinutes int
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	tokenFile := os.Getenv("PARKTERM_TOKEN_FILE")
	if tokenFile == "" {
		path, err := creds.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		tokenFile = path
	}

	baseURL := getEnv("PARKTERM_API_URL", defaultAPIURL)

	cfg := &Config{
		API: APIConfig{
			BaseURL: baseURL,
			WSURL:   getEnv("PARKTERM_WS_URL", deriveWSURL(baseURL)),
			WebURL:  getEnv("PARKTERM_WEB_URL", defaultWebURL),
		},
		Logger: LoggerConfig{
			Level: getEnv("PARKTERM_LOG_LEVEL", "info"),
			File:  getEnv("PARKTERM_LOG_FILE", defaultLogFile()),
		},
		Auth: AuthConfig{
			TokenFile:              tokenFile,
			RefreshIntervalMinutes: getEnvAsInt("PARKTERM_REFRESH_INTERVAL_MINUTES", 14),
		},
	}
	return cfg, nil
}

// RefreshInterval returns the proactive token refresh cadence. It is kept
// shorter than the access-token lifetime so tokens never expire mid-request.
func (a AuthConfig) RefreshInterval() time.Duration {
	minutes := a.RefreshIntervalMinutes
	if minutes <= 0 {
		minutes = 14
	}
	return time.Duration(minutes) * time.Minute
}

// deriveWSURL maps the REST base URL onto the push-channel endpoint:
// https://host/api -> wss://host/ws/notifications.
func deriveWSURL(baseURL string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	ws = strings.TrimSuffix(strings.TrimRight(ws, "/"), "/api")
	return ws + "/ws/notifications"
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "parkterm.log"
	}
	return home + "/.parkterm/parkterm.log"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
