/*
Package configs is responsible for loading and parsing the application's configuration.

Settings come from environment variables, optionally seeded from a local .env
file. The relay needs very little: the environment name, the listening port,
the static asset directory, and the CORS/WebSocket origin allow-list.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPort is the listening port used when PORT is not set.
const DefaultPort = 3000

// AppConfig contains all configuration parameters required to run the relay.
type AppConfig struct {
	// Environment is the running environment name ("development" or "production").
	Environment string

	// Port is the TCP port the HTTP server binds to.
	Port int

	// PublicDir is the directory of static web assets served at the root path.
	PublicDir string

	// AllowedOrigins lists the origins accepted for CORS and WebSocket upgrades.
	// Ignored in development, where any origin is accepted.
	AllowedOrigins []string
}

// LoadConfig reads the application configuration from environment variables,
// applying defaults and validating values. A .env file in the working
// directory is loaded first when present; a missing file is not an error.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = strconv.Itoa(DefaultPort)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// PublicDir
	cfg.PublicDir = os.Getenv("PUBLIC_DIR")
	if cfg.PublicDir == "" {
		cfg.PublicDir = "./public"
	}

	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	return cfg, nil
}
