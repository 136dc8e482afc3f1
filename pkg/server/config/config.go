/* Copyright 2025 Tasknest Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultSessionTTL is the default validity window for a session token
	DefaultSessionTTL = 24 * time.Hour
	// DefaultReminderSchedule is the default cron schedule for the reminder job.
	// It fires at midnight UTC every day.
	DefaultReminderSchedule = "0 0 0 * * *"
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrWebURLInvalid is an error for an incomplete configuration with invalid web url
	ErrWebURLInvalid = errors.New("Invalid WebURL")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrDataDirMissing is an error for an incomplete configuration missing the attachment data directory
	ErrDataDirMissing = errors.New("DataDir is empty")
)

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

func getDurationEnv(envKey string, defaultVal time.Duration) time.Duration {
	env := os.Getenv(envKey)
	if env == "" {
		return defaultVal
	}

	seconds, err := strconv.Atoi(env)
	if err != nil {
		return defaultVal
	}

	return time.Duration(seconds) * time.Second
}

// Config is an application configuration
type Config struct {
	AppEnv           string
	WebURL           string
	Port             string
	DBPath           string
	DatabaseURL      string
	DataDir          string
	TierFile         string
	SessionTTL       time.Duration
	ReminderSchedule string
	LogLevel         string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv           string
	Port             string
	WebURL           string
	DBPath           string
	DatabaseURL      string
	DataDir          string
	TierFile         string
	ReminderSchedule string
	LogLevel         string
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
// A .env file in the working directory, if any, is loaded first.
func New(p Params) (Config, error) {
	// Missing .env file is not an error
	godotenv.Load()

	dbPath := getOrEnv(p.DBPath, "DBPath", filepath.Join("data", DefaultDBFilename))

	c := Config{
		AppEnv:           getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:             getOrEnv(p.Port, "PORT", "3001"),
		WebURL:           getOrEnv(p.WebURL, "WebURL", "http://localhost:3001"),
		DBPath:           dbPath,
		DatabaseURL:      getOrEnv(p.DatabaseURL, "DATABASE_URL", ""),
		DataDir:          getOrEnv(p.DataDir, "DataDir", "data"),
		TierFile:         getOrEnv(p.TierFile, "TierFile", ""),
		SessionTTL:       getDurationEnv("SessionTTLSeconds", DefaultSessionTTL),
		ReminderSchedule: getOrEnv(p.ReminderSchedule, "ReminderSchedule", DefaultReminderSchedule),
		LogLevel:         getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

func validate(c Config) error {
	if _, err := url.ParseRequestURI(c.WebURL); err != nil {
		return errors.Wrapf(ErrWebURLInvalid, "'%s'", c.WebURL)
	}
	if c.Port == "" {
		return ErrPortInvalid
	}
	if c.DBPath == "" && c.DatabaseURL == "" {
		return ErrDBMissingPath
	}
	if c.DataDir == "" {
		return ErrDataDirMissing
	}

	return nil
}
