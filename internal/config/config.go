/*
 * This file is part of VoceTask (https://github.com/vocetask/vocetask).
 * Copyright (C) 2025 VoceTask Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the VoceTask bot
type Config struct {
	Telegram TelegramConfig
	Todoist  TodoistConfig
	Whisper  WhisperConfig
	Server   ServerConfig
	Logging  LoggingConfig
	NATS     NATSConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	Token string
}

// TodoistConfig holds Todoist REST API configuration
type TodoistConfig struct {
	Token            string
	BaseURL          string
	DefaultProjectID string        // optional; empty means users must pick a project
	Timeout          time.Duration // per-request timeout
	ProjectCacheTTL  time.Duration // how long a fetched project list stays valid
}

// WhisperConfig holds local speech-to-text model configuration
type WhisperConfig struct {
	ModelPath string // path to a ggml model file
	Language  string // transcription language hint, e.g. "it"
	Threads   int    // 0 = number of CPUs
}

// ServerConfig holds the status HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DBPath       string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// NATSConfig holds NATS messaging configuration. An empty URL disables
// event publishing entirely.
type NATSConfig struct {
	URL           string
	Subject       string
	MaxReconnect  int
	ReconnectWait time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Telegram: TelegramConfig{
			Token: getEnvString("TELEGRAM_BOT_TOKEN", getEnvString("VOCETASK_BOT_TOKEN", "")),
		},
		Todoist: TodoistConfig{
			Token:            getEnvString("TODOIST_API_TOKEN", ""),
			BaseURL:          getEnvString("TODOIST_BASE_URL", "https://api.todoist.com/rest/v2"),
			DefaultProjectID: getEnvString("TODOIST_PROJECT_ID", ""),
			Timeout:          getEnvDuration("TODOIST_TIMEOUT", 15*time.Second),
			ProjectCacheTTL:  getEnvDuration("TODOIST_PROJECT_CACHE_TTL", 10*time.Minute),
		},
		Whisper: WhisperConfig{
			ModelPath: getEnvString("WHISPER_MODEL_PATH", "./models/ggml-small.bin"),
			Language:  getEnvString("WHISPER_LANGUAGE", "it"),
			Threads:   getEnvInt("WHISPER_THREADS", 0),
		},
		Server: ServerConfig{
			Host:         getEnvString("VOCETASK_HOST", "0.0.0.0"),
			Port:         getEnvInt("VOCETASK_PORT", 8080),
			ReadTimeout:  getEnvDuration("VOCETASK_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("VOCETASK_WRITE_TIMEOUT", 30*time.Second),
			DBPath:       getEnvString("DB_PATH", "./data/vocetask.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		NATS: NATSConfig{
			URL:           getEnvString("NATS_URL", ""),
			Subject:       getEnvString("NATS_SUBJECT", "vocetask.tasks.created"),
			MaxReconnect:  getEnvInt("NATS_MAX_RECONNECT", 10),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid. Secrets (bot token,
// Todoist token) are checked at startup by the caller so that Load stays
// usable in tests and tooling.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Todoist.BaseURL == "" {
		return fmt.Errorf("todoist base URL must be provided")
	}

	if c.Todoist.Timeout <= 0 {
		return fmt.Errorf("todoist timeout must be positive: %v", c.Todoist.Timeout)
	}

	if c.Todoist.ProjectCacheTTL <= 0 {
		return fmt.Errorf("project cache TTL must be positive: %v", c.Todoist.ProjectCacheTTL)
	}

	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper model path must be provided")
	}

	if c.Whisper.Language == "" {
		return fmt.Errorf("whisper language must be provided")
	}

	if c.Whisper.Threads < 0 {
		return fmt.Errorf("whisper threads must not be negative: %d", c.Whisper.Threads)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
