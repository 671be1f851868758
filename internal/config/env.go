// Package config provides shared configuration utilities: environment
// variables, .env files and file watching.
package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by the binaries.
const (
	EnvSSHHost    = "SSH_HOST"
	EnvSSHPort    = "SSH_PORT"
	EnvSSHHostKey = "SSH_HOST_KEY"
	EnvAPIHost    = "API_HOST"
	EnvAPIPort    = "API_PORT"
	EnvAPIURL     = "SANTA_API_URL"
	EnvTuning     = "SANTA_TUNING"
	EnvLogLevel   = "SANTA_LOG_LEVEL"
	EnvLogFile    = "SANTA_LOG_FILE"
	EnvPlayer     = "SANTA_PLAYER"
)

// LoadDotEnv loads the given .env files (".env" when none are given) into
// the environment without overriding variables that are already set.
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
