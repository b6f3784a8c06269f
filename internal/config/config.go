// Package config loads .env files and the layered application
// configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"fjacquet/sepa-export/internal/logging"
)

// LoadEnv loads environment variables from a .env file in the current
// or parent directory. Variables already set in the environment win.
// It returns the file loaded, or "" when none was found.
func LoadEnv(logger logging.Logger) string {
	for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			logger.Warn("Error loading .env file",
				logging.F(logging.FieldInputFile, envFile),
				logging.F(logging.FieldError, err.Error()))
			return ""
		}
		logger.Debug("Loaded environment variables", logging.F(logging.FieldInputFile, envFile))
		return envFile
	}
	logger.Debug("No .env file found, using environment variables")
	return ""
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
