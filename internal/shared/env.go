package shared

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads KEY=value pairs from the given .env files into the process environment.
//
// With no paths, ".env" in the working directory is used.
// Variables already set in the environment are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback if it is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}
