package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the current or
// parent directory, if one exists. It returns the file loaded, or "".
// Variables already set in the environment take precedence.
func LoadEnv() (loaded string, err error) {
	once.Do(func() {
		for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
			if _, statErr := os.Stat(envFile); statErr != nil {
				continue
			}
			if err = godotenv.Load(envFile); err == nil {
				loaded = envFile
			}
			return
		}
	})
	return loaded, err
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
