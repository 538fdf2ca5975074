package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/swiftusd/doctool/internal/logfields"
)

// envFiles are read in order; godotenv never overrides a variable that is already set, so
// the first file to define a key wins and the process environment beats both.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads whichever of envFiles exist in the working directory.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Could not load environment file", logfields.Path(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment file", logfields.Path(name))
	}
}
