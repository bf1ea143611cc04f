package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFiles lists the .env files LoadEnv consults, in order: $PODSEG_ENV,
// the config dir's .env, then ./.env.
func EnvFiles() []string {
	var files []string
	if p := os.Getenv("PODSEG_ENV"); p != "" {
		files = append(files, p)
	}
	files = append(files, filepath.Join(ConfigDir(), ".env"), ".env")
	return files
}

// LoadEnv loads every existing file from EnvFiles. Variables already set in
// the environment win, and earlier files win over later ones. Returns the
// files that were loaded.
func LoadEnv() []string {
	var loaded []string
	for _, f := range EnvFiles() {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}
