package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// skillEnvDir is the user-level fallback location for credentials.
const skillEnvDir = ".claude/skills/ppt-generator"

// LoadEnv finds and loads a .env file. Search order:
//  1. the current working directory
//  2. ancestor directories, stopping at a project boundary (a dir with .git)
//  3. ~/.claude/skills/ppt-generator/.env
//
// Returns true if a .env file was loaded. When none is found the process
// environment is used as-is.
func LoadEnv() bool {
	dir, err := os.Getwd()
	if err == nil {
		for {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				if err := godotenv.Overload(envPath); err == nil {
					log.Printf("[config] Loaded environment from %s", envPath)
					return true
				}
			}

			// Stop climbing once we hit the project root.
			if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		envPath := filepath.Join(home, skillEnvDir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Overload(envPath); err == nil {
				log.Printf("[config] Loaded environment from %s", envPath)
				return true
			}
		}
	}

	log.Println("[config] ⚠️  No .env file found, using system environment variables")
	return false
}
