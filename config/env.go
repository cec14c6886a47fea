package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// UI renderer names accepted in MEETINGMATE_UI.
const (
	UITea     = "tea"
	UIClassic = "classic"
)

// Env holds the file locations and renderer choice taken from the environment.
type Env struct {
	CredentialsFile string
	TokenFile       string
	SettingsFile    string
	LogFile         string
	UI              string
}

// LoadEnv reads MEETINGMATE_* variables. When envFile exists it is loaded
// first; variables already set in the process win.
func LoadEnv(envFile string) (Env, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Env{}, fmt.Errorf("godotenv.Load failed: %w", err)
			}
		}
	}

	env := Env{
		CredentialsFile: getenv("MEETINGMATE_CREDENTIALS", "credentials.json"),
		TokenFile:       getenv("MEETINGMATE_TOKEN", "token.json"),
		SettingsFile:    getenv("MEETINGMATE_SETTINGS", "meetingmate.json"),
		LogFile:         getenv("MEETINGMATE_LOG", "meetingmate.log"),
		UI:              getenv("MEETINGMATE_UI", UITea),
	}
	if env.UI != UITea && env.UI != UIClassic {
		return Env{}, fmt.Errorf("MEETINGMATE_UI must be %q or %q, got %q", UITea, UIClassic, env.UI)
	}
	return env, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
