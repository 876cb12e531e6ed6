package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Session storage backends supported by crewctl.
const (
	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
)

// ClientConfig configures the crewctl client installation.
type ClientConfig struct {
	ServerURL      string
	SessionBackend string
	// SessionPath is a directory for the file backend and a database file for sqlite.
	SessionPath           string
	RequestTimeoutSeconds int
	Logger                LoggerConfig
}

// LoadClient reads crewctl settings from the environment.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	backend := getEnv("CREWCTL_SESSION_BACKEND", SessionBackendFile)
	defaultPath := filepath.Join(userConfigDir(), "crewctl")
	if backend == SessionBackendSQLite {
		defaultPath = filepath.Join(defaultPath, "session.db")
	}

	return &ClientConfig{
		ServerURL:             getEnv("CREWCTL_SERVER_URL", "http://127.0.0.1:8080"),
		SessionBackend:        backend,
		SessionPath:           getEnv("CREWCTL_SESSION_PATH", defaultPath),
		RequestTimeoutSeconds: getEnvAsInt("CREWCTL_REQUEST_TIMEOUT_SECONDS", 10),
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Output: "stderr",
		},
	}
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
