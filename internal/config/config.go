// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	OpenAI OpenAIConfig
	Vision VisionConfig
	Legacy LegacyConfig
	Import ImportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the recipe database and exported photos.
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// OpenAIConfig holds configuration for the structured-completion endpoint.
type OpenAIConfig struct {
	// APIKey authenticates against the endpoint. Required for import features.
	APIKey string
	// Model names the completion model (default: gpt-4o-mini).
	Model string
	// BaseURL overrides the endpoint base, mainly for tests (default: https://api.openai.com).
	BaseURL string
	// Timeout bounds a single structuring request (default: 60s).
	Timeout time.Duration
}

// VisionConfig holds configuration for the OCR endpoint.
type VisionConfig struct {
	// APIKey authenticates against the OCR endpoint.
	APIKey string
	// BaseURL overrides the endpoint base, mainly for tests (default: https://vision.googleapis.com).
	BaseURL string
	// Timeout bounds a single recognition request (default: 30s).
	Timeout time.Duration
}

// LegacyConfig holds configuration for the one-shot legacy database migration.
type LegacyConfig struct {
	// DatabasePath points at the old CookBook sqlite file.
	DatabasePath string
	// PhotoExportPath is where file-based legacy photos are written (default: {data}/photos).
	PhotoExportPath string
}

// ImportConfig holds import pipeline tuning.
type ImportConfig struct {
	// DoneDelay is how long the "finished" state stays visible before resetting to idle.
	DoneDelay time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for recipe data storage")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	openAIModel := flag.String("openai-model", "", "Structured-completion model (default: gpt-4o-mini)")
	openAIBaseURL := flag.String("openai-base-url", "", "Structured-completion endpoint base URL")
	visionBaseURL := flag.String("vision-base-url", "", "OCR endpoint base URL")

	legacyDBPath := flag.String("legacy-db", "", "Path to the legacy CookBook sqlite database")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getConfigValue("", "OPENAI_API_KEY", ""),
			Model:   getConfigValue(*openAIModel, "OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getConfigValue(*openAIBaseURL, "OPENAI_BASE_URL", "https://api.openai.com"),
		},
		Vision: VisionConfig{
			APIKey:  getConfigValue("", "VISION_API_KEY", ""),
			BaseURL: getConfigValue(*visionBaseURL, "VISION_BASE_URL", "https://vision.googleapis.com"),
		},
		Legacy: LegacyConfig{
			DatabasePath:    getConfigValue(*legacyDBPath, "LEGACY_DB_PATH", ""),
			PhotoExportPath: getConfigValue("", "LEGACY_PHOTO_EXPORT_PATH", ""),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Parse client timeouts.
	openAITimeoutStr := getConfigValue("", "OPENAI_TIMEOUT", "60s")
	openAITimeout, err := time.ParseDuration(openAITimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid openai timeout %q: %w", openAITimeoutStr, err)
	}
	cfg.OpenAI.Timeout = openAITimeout

	visionTimeoutStr := getConfigValue("", "VISION_TIMEOUT", "30s")
	visionTimeout, err := time.ParseDuration(visionTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid vision timeout %q: %w", visionTimeoutStr, err)
	}
	cfg.Vision.Timeout = visionTimeout

	doneDelayStr := getConfigValue("", "IMPORT_DONE_DELAY", "500ms")
	doneDelay, err := time.ParseDuration(doneDelayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid import done delay %q: %w", doneDelayStr, err)
	}
	cfg.Import.DoneDelay = doneDelay

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Photo export path defaults to {data}/photos.
	if err := cfg.expandPhotoExportPath(); err != nil {
		return nil, fmt.Errorf("invalid photo export path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	// OpenAI/Vision keys can be empty - import endpoints report unavailability at call time.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "CookBook", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandPhotoExportPath expands ~ and makes the path absolute.
// Defaults to {data}/photos if not specified.
func (c *Config) expandPhotoExportPath() error {
	defaultPath := filepath.Join(c.Data.BasePath, "photos")

	expanded, err := expandPath(c.Legacy.PhotoExportPath, defaultPath)
	if err != nil {
		return err
	}
	c.Legacy.PhotoExportPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
