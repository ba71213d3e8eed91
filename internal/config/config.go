package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port      string `yaml:"port" env:"PORT"`
		Mode      string `yaml:"mode" env:"SERVER_MODE"`
		PublicDir string `yaml:"public_dir" env:"PUBLIC_DIR"`
	} `yaml:"server"`

	Database struct {
		URI    string `yaml:"uri" env:"MONGO_URI"`
		DBName string `yaml:"dbname" env:"MONGO_DB"`
	} `yaml:"database"`

	Telegram struct {
		BotToken string `yaml:"bot_token" env:"BOT_TOKEN"`
		// WebAppURL is the externally reachable base URL opened by the
		// bot's web-app keyboard button.
		WebAppURL string `yaml:"web_app_url" env:"WEB_APP_URL"`
	} `yaml:"telegram"`

	Admin struct {
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
		// PasswordHash is an optional bcrypt hash; when set it takes
		// precedence over the plain password.
		PasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
	} `yaml:"admin"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A .env file is optional; ignore the error when it is absent.
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "3000"
	config.Server.Mode = "development"
	config.Server.PublicDir = "public"

	config.Database.URI = "mongodb://localhost:27017"
	config.Database.DBName = "inscriptions"

	config.Telegram.WebAppURL = "https://ton-projet.onrender.com"

	// The original deployment shipped with this fixed credential; override
	// it in any real environment.
	config.Admin.Password = "Secret123"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Database.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}

	if config.Database.DBName == "" {
		return fmt.Errorf("mongo database name is required")
	}

	if config.Admin.Password == "" && config.Admin.PasswordHash == "" {
		return fmt.Errorf("admin password (or hash) is required")
	}

	return nil
}
