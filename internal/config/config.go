// Package config provides application configuration and logging setup.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/redactchat/internal/pangea"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential indicates a required credential env var is unset.
// Startup fails before any other work happens.
var ErrMissingCredential = errors.New("missing required credential")

// DefaultUserInputRules are the redaction rules applied to user input
// when neither the config file nor flags say otherwise. Model replies
// get no rules by default.
var DefaultUserInputRules = []string{"US_SSN", "IP_ADDRESS", "EMAIL_ADDRESS", "PHONE_NUMBER"}

const defaultModel = "gpt-3.5-turbo"

// Config holds all configuration values.
type Config struct {
	// Completion service
	OpenAIAPIKey string
	Model        string

	// Pangea platform
	PangeaToken  string
	PangeaDomain string

	// Redaction rule defaults; subcommand flags override these.
	UserInputRules []string
	ReplyRules     []string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the optional YAML overlay read from REDACTCHAT_CONFIG or
// ~/.config/redactchat/config.yaml.
type fileConfig struct {
	Model          string   `yaml:"model"`
	PangeaDomain   string   `yaml:"pangea_domain"`
	LogFile        string   `yaml:"log_file"`
	LogLevel       string   `yaml:"log_level"`
	UserInputRules []string `yaml:"user_input_redact_rules"`
	ReplyRules     []string `yaml:"gpt_redact_rules"`
}

// Load reads configuration from the optional YAML file and the
// environment. Env vars win over the file, the file wins over built-in
// defaults. Both credentials are required.
func Load() (Config, error) {
	file, err := readFileConfig()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Model:          firstOf(os.Getenv("REDACTCHAT_MODEL"), file.Model, defaultModel),
		PangeaDomain:   firstOf(os.Getenv("PANGEA_DOMAIN"), file.PangeaDomain, pangea.DefaultDomain),
		UserInputRules: DefaultUserInputRules,
		LogFile:        firstOf(os.Getenv("REDACTCHAT_LOG_FILE"), file.LogFile, filepath.Join(os.TempDir(), "redactchat.log")),
		LogLevel:       parseLogLevel(firstOf(os.Getenv("REDACTCHAT_LOG_LEVEL"), file.LogLevel, "INFO")),
	}
	if len(file.UserInputRules) > 0 {
		cfg.UserInputRules = file.UserInputRules
	}
	if len(file.ReplyRules) > 0 {
		cfg.ReplyRules = file.ReplyRules
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingCredential)
	}
	cfg.PangeaToken = os.Getenv("PANGEA_TOKEN")
	if cfg.PangeaToken == "" {
		return Config{}, fmt.Errorf("%w: PANGEA_TOKEN", ErrMissingCredential)
	}

	return cfg, nil
}

// readFileConfig loads the YAML overlay. An explicitly named file must
// exist; the default location is optional.
func readFileConfig() (fileConfig, error) {
	path := os.Getenv("REDACTCHAT_CONFIG")
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return fileConfig{}, nil
		}
		path = filepath.Join(home, ".config", "redactchat", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
