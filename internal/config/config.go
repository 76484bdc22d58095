package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the facility-level deployment configuration. It holds
// defaults that apply across every run of the roster engine; the per-month
// settings table (monthly holiday quota, pre-assignments, ...) is data, not
// deployment config, and is resolved separately by pkg/settings.
type Config struct {
	// OutputDir is where shift_result_YYYYMM.csv and
	// diagnostic_report_YYYYMM.json are written.
	OutputDir string `yaml:"outputDir" validate:"required"`

	// WebhookURL receives the importShiftResult notification on success.
	WebhookURL string `yaml:"webhookUrl,omitempty" validate:"omitempty,url"`

	// WebhookToken is sent as the "token" field of the notification body.
	WebhookToken string `yaml:"webhookToken,omitempty"`

	// SolverTimeLimit overrides the per-group solver wall-clock budget
	// (default 60s).
	SolverTimeLimit time.Duration `yaml:"solverTimeLimit,omitempty"`

	// SolverWorkers overrides the CP-SAT search worker count (default 4).
	SolverWorkers int `yaml:"solverWorkers,omitempty" validate:"omitempty,min=1"`

	// PartialOutputEnabled allows a run to emit a roster for the groups that
	// solved even when other groups fail.
	PartialOutputEnabled bool `yaml:"partialOutputEnabled"`

	// HardPinTopPriority switches handling of priority-1 holiday requests
	// from soft (default) to a hard pin.
	HardPinTopPriority bool `yaml:"hardPinTopPriority"`

	// AuditDatabaseURL is the pgx connection string for the run-history
	// audit store. Empty disables audit persistence.
	AuditDatabaseURL string `yaml:"auditDatabaseUrl,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration with an environment
// suffix, e.g. env="prod" looks for "shift_engine_config.prod.yaml".
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.SolverTimeLimit == 0 {
		cfg.SolverTimeLimit = 60 * time.Second
	}
	if cfg.SolverWorkers == 0 {
		cfg.SolverWorkers = 4
	}
}

// Validate validates the configuration struct.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// findConfigFile searches for config file in current directory and home
// directory. If env is provided, it adds it as an extension.
func findConfigFile(env string) (string, error) {
	configFileName := "shift_engine_config.yaml"
	if env != "" {
		configFileName = "shift_engine_config." + env + ".yaml"
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
