package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		OutputDir:  "/var/roster/out",
		WebhookURL: "https://gas.example.com/webhook",
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{
		OutputDir: "/var/roster/out",
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MissingRequiredField(t *testing.T) {
	cfg := &Config{
		WebhookURL: "https://gas.example.com/webhook",
	}

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestValidate_InvalidWebhookURL(t *testing.T) {
	cfg := &Config{
		OutputDir:  "/var/roster/out",
		WebhookURL: "not-a-url",
	}

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{OutputDir: "/tmp"}
	applyDefaults(cfg)

	assert.Equal(t, 4, cfg.SolverWorkers)
	assert.NotZero(t, cfg.SolverTimeLimit)
}
