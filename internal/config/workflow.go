package config

import (
	"fmt"
	"strings"
	"time"
)

// WorkflowConfig holds configuration for the external workflow engine client.
type WorkflowConfig struct {
	// BaseURL is the base URL of the workflow engine webhook endpoints.
	BaseURL string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// LoadWorkflowConfigFromEnv loads workflow client configuration from environment variables.
func LoadWorkflowConfigFromEnv() WorkflowConfig {
	return WorkflowConfig{
		BaseURL: GetEnv("WORKFLOW_BASE_URL", "http://localhost:5678/webhook"),
		Timeout: GetEnvDuration("WORKFLOW_TIMEOUT", 30*time.Second),
	}
}

// Validate validates workflow client configuration.
func (c WorkflowConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL must not be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("BaseURL must start with http:// or https://")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be greater than 0")
	}
	return nil
}
