// Package config provides environment-driven application configuration.
package config

import "fmt"

// Config holds application configuration.
type Config struct {
	// Server holds HTTP server configuration.
	Server ServerConfig
	// Logger holds logger configuration.
	Logger LoggerConfig
	// Workflow holds workflow engine client configuration.
	Workflow WorkflowConfig
	// Billing holds billing webhook configuration.
	Billing BillingConfig
	// Lifecycle holds review/reply lifecycle tuning.
	Lifecycle LifecycleConfig
	// Scheduler holds background scheduler configuration.
	Scheduler SchedulerConfig
	// Redis holds icon cache configuration.
	Redis RedisConfig
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string
}

// LoadFromEnv loads all configuration from environment variables.
func LoadFromEnv() Config {
	return Config{
		Server:    LoadServerConfigFromEnv(),
		Logger:    LoadLoggerConfigFromEnv(),
		Workflow:  LoadWorkflowConfigFromEnv(),
		Billing:   LoadBillingConfigFromEnv(),
		Lifecycle: LoadLifecycleConfigFromEnv(),
		Scheduler: LoadSchedulerConfigFromEnv(),
		Redis:     LoadRedisConfigFromEnv(),
		GinMode:   GetEnv("GIN_MODE", "release"),
	}
}

// Validate validates all configuration.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := c.Workflow.Validate(); err != nil {
		return fmt.Errorf("workflow config validation failed: %w", err)
	}

	if err := c.Billing.Validate(); err != nil {
		return fmt.Errorf("billing config validation failed: %w", err)
	}

	if err := c.Lifecycle.Validate(); err != nil {
		return fmt.Errorf("lifecycle config validation failed: %w", err)
	}

	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler config validation failed: %w", err)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("invalid GIN_MODE: %s (must be: debug, release, test)", c.GinMode)
	}

	return nil
}
