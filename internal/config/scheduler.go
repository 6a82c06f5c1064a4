package config

import (
	"fmt"
	"time"
)

// SchedulerConfig holds configuration for the background sync scheduler.
type SchedulerConfig struct {
	// Enabled toggles the in-process scheduler.
	Enabled bool
	// SyncInterval is how often connected apps are checked for due syncs.
	SyncInterval time.Duration
	// AutoProcessInterval is how often the auto-reply/auto-send sweep runs.
	AutoProcessInterval time.Duration
}

// LoadSchedulerConfigFromEnv loads scheduler configuration from environment variables.
func LoadSchedulerConfigFromEnv() SchedulerConfig {
	return SchedulerConfig{
		Enabled:             GetEnvBool("SCHEDULER_ENABLED", true),
		SyncInterval:        GetEnvDuration("SCHEDULER_SYNC_INTERVAL", 5*time.Minute),
		AutoProcessInterval: GetEnvDuration("SCHEDULER_AUTO_PROCESS_INTERVAL", 10*time.Minute),
	}
}

// Validate validates scheduler configuration.
func (c SchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SyncInterval < time.Minute {
		return fmt.Errorf("SyncInterval must be at least 1 minute")
	}
	if c.AutoProcessInterval < time.Minute {
		return fmt.Errorf("AutoProcessInterval must be at least 1 minute")
	}
	return nil
}
