package authcore

import (
	"errors"
	"time"
)

// Config defines the controller configuration.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Service      ServiceConfig
	Verification VerificationConfig
	Splash       SplashConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
SERVICE CONFIG
====================================
*/

// ServiceConfig bounds the collaborator calls. Timeout applies to every
// Service operation except AwaitVerification, which is bound to the
// controller lifetime instead of a fixed deadline.
type ServiceConfig struct {
	Timeout time.Duration
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig controls the deferred signup-verification waiter.
type VerificationConfig struct {
	// MaxWait caps how long a waiter stays alive after signup. Zero means
	// the waiter lives until the controller closes.
	MaxWait time.Duration
}

/*
====================================
SPLASH CONFIG
====================================
*/

// SplashConfig controls the first-run splash gate consumed by Route.
type SplashConfig struct {
	Duration time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

const (
	defaultServiceTimeout = 10 * time.Second
	defaultSplashDuration = 3 * time.Second
	defaultAuditBuffer    = 256
)

func defaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Timeout: defaultServiceTimeout,
		},
		Verification: VerificationConfig{
			MaxWait: 0,
		},
		Splash: SplashConfig{
			Duration: defaultSplashDuration,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: defaultAuditBuffer,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the baseline configuration: 10s service timeout, 3s
// splash, audit and metrics enabled.
func DefaultConfig() Config {
	return defaultConfig()
}

// applyDefaults fills zero-value fields a caller left unset.
func (c *Config) applyDefaults() {
	if c.Service.Timeout == 0 {
		c.Service.Timeout = defaultServiceTimeout
	}
	if c.Audit.Enabled && c.Audit.BufferSize == 0 {
		c.Audit.BufferSize = defaultAuditBuffer
	}
}

// Validate rejects configurations the controller cannot run with.
func (c Config) Validate() error {
	if c.Service.Timeout <= 0 {
		return errors.New("Service.Timeout must be positive")
	}
	if c.Verification.MaxWait < 0 {
		return errors.New("Verification.MaxWait must not be negative")
	}
	if c.Splash.Duration < 0 {
		return errors.New("Splash.Duration must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
