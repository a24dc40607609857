// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// Provider configuration
	APIKey  string
	BaseURL string

	// Model parameters
	Temperature float32
	TopP        float32

	// MaxSteps bounds the tool-calling loop within one completion.
	MaxSteps int

	// StreamTimeout is the wall-clock ceiling on one whole completion,
	// across every step.
	StreamTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("max steps must be at least 1")
	}
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("stream timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Temperature:   0.7,
		TopP:          0.9,
		MaxSteps:      10,
		StreamTimeout: 60 * time.Second,
	}
}
