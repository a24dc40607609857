// File: internal/services/chatsvc/config.go
package chatsvc

import (
	"fmt"
	"time"
)

type Config struct {
	// DefaultModel is used when a request does not name one.
	DefaultModel string

	// SystemPrompt is prepended to every completion.
	SystemPrompt string

	// PersistTimeout bounds each post-stream database write.
	PersistTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("default model is required")
	}
	if c.PersistTimeout <= 0 {
		return fmt.Errorf("persist timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		DefaultModel:   "gpt-4o-mini",
		SystemPrompt:   defaultSystemPrompt,
		PersistTimeout: 5 * time.Second,
	}
}

const defaultSystemPrompt = `You are a helpful assistant with access to the user's projects and memories.

Use your tools to remember important information the user shares and to recall it when relevant. Store project-specific facts with createMemory and cross-project facts about the user with createGeneralMemory. Check getCurrentProjectContext at the start of a conversation when a project is attached.

Before deleting anything, ask the user to confirm. Keep answers concise and use markdown formatting.`
