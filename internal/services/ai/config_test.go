// File: internal/services/ai/config_test.go
package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigBoundsTheRequest(t *testing.T) {
	cfg := DefaultConfig()

	// One request is bounded on the order of a minute.
	assert.Equal(t, 60*time.Second, cfg.StreamTimeout)
	assert.Equal(t, 10, cfg.MaxSteps)
}

func TestConfigValidateRejectsMissingKey(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate())

	cfg.APIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}
