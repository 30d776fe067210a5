package config

import (
	"os"
	"strings"

	"class_info_hub/internal/domain/summary"
)

// GeminiAPIKeyEnv names the credential of the AI backend.
const GeminiAPIKeyEnv = "GEMINI_API_KEY"

// EnvAIConfig reads the AI credential from the environment on every call, so a key
// added or revoked by a redeploy takes effect without a cached startup value.
type EnvAIConfig struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

func NewEnvAIConfig() *EnvAIConfig {
	return &EnvAIConfig{Lookup: os.LookupEnv}
}

// APIKey returns the current credential, or "" when none is set.
func (c *EnvAIConfig) APIKey() string {
	lookup := c.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	key, _ := lookup(GeminiAPIKeyEnv)
	return strings.TrimSpace(key)
}

// AIConfigured implements summary.ConfigProvider.
func (c *EnvAIConfig) AIConfigured() error {
	if c.APIKey() == "" {
		return &summary.ConfigurationError{Message: "AI summaries are not available: " + GeminiAPIKeyEnv + " is not configured"}
	}
	return nil
}
