package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyAIKeyFallbacks()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("RESUMESCREEN_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}
}

// applyAIKeyFallbacks accepts the provider-conventional variable names
func (c *Config) applyAIKeyFallbacks() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.OpenRouter.APIKey == "" {
		c.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func maskedState(value string) string {
	if value != "" {
		return "***CONFIGURED***"
	}
	return "***NOT SET***"
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMESCREEN_AI_APIKEY",
		"RESUMESCREEN_AI_PROVIDER",
		"RESUMESCREEN_AI_MODEL",
		"RESUMESCREEN_OPENROUTER_APIKEY",
		"RESUMESCREEN_SCREENING_DEFAULTMODE",
		"RESUMESCREEN_SERVER_PORT",
		"RESUMESCREEN_SERVER_HOST",
		"RESUMESCREEN_APP_LOGLEVEL",
		"RESUMESCREEN_VAULT_ENABLED",
		"RESUMESCREEN_DATABASE_DSN",
		"GEMINI_API_KEY",
		"OPENROUTER_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			lower := strings.ToLower(envVar)
			if strings.Contains(lower, "key") || strings.Contains(lower, "dsn") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	log.Printf("[CONFIG] AI API Key: %s", maskedState(c.AI.APIKey))
	log.Printf("[CONFIG] OpenRouter API Key: %s", maskedState(c.OpenRouter.APIKey))
	log.Printf("[CONFIG] Screening Mode: %s (batch cooldown %s)", c.Screening.DefaultMode, c.Screening.BatchCooldown)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Database Enabled: %t", c.Database.Enabled)
	log.Printf("[CONFIG] Webhook Events: %t", c.Events.WebhookURL != "")
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] === Operation-Specific AI Configurations ===")
	for _, op := range Operations {
		section := c.operationSection(op)
		log.Printf("[CONFIG] %s - Provider: %s, Model: %s", op, section.Provider, section.Model)
	}

	log.Println("[CONFIG] =====================================")
}
