package config

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"strings"

	"resumescreen/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault. Each value is a KVv2
// path of the form "<mount>/<secret>"; the API form "<mount>/data/<secret>"
// is accepted too.
type VaultSecrets struct {
	// APIKeys holds a "keys" field with comma-separated server API keys
	APIKeys       string `mapstructure:"apiKeys"`
	GeminiKey     string `mapstructure:"geminiKey"`     // "api_key" field
	OpenRouterKey string `mapstructure:"openRouterKey"` // "api_key" field
	DatabaseDSN   string `mapstructure:"databaseDSN"`   // "dsn" field
	WebhookSecret string `mapstructure:"webhookSecret"` // "secret" field
}

// VaultClient reads secrets from a KVv2 engine
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient connects to Vault and checks that it is reachable. It
// returns nil without error when Vault is disabled.
func NewVaultClient(ctx context.Context, cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiConfig := api.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().HealthWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", apiConfig.Address, err)
	}
	if health.Sealed {
		return nil, fmt.Errorf("vault at %s is sealed", apiConfig.Address)
	}
	logger.Info("Connected to Vault", "address", apiConfig.Address, "version", health.Version)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(cfg VaultConfig, logger *errors.Logger) (string, error) {
	token := cfg.Token

	if token == "" && cfg.TokenFile != "" {
		tokenBytes, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			logger.LogError(err, "Failed to read Vault token file", "file", cfg.TokenFile)
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// ReadSecret returns the latest version of the secret at path
func (vc *VaultClient) ReadSecret(ctx context.Context, path string) (map[string]any, error) {
	mount, name, err := splitKVPath(path)
	if err != nil {
		return nil, err
	}

	secret, err := vc.client.KVv2(mount).Get(ctx, name)
	if err != nil {
		if stdErrors.Is(err, api.ErrSecretNotFound) {
			return nil, fmt.Errorf("secret not found at path: %s", path)
		}
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}

	version := 0
	if secret.VersionMetadata != nil {
		version = secret.VersionMetadata.Version
	}
	vc.logger.Debug("Read secret from Vault", "path", path, "version", version)
	return secret.Data, nil
}

// splitKVPath separates the engine mount from the secret name
func splitKVPath(path string) (mount, name string, err error) {
	mount, name, ok := strings.Cut(strings.Trim(path, "/"), "/")
	name = strings.TrimPrefix(name, "data/")
	if !ok || mount == "" || name == "" {
		return "", "", fmt.Errorf("invalid vault secret path %q (want <mount>/<secret>)", path)
	}
	return mount, name, nil
}

func stringField(data map[string]any, path, key string) (string, error) {
	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return strValue, nil
}

// maskSecret keeps the first and last four characters of long values
func maskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case value != "":
		return "****"
	default:
		return ""
	}
}

type secretReader interface {
	ReadSecret(ctx context.Context, path string) (map[string]any, error)
}

// ApplyVaultSecrets loads the configured secrets from Vault into cfg
func ApplyVaultSecrets(ctx context.Context, cfg *Config, logger *errors.Logger) error {
	client, err := NewVaultClient(ctx, cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if client == nil {
		return nil
	}
	return applySecrets(ctx, client, cfg, logger)
}

// applySecrets copies each configured secret into cfg. Secrets sharing a
// path are read once.
func applySecrets(ctx context.Context, client secretReader, cfg *Config, logger *errors.Logger) error {
	secrets := cfg.Vault.Secrets

	loaders := []struct {
		name  string
		path  string
		key   string
		apply func(string)
	}{
		{"server API keys", secrets.APIKeys, "keys", func(v string) { cfg.Server.APIKeys = splitAndTrim(v) }},
		{"Gemini API key", secrets.GeminiKey, "api_key", func(v string) { applyGeminiKeyToConfig(cfg, v) }},
		{"OpenRouter API key", secrets.OpenRouterKey, "api_key", func(v string) { cfg.OpenRouter.APIKey = v }},
		{"database DSN", secrets.DatabaseDSN, "dsn", func(v string) { cfg.Database.DSN = v }},
		{"webhook secret", secrets.WebhookSecret, "secret", func(v string) { cfg.Events.WebhookSecret = v }},
	}

	read := make(map[string]map[string]any)
	for _, l := range loaders {
		if l.path == "" {
			continue
		}
		data, ok := read[l.path]
		if !ok {
			var err error
			if data, err = client.ReadSecret(ctx, l.path); err != nil {
				return fmt.Errorf("failed to load %s from vault: %w", l.name, err)
			}
			read[l.path] = data
		}

		value, err := stringField(data, l.path, l.key)
		if err != nil {
			return fmt.Errorf("failed to load %s from vault: %w", l.name, err)
		}
		if value == "" {
			logger.Warn("Empty secret found in Vault", "secret", l.name, "path", l.path)
			continue
		}
		l.apply(value)
		logger.Info("Secret loaded from Vault", "secret", l.name, "masked_value", maskSecret(value))
	}
	return nil
}

// applyGeminiKeyToConfig applies the Gemini API key to every AI operation that has no key of its own
func applyGeminiKeyToConfig(cfg *Config, geminiKey string) {
	cfg.AI.APIKey = geminiKey
	for _, op := range []*OperationAIConfig{&cfg.AI.Analyze, &cfg.AI.Questions, &cfg.AI.Compare, &cfg.AI.ATS} {
		if op.APIKey == "" && op.Provider != ProviderOpenRouter {
			op.APIKey = geminiKey
		}
	}
}
