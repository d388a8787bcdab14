package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsresume/internal/errors"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

// fakeReader serves canned KVv2 secrets by path
type fakeReader struct {
	secrets map[string]*api.Secret
	err     error
}

func (f *fakeReader) Read(path string) (*api.Secret, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.secrets[path], nil
}

func kv2Secret(data map[string]any, version any) *api.Secret {
	return &api.Secret{Data: map[string]any{
		"data":     data,
		"metadata": map[string]any{"version": version},
	}}
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/test")

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("config token wins over file", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct", TokenFile: "/nonexistent"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})

	t.Run("empty token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("   \n  \n"), 0600))

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestExtractSecretData(t *testing.T) {
	t.Run("kv2 layout", func(t *testing.T) {
		data, err := extractSecretData(kv2Secret(map[string]any{"api_key": "k"}, 1), "p")
		require.NoError(t, err)
		assert.Equal(t, "k", data["api_key"])
	})

	t.Run("kv1 layout rejected", func(t *testing.T) {
		_, err := extractSecretData(&api.Secret{Data: map[string]any{"api_key": "k"}}, "p")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing 'data' field")
	})
}

func TestExtractSecretVersion(t *testing.T) {
	tests := []struct {
		name        string
		secret      *api.Secret
		expected    int64
		errContains string
	}{
		{name: "json number", secret: kv2Secret(nil, float64(3)), expected: 3},
		{name: "string version", secret: kv2Secret(nil, "7"), expected: 7},
		{
			name:        "missing metadata",
			secret:      &api.Secret{Data: map[string]any{"data": map[string]any{}}},
			errContains: "missing 'metadata' field",
		},
		{
			name:        "missing version",
			secret:      &api.Secret{Data: map[string]any{"metadata": map[string]any{}}},
			errContains: "missing 'version' field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := extractSecretVersion(tt.secret, "p")
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, version)
		})
	}
}

func TestGetStringSecret(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*api.Secret{
		"secret/data/gemini": kv2Secret(map[string]any{"api_key": "AIzaSecretValue", "count": 3}, float64(2)),
	}}
	client := &VaultClient{reader: reader, logger: newTestLogger()}

	t.Run("string value", func(t *testing.T) {
		value, err := client.GetStringSecret("secret/data/gemini", "api_key")
		require.NoError(t, err)
		assert.Equal(t, "AIzaSecretValue", value)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := client.GetStringSecret("secret/data/gemini", "other")
		assert.ErrorContains(t, err, "key 'other' not found")
	})

	t.Run("non string value", func(t *testing.T) {
		_, err := client.GetStringSecret("secret/data/gemini", "count")
		assert.ErrorContains(t, err, "is not a string")
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := client.GetStringSecret("secret/data/none", "api_key")
		assert.ErrorContains(t, err, "secret not found")
	})

	t.Run("read failure", func(t *testing.T) {
		failing := &VaultClient{reader: &fakeReader{err: fmt.Errorf("permission denied")}, logger: newTestLogger()}
		_, err := failing.GetStringSecret("secret/data/gemini", "api_key")
		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("nil client", func(t *testing.T) {
		var nilClient *VaultClient
		_, err := nilClient.GetStringSecret("secret/data/gemini", "api_key")
		assert.ErrorContains(t, err, "not initialized")
	})
}

func TestApplyGeminiKey(t *testing.T) {
	reader := &fakeReader{secrets: map[string]*api.Secret{
		"secret/data/gemini": kv2Secret(map[string]any{"api_key": "  vault-key \n"}, float64(1)),
		"secret/data/blank":  kv2Secret(map[string]any{"api_key": "   "}, float64(1)),
	}}
	client := &VaultClient{reader: reader, logger: newTestLogger()}

	t.Run("vault key replaces env key", func(t *testing.T) {
		config := &Config{}
		config.Gemini.API.Key = "env-key"
		config.Vault.Secrets.GeminiKey = "secret/data/gemini"

		require.NoError(t, applyGeminiKey(client, config, newTestLogger()))
		assert.Equal(t, "vault-key", config.Gemini.API.Key)
	})

	t.Run("blank vault key keeps existing", func(t *testing.T) {
		config := &Config{}
		config.Gemini.API.Key = "env-key"
		config.Vault.Secrets.GeminiKey = "secret/data/blank"

		require.NoError(t, applyGeminiKey(client, config, newTestLogger()))
		assert.Equal(t, "env-key", config.Gemini.API.Key)
	})

	t.Run("no path configured", func(t *testing.T) {
		config := &Config{}
		require.NoError(t, applyGeminiKey(client, config, newTestLogger()))
		assert.Empty(t, config.Gemini.API.Key)
	})

	t.Run("missing secret", func(t *testing.T) {
		config := &Config{}
		config.Vault.Secrets.GeminiKey = "secret/data/missing"
		assert.Error(t, applyGeminiKey(client, config, newTestLogger()))
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{}
	config.Gemini.API.Key = "env-key"

	err := ApplyVaultSecrets(config, nil)
	assert.NoError(t, err)
	assert.Equal(t, "env-key", config.Gemini.API.Key)

	client, err := NewVaultClient(VaultConfig{Enabled: false}, nil)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "AIza****alue", maskSecret("AIzaSecretValue"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
