package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keepsake.toml")
	content := `
[server]
addr = ":9090"

[registry]
administrator = "` + admin + `"
contract_recipients = true
contract_identities = ["0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"]

[auth]
jwt_signing_key = "from-file"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("KEEPSAKE_ADDR", ":7070")
	t.Setenv("KEEPSAKE_KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("KEEPSAKE_DATABASE_URL", "postgres://localhost/keepsake")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, admin, cfg.Registry.Administrator)
	assert.True(t, cfg.Registry.ContractRecipients)
	assert.Len(t, cfg.Registry.ContractIdentities, 1)
	assert.Equal(t, "from-file", cfg.Auth.JWTSigningKey)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "keepsake.registry.events", cfg.Kafka.Topic, "defaults survive")
}

func TestValidate(t *testing.T) {
	t.Run("administrator required", func(t *testing.T) {
		cfg := Default()
		cfg.Auth.JWTSigningKey = "k"
		assert.Error(t, cfg.Validate())
	})

	t.Run("signing key required outside dev mode", func(t *testing.T) {
		cfg := Default()
		cfg.Registry.Administrator = admin
		assert.Error(t, cfg.Validate())
	})

	t.Run("dev mode falls back to a dev key", func(t *testing.T) {
		cfg := Default()
		cfg.Registry.Administrator = admin
		cfg.Server.DevMode = true
		require.NoError(t, cfg.Validate())
		assert.NotEmpty(t, cfg.Auth.JWTSigningKey)
	})

	t.Run("relay needs a database", func(t *testing.T) {
		cfg := Default()
		cfg.Registry.Administrator = admin
		cfg.Auth.JWTSigningKey = "k"
		cfg.Kafka.Brokers = []string{"localhost:9092"}
		assert.Error(t, cfg.Validate())
	})
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	cfg := Default()
	lookup := func(key string) (string, bool) {
		if key == "KEEPSAKE_DEV_MODE" {
			return "sometimes", true
		}
		return "", false
	}
	assert.Error(t, cfg.applyEnv(lookup))
}
