package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("EVENT_BROKER", "")
	t.Setenv("REACTION_CACHE_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, BrokerRedis, cfg.EventBroker)
	assert.Equal(t, 30*time.Second, cfg.ReactionCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.TrustProxyHeaders, "forwarding headers are untrusted by default")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("EVENT_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("REACTION_CACHE_TTL", "45")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/engagement")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 45*time.Second, cfg.ReactionCacheTTL)
	assert.Equal(t, "postgres://u:p@db/engagement", cfg.DatabaseDSN())
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("EVENT_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("EVENT_BROKER", "carrier-pigeon")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseDSN_FromParts(t *testing.T) {
	cfg := &Config{DBHost: "h", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "require"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5433 sslmode=require", cfg.DatabaseDSN())
}
