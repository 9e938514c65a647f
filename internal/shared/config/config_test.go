package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/coinflip-platform/internal/shared/config"
	ctopics "github.com/radieske/coinflip-platform/pkg/contracts/topics"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "coinflip-server", cfg.ServiceName)
	assert.Equal(t, "9095", cfg.MetricsPort)
	assert.Equal(t, ctopics.MatchEvents, cfg.TopicMatchEvents)
	assert.Equal(t, ctopics.ResultsBroadcast, cfg.RedisResultsChannel)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("METRICS_PORT", "9200")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KAFKA_TOPIC_MATCH_EVENTS", "coinflip.matches")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "9200", cfg.MetricsPort)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "k1:9092,k2:9092", cfg.KafkaBrokers)
	assert.Equal(t, "coinflip.matches", cfg.TopicMatchEvents)
}
