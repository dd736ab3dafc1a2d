package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultKafkaBrokers}, cfg.Brokers)
	assert.Equal(t, DefaultProducerCompression, cfg.ProducerCompression)
	assert.Equal(t, int64(DefaultConsumerStartOffset), cfg.ConsumerStartOffset)
	assert.Equal(t, DefaultConsumerGroupID, cfg.ConsumerGroupID)
	assert.Equal(t, DefaultNotificationsDLQTopic, cfg.NotificationsDLQTopic)
	assert.True(t, cfg.EnableMiddleware)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092, kafka-2:9092")
	t.Setenv(EnvKafkaProducerCompression, "zstd")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "2s")
	t.Setenv(EnvKafkaConsumerGroupID, "notifier-eu")
	t.Setenv(EnvKafkaNotificationsDLQTopic, "notifications.eu.dlq")
	t.Setenv(EnvKafkaEnableMiddleware, "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
	assert.Equal(t, 2*time.Second, cfg.ConsumerRetryBackoff)
	assert.Equal(t, "notifier-eu", cfg.ConsumerGroupID)
	assert.Equal(t, "notifications.eu.dlq", cfg.NotificationsDLQTopic)
	assert.False(t, cfg.EnableMiddleware)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaConsumerStartOffset, "5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvKafkaProducerCompression)
	assert.Contains(t, err.Error(), EnvKafkaConsumerStartOffset)
}
