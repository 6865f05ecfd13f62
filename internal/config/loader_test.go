package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
server:
  port: 8080
logging:
  level: info
  format: json
aws:
  region: us-east-1
  account_id: "123456789012"
templates:
  bucket: lakehose-templates
  whatsapp_status_key: templates/whatsapp-status.tmpl
  whatsapp_message_key: templates/whatsapp-message.tmpl
  messaging_key: templates/messaging.tmpl
  ses_key: templates/ses.tmpl
catalog:
  enabled: true
  database: messaging_events
  table: events
  events_bucket: lakehose-events
`

func TestLoad(t *testing.T) {
	t.Run("loads a valid config with defaults applied", func(t *testing.T) {
		cfg, err := Load(writeConfigFile(t, validConfig))
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "lakehose-templates", cfg.Templates.Bucket)
		assert.Equal(t, "messaging_events", cfg.Catalog.Database)

		// Defaults.
		assert.Equal(t, 900, cfg.Templates.CacheExpirationSeconds)
		assert.Equal(t, "primary", cfg.Catalog.WorkGroup)
		assert.Equal(t, 30, cfg.Catalog.QueriesPerMinute)
		assert.Equal(t, "FirehoseTransformer", cfg.Metrics.Namespace)
		assert.Equal(t, 30, cfg.Server.ReadTimeoutSeconds)
	})

	t.Run("environment variables override file values", func(t *testing.T) {
		t.Setenv("TEMPLATES_BUCKET", "override-bucket")
		t.Setenv("CACHE_EXPIRATION_SECONDS", "60")
		t.Setenv("ATHENA_DATABASE", "other_db")

		cfg, err := Load(writeConfigFile(t, validConfig))
		require.NoError(t, err)

		assert.Equal(t, "override-bucket", cfg.Templates.Bucket)
		assert.Equal(t, 60, cfg.Templates.CacheExpirationSeconds)
		assert.Equal(t, "other_db", cfg.Catalog.Database)
	})

	t.Run("query output location derives from the log bucket", func(t *testing.T) {
		t.Setenv("LOG_BUCKET", "lakehose-logs")

		cfg, err := Load(writeConfigFile(t, validConfig))
		require.NoError(t, err)

		assert.Equal(t, "s3://lakehose-logs/athena/", cfg.Catalog.OutputLocation)
	})

	t.Run("explicit output location wins over the log bucket", func(t *testing.T) {
		t.Setenv("LOG_BUCKET", "lakehose-logs")
		t.Setenv("ATHENA_OUTPUT_LOCATION", "s3://explicit/results/")

		cfg, err := Load(writeConfigFile(t, validConfig))
		require.NoError(t, err)

		assert.Equal(t, "s3://explicit/results/", cfg.Catalog.OutputLocation)
	})

	t.Run("broker addresses come from a comma separated variable", func(t *testing.T) {
		t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

		cfg, err := Load(writeConfigFile(t, validConfig+`
broker:
  type: kafka
  kafka:
    brokers: ["localhost:9092"]
    group_id: transformer
    input_topic: raw-events
`))
		require.NoError(t, err)

		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.Kafka.Brokers)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid config fails validation", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, `
server:
  port: 8080
templates:
  bucket: ""
`))
		assert.Error(t, err)
	})
}
