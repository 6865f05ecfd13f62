package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"lakehose/internal/constants"
)

func Load(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.read_timeout_seconds", 30)
	viper.SetDefault("server.write_timeout_seconds", 60)
	viper.SetDefault("templates.cache_expiration_seconds", constants.DefaultCacheExpirationSeconds)
	viper.SetDefault("catalog.workgroup", constants.DefaultAthenaWorkGroup)
	viper.SetDefault("catalog.queries_per_minute", constants.DefaultPartitionQueriesPerMin)
	viper.SetDefault("metrics.namespace", constants.MetricsNamespace)
}

// The *_KEY / *_BUCKET names predate this service and are shared with
// the deployment tooling; they stay bound verbatim.
func bindEnvVariables() {
	viper.BindEnv("templates.bucket", "TEMPLATES_BUCKET")
	viper.BindEnv("templates.whatsapp_status_key", "WHATSAPP_STATUS_TEMPLATE_KEY")
	viper.BindEnv("templates.whatsapp_message_key", "WHATSAPP_MESSAGE_TEMPLATE_KEY")
	viper.BindEnv("templates.messaging_key", "MESSAGING_TEMPLATE_KEY")
	viper.BindEnv("templates.ses_key", "SES_TEMPLATE_KEY")
	viper.BindEnv("templates.cache_expiration_seconds", "CACHE_EXPIRATION_SECONDS")

	viper.BindEnv("catalog.database", "ATHENA_DATABASE")
	viper.BindEnv("catalog.table", "ATHENA_EVENTS_TABLE")
	viper.BindEnv("catalog.events_bucket", "EVENTS_BUCKET")
	viper.BindEnv("catalog.output_location", "ATHENA_OUTPUT_LOCATION")
	viper.BindEnv("catalog.log_bucket", "LOG_BUCKET")
	viper.BindEnv("catalog.workgroup", "ATHENA_WORKGROUP")

	viper.BindEnv("aws.region", "AWS_REGION")
	viper.BindEnv("aws.endpoint", "AWS_ENDPOINT")
	viper.BindEnv("aws.account_id", "AWS_ACCOUNT_ID")

	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	viper.BindEnv("broker.kafka.input_topic", "BROKER_KAFKA_INPUT_TOPIC")
	viper.BindEnv("broker.kafka.output_topic", "BROKER_KAFKA_OUTPUT_TOPIC")
	viper.BindEnv("broker.kafka.dlq_topic", "BROKER_KAFKA_DLQ_TOPIC")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	// Deployments configure a log bucket rather than a query output
	// location; derive one unless set explicitly.
	if cfg.Catalog.OutputLocation == "" && cfg.Catalog.LogBucket != "" {
		cfg.Catalog.OutputLocation = fmt.Sprintf("s3://%s/athena/", cfg.Catalog.LogBucket)
	}

	return nil
}
