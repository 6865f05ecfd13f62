package config

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Broker    BrokerConfig    `mapstructure:"broker"`
}

type ServerConfig struct {
	Port                int `mapstructure:"port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AWSConfig struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	AccountID       string `mapstructure:"account_id"`
}

// TemplatesConfig locates the rendering templates in blob storage and
// controls how long compiled templates stay cached in-process.
type TemplatesConfig struct {
	Bucket                 string `mapstructure:"bucket"`
	WhatsAppStatusKey      string `mapstructure:"whatsapp_status_key"`
	WhatsAppMessageKey     string `mapstructure:"whatsapp_message_key"`
	MessagingKey           string `mapstructure:"messaging_key"`
	SESKey                 string `mapstructure:"ses_key"`
	CacheExpirationSeconds int    `mapstructure:"cache_expiration_seconds"`
}

// CatalogConfig targets the query catalog that receives partition DDL.
type CatalogConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Database         string `mapstructure:"database"`
	Table            string `mapstructure:"table"`
	EventsBucket     string `mapstructure:"events_bucket"`
	LogBucket        string `mapstructure:"log_bucket"`
	OutputLocation   string `mapstructure:"output_location"`
	WorkGroup        string `mapstructure:"workgroup"`
	QueriesPerMinute int    `mapstructure:"queries_per_minute"`
}

type MetricsConfig struct {
	Namespace         string `mapstructure:"namespace"`
	CloudWatchEnabled bool   `mapstructure:"cloudwatch_enabled"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	GroupID     string   `mapstructure:"group_id"`
	InputTopic  string   `mapstructure:"input_topic"`
	OutputTopic string   `mapstructure:"output_topic"`
	DLQTopic    string   `mapstructure:"dlq_topic"`
}
