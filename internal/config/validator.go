package config

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateTemplates(cfg.Templates); err != nil {
		errors = append(errors, err)
	}

	if err := validateCatalog(cfg.Catalog); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateTemplates(cfg TemplatesConfig) error {
	if cfg.Bucket == "" {
		return &ValidationError{
			Field:   "templates.bucket",
			Message: "templates bucket is required",
		}
	}

	keys := map[string]string{
		"templates.whatsapp_status_key":  cfg.WhatsAppStatusKey,
		"templates.whatsapp_message_key": cfg.WhatsAppMessageKey,
		"templates.messaging_key":        cfg.MessagingKey,
		"templates.ses_key":              cfg.SESKey,
	}
	for field, value := range keys {
		if value == "" {
			return &ValidationError{
				Field:   field,
				Message: "template object key is required",
			}
		}
	}

	if cfg.CacheExpirationSeconds <= 0 {
		return &ValidationError{
			Field:   "templates.cache_expiration_seconds",
			Message: fmt.Sprintf("cache expiration must be positive, got %d", cfg.CacheExpirationSeconds),
		}
	}

	return nil
}

func validateCatalog(cfg CatalogConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Database == "" {
		return &ValidationError{
			Field:   "catalog.database",
			Message: "catalog database is required when the catalog is enabled",
		}
	}

	if cfg.Table == "" {
		return &ValidationError{
			Field:   "catalog.table",
			Message: "catalog table is required when the catalog is enabled",
		}
	}

	if cfg.EventsBucket == "" {
		return &ValidationError{
			Field:   "catalog.events_bucket",
			Message: "events bucket is required when the catalog is enabled",
		}
	}

	if cfg.QueriesPerMinute <= 0 {
		return &ValidationError{
			Field:   "catalog.queries_per_minute",
			Message: "partition DDL rate must be positive",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type == "" {
		// Broker is optional; without one the service only exposes the
		// HTTP batch endpoint.
		return nil
	}

	if cfg.Type != "kafka" {
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unsupported broker type %q", cfg.Type),
		}
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one broker address is required",
		}
	}

	if cfg.Kafka.InputTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.input_topic",
			Message: "input topic is required",
		}
	}

	return nil
}
