package api

import (
	"fmt"
	"os"
	"strings"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                 string
	PostgresDSN          string
	CatalogServiceURL    string
	KafkaBrokers         []string
	OrderAcceptedTopic   string
	OrderDispatchedTopic string
	KafkaGroupID         string
	JWTSecret            string
	JWTIssuer            string
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                 envDefault("PORT", "9002"),
		PostgresDSN:          strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		CatalogServiceURL:    envDefault("CATALOG_SERVICE_URL", "http://localhost:9001"),
		KafkaBrokers:         splitCSV(envDefault("KAFKA_BROKERS", "localhost:9092")),
		OrderAcceptedTopic:   envDefault("ORDER_ACCEPTED_TOPIC", "order-accepted"),
		OrderDispatchedTopic: envDefault("ORDER_DISPATCHED_TOPIC", "order-dispatched"),
		KafkaGroupID:         envDefault("KAFKA_GROUP_ID", "order-service"),
		JWTSecret:            strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:            envDefault("JWT_ISSUER", "bookshop"),
	}
	if cfg.CatalogServiceURL == "" {
		return Config{}, fmt.Errorf("CATALOG_SERVICE_URL must not be empty")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return Config{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.OrderAcceptedTopic == "" || cfg.OrderDispatchedTopic == "" {
		return Config{}, fmt.Errorf("kafka topics must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return Config{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must not be empty")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
