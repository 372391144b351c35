package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// maxStationDistLimit caps MAX_STATION_DIST. 1000% of a regional network
// already reaches across the globe.
const maxStationDistLimit = 1000

// Config holds all service settings, populated from environment variables.
type Config struct {
	EventFile      string
	InventoryFile  string
	OutputFile     string
	MaxStationDist float64 // percent of the farthest arrival distance

	CatalogDescription string
	CatalogResourceID  string

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	maxDist, err := parseMaxStationDist()
	if err != nil {
		return nil, err
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		EventFile:      os.Getenv("EVENT_FILE"),
		InventoryFile:  os.Getenv("INVENTORY_FILE"),
		OutputFile:     os.Getenv("OUTPUT_FILE"),
		MaxStationDist: maxDist,

		CatalogDescription: sharedcfg.EnvOrDefault("CATALOG_DESCRIPTION", "PST ILocCatalog Modified"),
		CatalogResourceID:  os.Getenv("CATALOG_RESOURCE_ID"),

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "iloc-enriched-events"),

		// HTTP_ADDR set to an empty value disables the server.
		HTTPAddr:        envOrDefaultAllowEmpty("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.EventFile == "" {
		return nil, errors.New("EVENT_FILE is required")
	}
	if cfg.InventoryFile == "" {
		return nil, errors.New("INVENTORY_FILE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// parseMaxStationDist reads MAX_STATION_DIST. Default: 100. Range: 0-1000.
func parseMaxStationDist() (float64, error) {
	s := sharedcfg.EnvOrDefault("MAX_STATION_DIST", "100")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > maxStationDistLimit {
		return 0, fmt.Errorf("invalid MAX_STATION_DIST: must be 0-%d", maxStationDistLimit)
	}
	return v, nil
}

func envOrDefaultAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
