package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	lifecyclekafka "github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/adapters/messaging/kafka"
)

const (
	defaultReferenceTTL = 24 * time.Hour
	defaultSessionTTL   = 24 * time.Hour
)

// Config carries environment-driven settings for the marketplace processes.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	RedisAddr         string
	// ReferenceTTL bounds how long a payment reference can be settled.
	ReferenceTTL        time.Duration
	KafkaBrokers        []string
	KafkaTopic          string
	PaymentSimulatorURL string
	PublicBaseURL       string
	SessionTTL          time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	port := envDefault("PORT", "8080")
	cfg := Config{
		Port:                port,
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		ReferenceTTL:        defaultReferenceTTL,
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          envDefault("KAFKA_TOPIC", lifecyclekafka.DefaultTopic),
		PaymentSimulatorURL: strings.TrimSpace(os.Getenv("PAYMENT_SIMULATOR_URL")),
		PublicBaseURL:       envDefault("PUBLIC_BASE_URL", "http://localhost:"+port),
		SessionTTL:          defaultSessionTTL,
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric")
	}
	if raw := strings.TrimSpace(os.Getenv("PAYMENT_REFERENCE_TTL_MINUTES")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("PAYMENT_REFERENCE_TTL_MINUTES must be a positive integer")
		}
		cfg.ReferenceTTL = time.Duration(minutes) * time.Minute
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
