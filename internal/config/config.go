// Package config centralises configuration parsing for the activities service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures runtime configuration values for the activities service.
type Config struct {
	HTTP     HTTPConfig
	Log      LogConfig
	Registry RegistryConfig
	Kafka    KafkaConfig
	Outbox   OutboxConfig
}

// HTTPConfig holds listener and server tunables.
type HTTPConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigin      string
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string
	Format string
}

// RegistryConfig controls how the activity registry is seeded.
type RegistryConfig struct {
	EmailDomain string
	SeedFile    string // empty means the embedded catalogue
}

// KafkaConfig lists brokers for roster events. No brokers means events are only logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// OutboxConfig tunes the in-memory outbox and its dispatcher.
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	BufferSize   int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.address", ":8000")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.cors_origin", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("registry.email_domain", "mergington.edu")
	v.SetDefault("registry.seed_file", "")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "activity_roster_events")
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.batch_size", 25)
	v.SetDefault("outbox.buffer_size", 1024)
}

// NewViper prepares a viper instance with defaults, a .env file when one is
// present, environment overrides (http.address -> HTTP_ADDRESS) and an
// optional YAML config file.
func NewViper(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load reads v into Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Address:         v.GetString("http.address"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			CORSOrigin:      v.GetString("http.cors_origin"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Registry: RegistryConfig{
			EmailDomain: strings.TrimPrefix(strings.TrimSpace(v.GetString("registry.email_domain")), "@"),
			SeedFile:    strings.TrimSpace(v.GetString("registry.seed_file")),
		},
		Kafka: KafkaConfig{
			Brokers: stringList(v.Get("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
		Outbox: OutboxConfig{
			PollInterval: v.GetDuration("outbox.poll_interval"),
			BatchSize:    v.GetInt("outbox.batch_size"),
			BufferSize:   v.GetInt("outbox.buffer_size"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values the service cannot run without.
func (c Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address is required")
	}
	if c.Registry.EmailDomain == "" {
		return errors.New("registry.email_domain is required")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when kafka.brokers is set")
	}
	if c.Outbox.PollInterval <= 0 {
		return errors.New("outbox.poll_interval must be > 0")
	}
	if c.Outbox.BatchSize <= 0 {
		return errors.New("outbox.batch_size must be > 0")
	}
	if c.Outbox.BufferSize <= 0 {
		return errors.New("outbox.buffer_size must be > 0")
	}
	return nil
}

// stringList accepts either a YAML list or a comma separated string.
func stringList(value any) []string {
	switch v := value.(type) {
	case string:
		return splitAndTrim(v)
	case []string:
		return splitAndTrim(strings.Join(v, ","))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return splitAndTrim(strings.Join(parts, ","))
	default:
		return nil
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
