package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	AI       AIConfig       `yaml:"ai"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
}

type AppConfig struct {
	// PublicBaseURL is prepended to relative media paths (menu images)
	// before they are handed to the transport.
	PublicBaseURL string `yaml:"public_base_url"`
	// DirectoryURL is where customers without an active session are pointed.
	DirectoryURL string `yaml:"directory_url"`
	// OperatorContacts receive CRITICAL alerts outside the live dashboard.
	OperatorContacts []string `yaml:"operator_contacts"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	// Addr empty means "run with the in-process session store".
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type AIConfig struct {
	// Providers are tried round-robin; a turn fails over to the next
	// credential when a call errors.
	Providers      []AIProviderConfig `yaml:"providers"`
	RequestTimeout Duration           `yaml:"request_timeout"`
	Temperature    float64            `yaml:"temperature"`
}

// Duration accepts values like "30s" or "2m" in yaml.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type AIProviderConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type WhatsAppConfig struct {
	BaseURL       string `yaml:"base_url"`
	PhoneNumberID string `yaml:"phone_number_id"`
	AccessToken   string `yaml:"access_token"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if cfg.AI.RequestTimeout == 0 {
		cfg.AI.RequestTimeout = Duration(30 * time.Second)
	}
	if len(cfg.AI.Providers) == 0 {
		return nil, fmt.Errorf("at least one ai provider must be configured")
	}

	return &cfg, nil
}
