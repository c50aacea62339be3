package config

import (
	"fmt"
	"os"

	"github.com/BearBump/CampusCars/internal/models"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	CampusCars CampusCarsConfig `yaml:"campuscars"`
	Hero       HeroConfig       `yaml:"hero"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnString returns the pgx connection URL.
func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

type KafkaConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	SlideChangedTopicName string `yaml:"slide_changed_topic_name"`
}

// Redis is optional: with an empty host the api keeps its cache in memory
// and rate limits per process.
type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CampusCarsConfig struct {
	GRPCAddr           string `yaml:"grpc_addr"`
	HTTPAddr           string `yaml:"http_addr"`
	WorkerHTTPAddr     string `yaml:"worker_http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`
	CacheTTLSeconds    int    `yaml:"cache_ttl_seconds"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	CORSOrigin         string `yaml:"cors_origin"`
	AssetBaseURL       string `yaml:"asset_base_url"`
	PlaceholderImage   string `yaml:"placeholder_image"`

	// CatalogSource: "static" | "csv" | "feed" | "postgres".
	CatalogSource    string `yaml:"catalog_source"`
	CatalogCSVPath   string `yaml:"catalog_csv_path"`
	CatalogFeedURL   string `yaml:"catalog_feed_url"`
	CatalogFeedToken string `yaml:"catalog_feed_token"`
	RefreshSchedule  string `yaml:"refresh_schedule"`

	Showroom string `yaml:"showroom"`
}

type HeroConfig struct {
	IntervalMs int            `yaml:"interval_ms"`
	Slides     []models.Slide `yaml:"slides"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
