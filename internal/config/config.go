package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Geocode  GeocodeConfig  `mapstructure:"geocode"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type TrackingConfig struct {
	// HistoryLimit caps the server-side path history. 0 keeps every fix
	// for the lifetime of the process.
	HistoryLimit int `mapstructure:"history_limit"`
	// MinDistanceMeters is the client-side filter threshold: a fix closer
	// than this to the last forwarded fix is dropped.
	MinDistanceMeters float64 `mapstructure:"min_distance_meters"`
}

type RoutingConfig struct {
	OSRMURL string        `mapstructure:"osrm_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeocodeConfig struct {
	URL     string        `mapstructure:"url"`
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("tracking.history_limit", 0)
	v.SetDefault("tracking.min_distance_meters", 1.0)
	v.SetDefault("routing.osrm_url", "http://localhost:5000")
	v.SetDefault("routing.timeout", 10*time.Second)
	v.SetDefault("geocode.url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.limit", 5)
	v.SetDefault("geocode.timeout", 10*time.Second)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "tracker-fixes")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in the configs directory
		configDir := "configs"
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("TRACKER")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error if we have defaults
			fmt.Println("Config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func GetConfigPath() string {
	// First check for environment variable
	if path := os.Getenv("TRACKER_CONFIG_PATH"); path != "" {
		return path
	}

	// Then check for config in the configs directory
	configPath := filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// Return empty string if no config found
	return ""
}
