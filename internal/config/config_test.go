package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig with no file should fall back to defaults: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Tracking.HistoryLimit != 0 {
		t.Errorf("default history limit = %d, want 0 (unbounded)", cfg.Tracking.HistoryLimit)
	}
	if cfg.Tracking.MinDistanceMeters != 1.0 {
		t.Errorf("default filter threshold = %f, want 1.0", cfg.Tracking.MinDistanceMeters)
	}
	if cfg.Kafka.Enabled {
		t.Error("kafka sink should be disabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v", cfg.Logging)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	fixture := map[string]interface{}{
		"server": map[string]interface{}{
			"host": "127.0.0.1",
			"port": 9090,
		},
		"tracking": map[string]interface{}{
			"history_limit":       500,
			"min_distance_meters": 2.5,
		},
		"routing": map[string]interface{}{
			"osrm_url": "http://osrm.internal:5000",
			"timeout":  "3s",
		},
		"kafka": map[string]interface{}{
			"enabled": true,
			"brokers": "kafka.internal:9092",
			"topic":   "fixes",
		},
		"logging": map[string]interface{}{
			"level":  "debug",
			"format": "text",
		},
	}

	data, err := yaml.Marshal(fixture)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server config = %+v", cfg.Server)
	}
	if cfg.Tracking.HistoryLimit != 500 {
		t.Errorf("history limit = %d, want 500", cfg.Tracking.HistoryLimit)
	}
	if cfg.Tracking.MinDistanceMeters != 2.5 {
		t.Errorf("filter threshold = %f, want 2.5", cfg.Tracking.MinDistanceMeters)
	}
	if cfg.Routing.OSRMURL != "http://osrm.internal:5000" {
		t.Errorf("osrm url = %s", cfg.Routing.OSRMURL)
	}
	if cfg.Routing.Timeout != 3*time.Second {
		t.Errorf("routing timeout = %s, want 3s", cfg.Routing.Timeout)
	}
	if !cfg.Kafka.Enabled || cfg.Kafka.Topic != "fixes" {
		t.Errorf("kafka config = %+v", cfg.Kafka)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %s", cfg.Logging.Level)
	}

	// Keys absent from the file keep their defaults
	if cfg.Geocode.Limit != 5 {
		t.Errorf("geocode limit = %d, want default 5", cfg.Geocode.Limit)
	}
}
