package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if cfg.EndpointAddr != ":8080" {
		t.Errorf("unexpected default endpoint: %q", cfg.EndpointAddr)
	}
	if cfg.UploadURLTTL != 5*time.Minute {
		t.Errorf("unexpected default upload TTL: %v", cfg.UploadURLTTL)
	}
	if cfg.DownloadURLTTL != 15*time.Minute {
		t.Errorf("unexpected default download TTL: %v", cfg.DownloadURLTTL)
	}
	if cfg.ChaosDenylistKey == "" {
		t.Errorf("chaos denylist key must have a default")
	}
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env-host/db")
	t.Setenv("UPLOAD_URL_TTL", "2m")
	t.Setenv("REDIS_DB", "3")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	if cfg.DatabaseDSN != "postgres://env-host/db" {
		t.Errorf("env DSN not applied: %q", cfg.DatabaseDSN)
	}
	if cfg.UploadURLTTL != 2*time.Minute {
		t.Errorf("env TTL not applied: %v", cfg.UploadURLTTL)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("env redis db not applied: %d", cfg.RedisDB)
	}
}

func TestParseEnv_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("UPLOAD_URL_TTL", "soon")
	t.Setenv("REDIS_DB", "three")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	if cfg.UploadURLTTL != 5*time.Minute {
		t.Errorf("invalid duration must keep default, got %v", cfg.UploadURLTTL)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("invalid int must keep default, got %d", cfg.RedisDB)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"server", "-a", ":9090", "-t", "10", "-q", "https://sqs.local/queue"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	if cfg.EndpointAddr != ":9090" {
		t.Errorf("flag address not applied: %q", cfg.EndpointAddr)
	}
	if cfg.UploadURLTTL != 10*time.Minute {
		t.Errorf("flag TTL not applied: %v", cfg.UploadURLTTL)
	}
	if cfg.SQSQueueURL != "https://sqs.local/queue" {
		t.Errorf("flag queue URL not applied: %q", cfg.SQSQueueURL)
	}
}
