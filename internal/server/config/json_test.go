package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseJson_AppliesFileValues(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	content := `{
		"endpoint_addr": ":7070",
		"database_dsn": "postgres://json-host/db",
		"secret_key": "json-secret",
		"upload_url_ttl": "3m",
		"download_url_ttl": "20m",
		"s3_root_user": "ju",
		"s3_root_password": "jp",
		"s3_bucket": "json-bucket",
		"s3_region": "eu-west-1",
		"s3_base_endpoint": "http://minio:9000/",
		"sqs_queue_url": "https://sqs.local/q",
		"redis_addr": "redis:6379",
		"redis_password": "",
		"redis_db": 1,
		"chaos_denylist_key": "chaos:ops",
		"chaos_cache_ttl": "10s"
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	os.Args = []string{"server", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	if cfg.EndpointAddr != ":7070" {
		t.Errorf("endpoint not applied: %q", cfg.EndpointAddr)
	}
	if cfg.UploadURLTTL != 3*time.Minute {
		t.Errorf("upload TTL not applied: %v", cfg.UploadURLTTL)
	}
	if cfg.ChaosCacheTTL != 10*time.Second {
		t.Errorf("chaos cache TTL not applied: %v", cfg.ChaosCacheTTL)
	}
	if cfg.ChaosDenylistKey != "chaos:ops" {
		t.Errorf("denylist key not applied: %q", cfg.ChaosDenylistKey)
	}
}

func TestParseJson_NoFileIsNoop(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"server"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	if cfg.EndpointAddr != ":8080" {
		t.Errorf("defaults must survive when no file is given: %q", cfg.EndpointAddr)
	}
}
