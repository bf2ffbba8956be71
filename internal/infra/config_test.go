package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/adforge")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/adforge")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StorageDriver != "filesystem" {
		t.Errorf("StorageDriver = %q, want filesystem", cfg.StorageDriver)
	}
	if cfg.JobMaxAge != 24*time.Hour {
		t.Errorf("JobMaxAge = %v, want 24h", cfg.JobMaxAge)
	}
	if cfg.WorkerPollInterval != 5*time.Second {
		t.Errorf("WorkerPollInterval = %v, want 5s", cfg.WorkerPollInterval)
	}
}

func TestLoadConfigS3RequiresBucket(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/adforge")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when S3 driver has no bucket")
	}
}
