package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/quizflag/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "quizflag.db" {
		t.Fatalf("expected default database path, got %q", cfg.DatabasePath)
	}
	if cfg.AdminPasswordHash() != nil {
		t.Fatalf("expected no admin hash without a password")
	}
}

func TestLoadConfig_EnvAndPasswordHash(t *testing.T) {
	t.Setenv("QF_ADDR", ":9999")
	t.Setenv("QF_ADMIN_PASSWORD", "hunter2")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("env override ignored, got %q", cfg.Addr)
	}
	if err := bcrypt.CompareHashAndPassword(cfg.AdminPasswordHash(), []byte("hunter2")); err != nil {
		t.Fatalf("admin password hash does not verify: %v", err)
	}
}

func TestLoadConfig_YAMLFileWins(t *testing.T) {
	t.Setenv("QF_ADDR", ":9999")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "addr: \":7070\"\nadmin_path_secret: \"7x9k2m\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("file should win over env, got %q", cfg.Addr)
	}
	if cfg.AdminPathSecret != "7x9k2m" {
		t.Fatalf("admin_path_secret not loaded, got %q", cfg.AdminPathSecret)
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("QF_ENV", "production")
	t.Setenv("QF_ADMIN_PASSWORD", "pw")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for default JWT secret in non-development env")
	}
}

func TestValidate_AllowsDevelopment(t *testing.T) {
	t.Setenv("QF_ENV", "development")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_MissingAdminPassword(t *testing.T) {
	t.Setenv("QF_ENV", "production")
	t.Setenv("QF_JWT_SECRET", "a-strong-secret")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail without an admin password")
	}
}
