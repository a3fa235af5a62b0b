package config

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string        `yaml:"addr"`
	JWTSecret       string        `yaml:"jwt_secret"`
	APITimeout      time.Duration `yaml:"timeout"`
	DatabasePath    string        `yaml:"database_path"`
	TokenDuration   time.Duration `yaml:"token_duration"`
	AdminPassword   string        `yaml:"admin_password"`
	AdminPathSecret string        `yaml:"admin_path_secret"`

	// bcrypt hash of AdminPassword, derived once at load time
	adminPasswordHash []byte
}

// LoadConfig builds the configuration from defaults, environment variables
// and an optional YAML file (file wins over env). The admin password is
// hashed once here; handlers only ever see the hash.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("QF_ADDR", ":8080"),
		JWTSecret:       getEnv("QF_JWT_SECRET", "supersecretkey"),
		APITimeout:      15 * time.Second,
		DatabasePath:    getEnv("QF_DATABASE_PATH", "quizflag.db"),
		TokenDuration:   1 * time.Hour,
		AdminPassword:   getEnv("QF_ADMIN_PASSWORD", ""),
		AdminPathSecret: getEnv("QF_ADMIN_PATH_SECRET", ""),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		cfg.adminPasswordHash = hash
	}

	return cfg, nil
}

// AdminPasswordHash returns the bcrypt hash of the configured admin
// password, or nil when none is configured.
func (c *Config) AdminPasswordHash() []byte {
	return c.adminPasswordHash
}

// Validate rejects configurations that are unsafe to run outside the
// development environment (QF_ENV=development).
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}

	env := os.Getenv("QF_ENV")
	if env == "development" {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == "supersecretkey" {
		return fmt.Errorf("jwt_secret must be set to a non-default value outside development")
	}
	if c.AdminPassword == "" {
		return fmt.Errorf("admin_password must be set outside development")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
