// Package config loads service settings from an optional YAML or TOML file, a
// .env file and the process environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string `yaml:"env"`
	Port           string `yaml:"port"`
	OwnerPrincipal string `yaml:"owner_principal"`
	LedgerStore    string `yaml:"ledger_store"`
	AuditCron      string `yaml:"audit_cron"`
	AdminUsername  string `yaml:"admin_username"`
	AdminPassword  string `yaml:"admin_password"`
}

// fileEnv maps config file keys onto the environment variables they seed.
var fileEnv = map[string]string{
	"env":             "ENV",
	"port":            "PORT",
	"owner_principal": "OWNER_PRINCIPAL",
	"ledger_store":    "LEDGER_STORE",
	"audit_cron":      "AUDIT_CRON",
	"admin_username":  "ADMIN_USERNAME",
	"admin_password":  "ADMIN_PASSWORD",
	"db_driver":       "DB_DRIVER",
	"db_host":         "DB_HOST",
	"db_port":         "DB_PORT",
	"db_user":         "DB_USER",
	"db_name":         "DB_NAME",
	"db_sqlite_path":  "DB_SQLITE_PATH",
	"redis_addr":      "REDIS_ADDR",
	"audit_s3_bucket": "AUDIT_S3_BUCKET",
	"cors_origins":    "CORS_ALLOWED_ORIGINS",
}

var requiredEnvVars = []string{"OWNER_PRINCIPAL", "JWT_SECRET"}

// Load fills the environment from .env and then CONFIG_FILE (YAML, or TOML for
// a .toml file) without overwriting variables that are already set, then reads
// the result.
func Load() (*Config, error) {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		setMissing(envMap)
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path); err != nil {
			return nil, err
		}
	}

	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			return nil, fmt.Errorf("required environment variable %s is not set", envVar)
		}
	}

	cfg := &Config{
		Env:            strings.ToLower(getenv("ENV", "development")),
		Port:           getenv("PORT", "8080"),
		OwnerPrincipal: getenv("OWNER_PRINCIPAL", ""),
		LedgerStore:    strings.ToLower(getenv("LEDGER_STORE", "database")),
		AuditCron:      getenv("AUDIT_CRON", ""),
		AdminUsername:  getenv("ADMIN_USERNAME", ""),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.LedgerStore != "database" && cfg.LedgerStore != "memory" {
		return nil, fmt.Errorf("LEDGER_STORE must be database or memory, got %q", cfg.LedgerStore)
	}
	return cfg, nil
}

func (c *Config) Development() bool {
	return c.Env == "development"
}

func loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	raw := map[string]interface{}{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		envKey, ok := fileEnv[k]
		if !ok {
			return fmt.Errorf("config parse failed (%s): unknown key %q", path, k)
		}
		switch t := v.(type) {
		case []interface{}:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprint(p))
			}
			values[envKey] = strings.Join(parts, ",")
		default:
			values[envKey] = fmt.Sprint(t)
		}
	}
	setMissing(values)
	return nil
}

func setMissing(values map[string]string) {
	for k, v := range values {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}
