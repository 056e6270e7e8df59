package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config es la configuración del proceso. Se carga una sola vez al
// arrancar; el password de admin viaja desde acá hacia el validador de
// formularios como valor inyectado (nada de globals).
type Config struct {
	Env           string `toml:"env"`  // "development" o "production"
	Addr          string `toml:"addr"` // ej ":3000"
	AdminPassword string `toml:"admin_password"`

	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Blob     BlobConfig     `toml:"blob"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug|info|warn|error
	Format string `toml:"format"` // text|json
}

// DatabaseConfig usa el patrón de unión etiquetada: Type decide qué
// campos aplican.
type DatabaseConfig struct {
	Type string `toml:"type"`          // "memory" o "postgres"
	DSN  string `toml:"dsn,omitempty"` // solo para type=postgres
}

// BlobConfig configura el almacén de imágenes.
type BlobConfig struct {
	Type string `toml:"type"` // "memory", "filesystem" o "s3"

	// filesystem
	Root string `toml:"root,omitempty"`

	// s3
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
	S3PathStyle       bool   `toml:"s3_path_style,omitempty"`
}

// Default es la config de desarrollo: todo en memoria, sin archivo.
func Default() *Config {
	return &Config{
		Env:           "development",
		Addr:          ":3000",
		AdminPassword: "changeme",
		Log:           LogConfig{Level: "info", Format: "text"},
		Database:      DatabaseConfig{Type: "memory"},
		Blob:          BlobConfig{Type: "memory"},
	}
}

// Load lee el TOML (si path no está vacío) y aplica overrides de env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decoding %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Database.Type = "postgres"
		c.Database.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("config: database.dsn required for type=postgres")
		}
	default:
		return fmt.Errorf("config: unknown database.type %q", c.Database.Type)
	}

	switch c.Blob.Type {
	case "memory", "filesystem":
	case "s3":
		if strings.TrimSpace(c.Blob.S3Bucket) == "" {
			return fmt.Errorf("config: blob.s3_bucket required for type=s3")
		}
	default:
		return fmt.Errorf("config: unknown blob.type %q", c.Blob.Type)
	}

	if strings.TrimSpace(c.AdminPassword) == "" {
		return fmt.Errorf("config: admin_password must not be empty")
	}
	return nil
}

// Development indica si se muestran diagnósticos en la página de error.
func (c *Config) Development() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}
