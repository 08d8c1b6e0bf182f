// Package config loads runtime settings from an optional TOML file and the
// process environment. Environment variables always win over the file.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultPort     = 8080
	defaultTokenTTL = 12 * time.Hour
)

// Config is the full runtime configuration.
type Config struct {
	Port     int            `toml:"port"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Blob     BlobConfig     `toml:"blob"`
	CORS     CORSConfig     `toml:"cors"`
}

type DatabaseConfig struct {
	Host         string `toml:"host"`
	Port         string `toml:"port"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	SSLMode      string `toml:"sslmode"`
	LogLevel     string `toml:"log_level"` // silent, error, warn or info
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DSN renders the connection string understood by the gorm postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.Username, d.Password, d.Database, d.Port, d.SSLMode)
}

type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"-"`
	TTL       string        `toml:"token_ttl"`
}

// BlobConfig selects the blob store driver. This uses a tagged union pattern:
// the Driver field determines which other fields are relevant.
type BlobConfig struct {
	Driver        string `toml:"driver"` // "memory" (default) or "s3"
	PublicBaseURL string `toml:"public_base_url"`

	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3PathStyle bool   `toml:"s3_path_style,omitempty"`
	// Static credentials; when empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port: defaultPort,
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			SSLMode:      "disable",
			LogLevel:     "warn",
			MaxOpenConns: 100,
			MaxIdleConns: 10,
		},
		Auth: AuthConfig{TokenTTL: defaultTokenTTL},
		Blob: BlobConfig{Driver: "memory"},
		CORS: CORSConfig{AllowedOrigins: []string{"https://*", "http://*"}},
	}
}

// Read decodes TOML from r on top of the defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.parseTTL(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load builds the configuration: defaults, then the TOML file named by
// SAFETY_CONFIG_FILE (if any), then environment overrides.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("SAFETY_CONFIG_FILE"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()
		cfg, err = Read(f)
		if err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the API server cannot run without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("SAFETY_JWT_SECRET is required")
	}
	switch c.Blob.Driver {
	case "memory":
	case "s3":
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("SAFETY_BLOB_S3_BUCKET required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	return nil
}

func (c *Config) parseTTL() error {
	if c.Auth.TTL == "" {
		return nil
	}
	d, err := time.ParseDuration(c.Auth.TTL)
	if err != nil {
		return fmt.Errorf("invalid token ttl %q: %w", c.Auth.TTL, err)
	}
	c.Auth.TokenTTL = d
	return nil
}

func (c *Config) applyEnv() error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Printf("Warning: Invalid PORT environment variable '%s'. Using default %d. Error: %v", portStr, defaultPort, err)
			port = defaultPort
		}
		c.Port = port
	}

	setString(&c.Database.Host, "SAFETY_DB_HOST")
	setString(&c.Database.Port, "SAFETY_DB_PORT")
	setString(&c.Database.Username, "SAFETY_DB_USERNAME")
	setString(&c.Database.Password, "SAFETY_DB_PASSWORD")
	setString(&c.Database.Database, "SAFETY_DB_DATABASE")
	setString(&c.Database.SSLMode, "SAFETY_DB_SSLMODE")
	setString(&c.Database.LogLevel, "SAFETY_DB_LOG_LEVEL")

	setString(&c.Auth.JWTSecret, "SAFETY_JWT_SECRET")
	if setString(&c.Auth.TTL, "SAFETY_TOKEN_TTL") {
		if err := c.parseTTL(); err != nil {
			return err
		}
	}

	setString(&c.Blob.Driver, "SAFETY_BLOB_DRIVER")
	setString(&c.Blob.PublicBaseURL, "SAFETY_BLOB_PUBLIC_BASE_URL")
	setString(&c.Blob.S3Bucket, "SAFETY_BLOB_S3_BUCKET")
	setString(&c.Blob.S3Region, "SAFETY_BLOB_S3_REGION")
	setString(&c.Blob.S3Endpoint, "SAFETY_BLOB_S3_ENDPOINT")
	setString(&c.Blob.S3AccessKeyID, "SAFETY_BLOB_S3_ACCESS_KEY_ID")
	setString(&c.Blob.S3SecretAccessKey, "SAFETY_BLOB_S3_SECRET_ACCESS_KEY")
	if v := os.Getenv("SAFETY_BLOB_S3_PATH_STYLE"); v != "" {
		c.Blob.S3PathStyle = strings.EqualFold(v, "true")
	}

	if v := os.Getenv("SAFETY_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

func setString(dst *string, key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return false
	}
	*dst = v
	return true
}
