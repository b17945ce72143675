package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported user store backends.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	envProduction = "production"
)

// Config is loaded once at startup and handed to every component that needs it.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	JWTSecret string
	JWTTTL    time.Duration

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string

	Images ImagesConfig

	CORSAllowedOrigins []string
}

// ImagesConfig describes the S3-compatible bucket holding profile pictures.
type ImagesConfig struct {
	Region        string
	Endpoint      string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	MaxBytes      int64
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == envProduction
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 7*24*time.Hour)
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "auth")
	v.SetDefault("sqlite.path", "app.db")
	v.SetDefault("images.region", "us-east-1")
	v.SetDefault("images.endpoint", "")
	v.SetDefault("images.bucket", "")
	v.SetDefault("images.access_key", "")
	v.SetDefault("images.secret_key", "")
	v.SetDefault("images.public_base_url", "")
	v.SetDefault("images.max_bytes", 5<<20)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173")
}

// Load reads .env, then configs/config.yml from the given search paths, then
// environment variables (JWT_SECRET overrides jwt.secret and so on).
// A missing config file is not an error; an invalid configuration is.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:          v.GetString("port"),
		Env:           strings.ToLower(v.GetString("app.env")),
		LogLevel:      v.GetString("log.level"),
		JWTSecret:     v.GetString("jwt.secret"),
		JWTTTL:        v.GetDuration("jwt.ttl"),
		StoreDriver:   strings.ToLower(v.GetString("store.driver")),
		MongoURI:      v.GetString("mongo.uri"),
		MongoDatabase: v.GetString("mongo.database"),
		SQLitePath:    v.GetString("sqlite.path"),
		Images: ImagesConfig{
			Region:        v.GetString("images.region"),
			Endpoint:      v.GetString("images.endpoint"),
			Bucket:        v.GetString("images.bucket"),
			AccessKey:     v.GetString("images.access_key"),
			SecretKey:     v.GetString("images.secret_key"),
			PublicBaseURL: strings.TrimRight(v.GetString("images.public_base_url"), "/"),
			MaxBytes:      v.GetInt64("images.max_bytes"),
		},
		CORSAllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt.secret (JWT_SECRET) is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive, got %s", c.JWTTTL)
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("mongo.uri (MONGO_URI) is required for the mongo store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.StoreDriver)
	}
	if c.Images.Bucket == "" {
		return errors.New("images.bucket (IMAGES_BUCKET) is required")
	}
	if c.Images.MaxBytes <= 0 {
		return fmt.Errorf("images.max_bytes must be positive, got %d", c.Images.MaxBytes)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
