package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	QueryPolicyReadOnly     = "read_only"
	QueryPolicyUnrestricted = "unrestricted"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Query         QueryConfig
	AI            AIConfig
	Seed          SeedConfig
	Archive       ArchiveConfig
	ObjectStore   ObjectStoreConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type QueryConfig struct {
	Policy   string
	RowLimit int
}

type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type SeedConfig struct {
	Users    int
	Posts    int
	Comments int
	Random   int64
}

type ArchiveConfig struct {
	Enabled bool
	Prefix  string
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	APIKey string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("TALKDB_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid TALKDB_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	steps := []func() error{
		func() error { return applyString(lookup, "TALKDB_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "TALKDB_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "TALKDB_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "TALKDB_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "TALKDB_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applyString(lookup, "TALKDB_DB_DRIVER", &cfg.Database.Driver) },
		func() error { return applyString(lookup, "TALKDB_DB_DSN", &cfg.Database.DSN) },
		func() error { return applyString(lookup, "TALKDB_QUERY_POLICY", &cfg.Query.Policy) },
		func() error { return applyInt(lookup, "TALKDB_QUERY_ROW_LIMIT", &cfg.Query.RowLimit) },
		func() error { return applyString(lookup, "TALKDB_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyNonBlankString(lookup, "GEMINI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyNonBlankString(lookup, "TALKDB_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "TALKDB_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "TALKDB_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyDuration(lookup, "TALKDB_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyInt(lookup, "TALKDB_SEED_USERS", &cfg.Seed.Users) },
		func() error { return applyInt(lookup, "TALKDB_SEED_POSTS", &cfg.Seed.Posts) },
		func() error { return applyInt(lookup, "TALKDB_SEED_COMMENTS", &cfg.Seed.Comments) },
		func() error { return applyInt64(lookup, "TALKDB_SEED_RANDOM", &cfg.Seed.Random) },
		func() error { return applyBool(lookup, "TALKDB_ARCHIVE_ENABLED", &cfg.Archive.Enabled) },
		func() error { return applyString(lookup, "TALKDB_ARCHIVE_PREFIX", &cfg.Archive.Prefix) },
		func() error { return applyString(lookup, "TALKDB_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "TALKDB_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "TALKDB_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error {
			return applyString(lookup, "TALKDB_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID)
		},
		func() error {
			return applyString(lookup, "TALKDB_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
		},
		func() error { return applyBool(lookup, "TALKDB_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "TALKDB_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error {
			return applyBool(lookup, "TALKDB_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket)
		},
		func() error { return applyBool(lookup, "TALKDB_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "TALKDB_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyString(lookup, "TALKDB_AUTH_API_KEY", &cfg.Auth.APIKey) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Config{}, err
		}
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Query.Policy = strings.ToLower(cfg.Query.Policy)

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	switch cfg.Database.Driver {
	case "sqlite", "duckdb", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid TALKDB_DB_DRIVER: %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return Config{}, fmt.Errorf("TALKDB_DB_DSN is required")
	}
	switch cfg.Query.Policy {
	case QueryPolicyReadOnly, QueryPolicyUnrestricted:
	default:
		return Config{}, fmt.Errorf("invalid TALKDB_QUERY_POLICY: %q", cfg.Query.Policy)
	}
	if cfg.Query.RowLimit < 0 {
		return Config{}, fmt.Errorf("TALKDB_QUERY_ROW_LIMIT must be >= 0")
	}
	if cfg.Seed.Users < 0 || cfg.Seed.Posts < 0 || cfg.Seed.Comments < 0 {
		return Config{}, fmt.Errorf("seed counts must be >= 0")
	}
	if math.IsNaN(cfg.AI.Temperature) || cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return Config{}, fmt.Errorf("TALKDB_AI_TEMPERATURE must be within [0, 2]")
	}
	if cfg.Archive.Enabled && cfg.ObjectStore.Bucket == "" {
		return Config{}, fmt.Errorf("TALKDB_OBJECTSTORE_BUCKET is required when archive is enabled")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "talkdb-api"},
		HTTP: HTTPConfig{
			Address:      ":8501",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "test.db",
		},
		Query: QueryConfig{
			Policy:   QueryPolicyReadOnly,
			RowLimit: 0,
		},
		AI: AIConfig{
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/",
			Model:       "gemini-2.5-flash",
			Temperature: 0,
			Timeout:     60 * time.Second,
		},
		Seed: SeedConfig{
			Users:    50,
			Posts:    50,
			Comments: 50,
			Random:   time.Now().UTC().UnixNano(),
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Prefix:  "fixtures",
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "talkdb",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			AutoCreateBucket: true,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  false,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18501"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Observability.LogJSON = true
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

// applyNonBlankString leaves dst untouched when key is unset or blank, so an
// empty export cannot mask a fallback key.
func applyNonBlankString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
