package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         int
	MasterSecret string
	GinMode      string
	TLSCertFile  string
	TLSKeyFile   string
	TokenExpiry  time.Duration

	LogLevel  string
	LogFormat string

	// LoginRateLimit is the number of login attempts allowed per client IP per minute.
	LoginRateLimit int

	Storage Storage
}

// Storage selects and configures the snapshot backend.
type Storage struct {
	Driver string

	DataFile    string
	SQLitePath  string
	PostgresDSN string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Key       string
	S3PathStyle bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverRedis    = "redis"
)

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// layeredEnv prefers the process environment and falls back to values read
// from a config file.
type layeredEnv struct {
	env  Env
	file map[string]string
}

func (l layeredEnv) Getenv(key string) string {
	if v := l.env.Getenv(key); v != "" {
		return v
	}
	return l.file[key]
}

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

// LoadConfigFromEnv reads configuration from env. When CONFIG_FILE is set the
// file supplies defaults that env values override.
func LoadConfigFromEnv(env Env) (Config, error) {
	if path := env.Getenv("CONFIG_FILE"); path != "" {
		values, err := loadFile(path, env)
		if err != nil {
			return Config{}, err
		}
		env = layeredEnv{env: env, file: values}
	}

	cfg := Config{
		Port:           3000,
		GinMode:        "release",
		TokenExpiry:    24 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "text",
		LoginRateLimit: 10,
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT")
		}
		cfg.Port = port
	}

	cfg.MasterSecret = env.Getenv("MASTER_SECRET")
	if cfg.MasterSecret == "" {
		return Config{}, fmt.Errorf("MASTER_SECRET is required")
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")

	if raw := env.Getenv("TOKEN_EXPIRY_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_EXPIRY_SECONDS")
		}
		cfg.TokenExpiry = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = strings.ToLower(raw)
	}
	if raw := env.Getenv("LOG_FORMAT"); raw != "" {
		switch raw {
		case "text", "json":
			cfg.LogFormat = raw
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT %q", raw)
		}
	}

	if raw := env.Getenv("LOGIN_RATE_LIMIT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT")
		}
		cfg.LoginRateLimit = n
	}

	storage, err := loadStorage(env)
	if err != nil {
		return Config{}, err
	}
	cfg.Storage = storage

	return cfg, nil
}

func loadStorage(env Env) (Storage, error) {
	s := Storage{
		Driver:     DriverFile,
		DataFile:   "data/database.json",
		SQLitePath: "data/whatsbot.db",
		S3Region:   "us-east-1",
	}

	if raw := env.Getenv("STORAGE_DRIVER"); raw != "" {
		s.Driver = strings.ToLower(raw)
	}
	switch s.Driver {
	case DriverFile, DriverMemory, DriverSQLite, DriverPostgres, DriverS3, DriverRedis:
	default:
		return Storage{}, fmt.Errorf("invalid STORAGE_DRIVER %q", s.Driver)
	}

	if raw := env.Getenv("DATA_FILE"); raw != "" {
		s.DataFile = raw
	}
	if raw := env.Getenv("SQLITE_PATH"); raw != "" {
		s.SQLitePath = raw
	}
	s.PostgresDSN = env.Getenv("POSTGRES_DSN")

	s.S3Bucket = env.Getenv("S3_BUCKET")
	if raw := env.Getenv("S3_REGION"); raw != "" {
		s.S3Region = raw
	}
	s.S3Endpoint = env.Getenv("S3_ENDPOINT")
	s.S3Key = env.Getenv("S3_KEY")
	if raw := env.Getenv("S3_PATH_STYLE"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Storage{}, fmt.Errorf("invalid S3_PATH_STYLE")
		}
		s.S3PathStyle = v
	}
	if s.Driver == DriverS3 && s.S3Bucket == "" {
		return Storage{}, fmt.Errorf("S3_BUCKET is required for the s3 driver")
	}

	s.RedisAddr = env.Getenv("REDIS_ADDR")
	s.RedisPassword = env.Getenv("REDIS_PASSWORD")
	s.RedisKey = env.Getenv("REDIS_KEY")
	if raw := env.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Storage{}, fmt.Errorf("invalid REDIS_DB")
		}
		s.RedisDB = db
	}
	if s.Driver == DriverRedis && s.RedisAddr == "" {
		s.RedisAddr = "localhost:6379"
	}

	return s, nil
}
