package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout of CONFIG_FILE. Every field maps to one
// environment key.
type fileConfig struct {
	Server struct {
		Port           int    `yaml:"port" toml:"port"`
		GinMode        string `yaml:"gin_mode" toml:"gin_mode"`
		TLSCertFile    string `yaml:"tls_cert_file" toml:"tls_cert_file"`
		TLSKeyFile     string `yaml:"tls_key_file" toml:"tls_key_file"`
		LoginRateLimit int    `yaml:"login_rate_limit" toml:"login_rate_limit"`
	} `yaml:"server" toml:"server"`

	Auth struct {
		MasterSecret       string `yaml:"master_secret" toml:"master_secret"`
		TokenExpirySeconds int    `yaml:"token_expiry_seconds" toml:"token_expiry_seconds"`
	} `yaml:"auth" toml:"auth"`

	Log struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"`
	} `yaml:"log" toml:"log"`

	Storage struct {
		Driver      string `yaml:"driver" toml:"driver"`
		DataFile    string `yaml:"data_file" toml:"data_file"`
		SQLitePath  string `yaml:"sqlite_path" toml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn" toml:"postgres_dsn"`
		S3          struct {
			Bucket    string `yaml:"bucket" toml:"bucket"`
			Region    string `yaml:"region" toml:"region"`
			Endpoint  string `yaml:"endpoint" toml:"endpoint"`
			Key       string `yaml:"key" toml:"key"`
			PathStyle *bool  `yaml:"path_style" toml:"path_style"`
		} `yaml:"s3" toml:"s3"`
		Redis struct {
			Addr     string `yaml:"addr" toml:"addr"`
			Password string `yaml:"password" toml:"password"`
			DB       *int   `yaml:"db" toml:"db"`
			Key      string `yaml:"key" toml:"key"`
		} `yaml:"redis" toml:"redis"`
	} `yaml:"storage" toml:"storage"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with its value from env, or "" when unset.
func expandEnvVars(s string, env Env) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return env.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// loadFile parses a YAML or TOML config file (chosen by extension) into
// environment-style key/value pairs.
func loadFile(path string, env Env) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	expanded := expandEnvVars(string(data), env)

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(expanded, &fc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
	return fc.values(), nil
}

func (fc fileConfig) values() map[string]string {
	out := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	setInt := func(key string, value int) {
		if value != 0 {
			out[key] = strconv.Itoa(value)
		}
	}

	setInt("PORT", fc.Server.Port)
	set("GIN_MODE", fc.Server.GinMode)
	set("TLS_CERT_FILE", fc.Server.TLSCertFile)
	set("TLS_KEY_FILE", fc.Server.TLSKeyFile)
	setInt("LOGIN_RATE_LIMIT", fc.Server.LoginRateLimit)

	set("MASTER_SECRET", fc.Auth.MasterSecret)
	setInt("TOKEN_EXPIRY_SECONDS", fc.Auth.TokenExpirySeconds)

	set("LOG_LEVEL", fc.Log.Level)
	set("LOG_FORMAT", fc.Log.Format)

	st := fc.Storage
	set("STORAGE_DRIVER", st.Driver)
	set("DATA_FILE", st.DataFile)
	set("SQLITE_PATH", st.SQLitePath)
	set("POSTGRES_DSN", st.PostgresDSN)
	set("S3_BUCKET", st.S3.Bucket)
	set("S3_REGION", st.S3.Region)
	set("S3_ENDPOINT", st.S3.Endpoint)
	set("S3_KEY", st.S3.Key)
	if st.S3.PathStyle != nil {
		out["S3_PATH_STYLE"] = strconv.FormatBool(*st.S3.PathStyle)
	}
	set("REDIS_ADDR", st.Redis.Addr)
	set("REDIS_PASSWORD", st.Redis.Password)
	set("REDIS_KEY", st.Redis.Key)
	if st.Redis.DB != nil {
		out["REDIS_DB"] = strconv.Itoa(*st.Redis.DB)
	}
	return out
}
