// Package config loads runtime configuration from an optional YAML
// file with environment overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "RECIPEREALM_CONFIG"
	apiURLEnv      = "RECIPEREALM_API_URL"
	dataDirEnv     = "RECIPEREALM_DATA_DIR"
	regionEnv      = "RECIPEREALM_REGION"
	serverAddrEnv  = "RECIPEREALM_SERVER_ADDR"
	dbDriverEnv    = "RECIPEREALM_DB_DRIVER"
	dbDSNEnv       = "RECIPEREALM_DB_DSN"
	jwtSecretEnv   = "RECIPEREALM_JWT_SECRET"
	redisAddrEnv   = "RECIPEREALM_REDIS_ADDR"
	logLevelEnv    = "RECIPEREALM_LOG_LEVEL"
	environmentEnv = "RECIPEREALM_ENV"
)

// Config holds settings for both the client tooling and the
// development server.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ClientConfig configures the interaction layer.
type ClientConfig struct {
	// APIURL is the base URL of the recipe API.
	APIURL string `yaml:"apiUrl"`
	// DataDir holds the durable local cache. Empty means in-memory.
	DataDir string `yaml:"dataDir"`
	// Region biases the recommended shelf.
	Region string `yaml:"region"`
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	DBDriver  string `yaml:"dbDriver"`
	DBDSN     string `yaml:"dbDsn"`
	JWTSecret string `yaml:"jwtSecret"`
	// RedisAddr enables the rate limiter when set.
	RedisAddr string `yaml:"redisAddr"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

func defaultConfig() Config {
	return Config{
		Client: ClientConfig{
			APIURL: "http://localhost:8080",
			Region: "cameroon",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			DBDriver: "sqlite",
			DBDSN:    "reciperealm.db",
		},
		Log: LogConfig{
			Level:       "info",
			Environment: "development",
		},
	}
}

// Load reads the YAML file named by RECIPEREALM_CONFIG (if set) and
// applies environment overrides on top of it.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadFile reads configuration from a specific YAML file, with
// defaults filling any omitted field.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiURLEnv); v != "" {
		c.Client.APIURL = v
	}
	if v := os.Getenv(dataDirEnv); v != "" {
		c.Client.DataDir = v
	}
	if v := os.Getenv(regionEnv); v != "" {
		c.Client.Region = v
	}
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(dbDriverEnv); v != "" {
		c.Server.DBDriver = v
	}
	if v := os.Getenv(dbDSNEnv); v != "" {
		c.Server.DBDSN = v
	}
	if v := os.Getenv(jwtSecretEnv); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Server.RedisAddr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(environmentEnv); v != "" {
		c.Log.Environment = v
	}
}
