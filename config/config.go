package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort              = "3000"
	defaultServerName        = "ActivityWatch MCP"
	defaultActivityWatchHost = "localhost"
	defaultActivityWatchPort = "5600"
	defaultCacheCapacity     = 10000
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	viperConfig.SetDefault("server.port", defaultPort)
	viperConfig.SetDefault("server.name", defaultServerName)
	viperConfig.SetDefault("activitywatch.host", defaultActivityWatchHost)
	viperConfig.SetDefault("activitywatch.port", defaultActivityWatchPort)
	viperConfig.SetDefault("cache.capacity", defaultCacheCapacity)

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

// BindFlags lets command-line flags take precedence over the environment and the config file.
func (c *Config) BindFlags(flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"PORT":              "port",
		"DEBUG":             "debug",
		"ACTIVITYWATCH_URL": "aw-url",
	}
	for key, flagName := range bindings {
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := c.config.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	return nil
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

func (c *Config) GetDebug() bool {
	if c.config.IsSet("DEBUG") && len(c.config.GetString("DEBUG")) > 0 {
		return c.config.GetBool("DEBUG")
	}

	return c.config.GetBool("server.debug")
}

func (c *Config) GetServerName() string {
	name := c.config.GetString("SERVER_NAME")
	if len(name) == 0 {
		name = c.config.GetString("server.name")
	}

	return name
}

// GetActivityWatchURL returns the base URL of the ActivityWatch REST API, e.g. http://localhost:5600/api/0.
func (c *Config) GetActivityWatchURL() string {
	baseURL := c.config.GetString("ACTIVITYWATCH_URL")
	if len(baseURL) == 0 {
		baseURL = c.config.GetString("activitywatch.base_url")
	}
	if len(baseURL) > 0 {
		return baseURL
	}

	host := c.config.GetString("ACTIVITYWATCH_HOST")
	if len(host) == 0 {
		host = c.config.GetString("activitywatch.host")
	}
	port := c.config.GetString("ACTIVITYWATCH_PORT")
	if len(port) == 0 {
		port = c.config.GetString("activitywatch.port")
	}

	return fmt.Sprintf("http://%s/api/0", net.JoinHostPort(host, port))
}

// GetRequestTimeout returns the timeout for a single upstream request. Zero means no timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	timeout := c.config.GetDuration("ACTIVITYWATCH_TIMEOUT")
	if timeout == 0 {
		timeout = c.config.GetDuration("activitywatch.timeout")
	}

	return timeout
}

func (c *Config) GetCacheCapacity() int {
	capacity := c.config.GetInt("CACHE_CAPACITY")
	if capacity <= 0 {
		capacity = c.config.GetInt("cache.capacity")
	}
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}

	return capacity
}

// GetCachePath returns the bbolt file backing the result cache. Empty means the cache is memory only.
func (c *Config) GetCachePath() string {
	cachePath := c.config.GetString("CACHE_PATH")
	if len(cachePath) == 0 {
		cachePath = c.config.GetString("cache.path")
	}

	return cachePath
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
