package config

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	BaseURL                string        `yaml:"base_url"`        // backend root including the /api prefix
	RequestTimeout         time.Duration `yaml:"request_timeout"` // 0 keeps the http.Client default (no timeout)
	LogLevel               string        `yaml:"log_level"`
	LogJSON                bool          `yaml:"log_json"`
	PageSize               int           `yaml:"page_size"`
	RecentLimit            int           `yaml:"recent_limit"`
	SessionRefreshInterval time.Duration `yaml:"session_refresh_interval"` // 0 disables background refresh
	LikeReconcileDelay     time.Duration `yaml:"like_reconcile_delay"`     // 0 disables re-fetch after a like
	AvatarMaxBytes         int64         `yaml:"avatar_max_bytes"`
	MetricsAddr            string        `yaml:"metrics_addr"`
	StateDir               string        `yaml:"state_dir"` // where forumctl keeps session cookies
}

type Private struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (c *Config) Username() string {
	return c.private.Username
}

func (c *Config) Password() string {
	return c.private.Password
}

// WithCredentials returns a copy carrying the given login.
func (c *Config) WithCredentials(username, password string) *Config {
	cp := *c
	cp.private = Private{Username: username, Password: password}
	return &cp
}

// Default returns the configuration used when no files are given.
func Default() *Config {
	return &Config{Public: defaultPublic()}
}

// FromEnv is Default with the FORUM_* variables applied, for running
// without a config folder.
func FromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func defaultPublic() Public {
	return Public{
		BaseURL:                "http://localhost:8080/api",
		LogLevel:               "info",
		PageSize:               10,
		RecentLimit:            10,
		SessionRefreshInterval: 5 * time.Minute,
		LikeReconcileDelay:     2 * time.Second,
		AvatarMaxBytes:         2 * 1024 * 1024,
		StateDir:               defaultStateDir(),
	}
}

func defaultStateDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "forumctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "forumctl")
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder on top of
// the defaults. A .env file in the folder, when present, is loaded into
// the environment first; FORUM_* variables win over file values.
func MustLoad(configFolder string) *Config {
	if err := godotenv.Load(path.Join(configFolder, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("can't load .env file: " + err.Error())
	}

	public := defaultPublic()
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FORUM_BASE_URL"); v != "" {
		c.Public.BaseURL = v
	}
	if v := os.Getenv("FORUM_LOG_LEVEL"); v != "" {
		c.Public.LogLevel = v
	}
	if v := os.Getenv("FORUM_USERNAME"); v != "" {
		c.private.Username = v
	}
	if v := os.Getenv("FORUM_PASSWORD"); v != "" {
		c.private.Password = v
	}
}

func (c *Config) validate() error {
	switch {
	case c.Public.BaseURL == "":
		return errors.New("config: base_url is required")
	case c.Public.PageSize <= 0:
		return errors.New("config: page_size must be positive")
	case c.Public.AvatarMaxBytes <= 0:
		return errors.New("config: avatar_max_bytes must be positive")
	}
	return nil
}
