package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "http://localhost:5000"
	DefaultTimeout     = 10 * time.Second
	DefaultAddr        = ":5000"
	DefaultTheme       = "default"
	DefaultLogLevel    = "info"
	DefaultServiceName = "physview"

	// EnvAPIURL overrides api.base_url.
	EnvAPIURL = "PHYSVIEW_API_URL"
	// EnvDatabaseURL overrides server.database_url.
	EnvDatabaseURL = "DATABASE_URL"
	// EnvTraceEndpoint overrides trace.endpoint.
	EnvTraceEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
	View   ViewConfig   `yaml:"view"`
	Log    LogConfig    `yaml:"log"`
	Trace  TraceConfig  `yaml:"trace"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	FormulasFile   string   `yaml:"formulas_file"`
	DatabaseURL    string   `yaml:"database_url"`
}

type ViewConfig struct {
	Theme string `yaml:"theme"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type TraceConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		View: ViewConfig{Theme: DefaultTheme},
		Log:  LogConfig{Level: DefaultLogLevel},
		Trace: TraceConfig{
			ServiceName: DefaultServiceName,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads path over the values already in cfg; keys absent from the
// file keep their current value.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.normalize()
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides file values with environment variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Server.DatabaseURL = v
	}
	if v := getenv(EnvTraceEndpoint); v != "" {
		c.Trace.Endpoint = v
	}
	c.normalize()
}

// SetBaseURL sets the API base URL, trimming trailing slashes.
func (c *Config) SetBaseURL(u string) {
	c.API.BaseURL = u
	c.normalize()
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout <= 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.View.Theme == "" {
		c.View.Theme = DefaultTheme
	}
	if c.Trace.ServiceName == "" {
		c.Trace.ServiceName = DefaultServiceName
	}
}
