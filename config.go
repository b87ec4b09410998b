package restcore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the file-based configuration surface. It covers the
// construction knobs that operators tune without recompiling; everything
// else stays on the options API.
type Config struct {
	Docs struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"docs"`

	Multiplexer struct {
		Path            string   `yaml:"path"`
		MaxRequests     int      `yaml:"max_requests"`
		HeaderAllowlist []string `yaml:"header_allowlist"`
		RunMode         string   `yaml:"run_mode"`
	} `yaml:"multiplexer"`

	Debug struct {
		PathPrefix string `yaml:"path_prefix"`
	} `yaml:"debug"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// LoadConfig reads a YAML config file, after loading a .env file from the
// config file's directory if one is present. Environment variables override
// the file:
//
//	RESTCORE_DOCS_PATH, RESTCORE_MUX_MAX_REQUESTS, RESTCORE_MUX_RUN_MODE,
//	RESTCORE_RATE_LIMIT_RPS
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("RESTCORE_DOCS_PATH"); v != "" {
		cfg.Docs.Enabled = true
		cfg.Docs.Path = v
	}
	if v := os.Getenv("RESTCORE_MUX_MAX_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RESTCORE_MUX_MAX_REQUESTS: %w", err)
		}
		cfg.Multiplexer.MaxRequests = n
	}
	if v := os.Getenv("RESTCORE_MUX_RUN_MODE"); v != "" {
		cfg.Multiplexer.RunMode = v
	}
	if v := os.Getenv("RESTCORE_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RESTCORE_RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimit.RPS = f
	}

	if _, err := cfg.runMode(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) runMode() (MultiplexerRunMode, error) {
	switch strings.ToLower(c.Multiplexer.RunMode) {
	case "", "parallel":
		return RunModeParallel, nil
	case "sequential":
		return RunModeSequential, nil
	}
	return 0, fmt.Errorf("unknown multiplexer run mode %q", c.Multiplexer.RunMode)
}

// Options converts the config into server options. LoadConfig has already
// validated the enum fields, so this never fails on a loaded config.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Docs.Enabled {
		opts = append(opts, WithDocs(c.Docs.Path))
	}

	mode, err := c.runMode()
	if err != nil {
		mode = RunModeParallel
	}
	opts = append(opts, WithMultiplexer(MultiplexerConfig{
		Path:            c.Multiplexer.Path,
		MaxRequests:     c.Multiplexer.MaxRequests,
		HeaderAllowlist: c.Multiplexer.HeaderAllowlist,
		RunMode:         mode,
	}))

	if c.Debug.PathPrefix != "" {
		opts = append(opts, WithDebugPathPrefix(c.Debug.PathPrefix))
	}
	if c.RateLimit.RPS > 0 {
		burst := c.RateLimit.Burst
		if burst <= 0 {
			burst = int(c.RateLimit.RPS)
			if burst < 1 {
				burst = 1
			}
		}
		opts = append(opts, WithRateLimit(c.RateLimit.RPS, burst))
	}
	return opts
}
