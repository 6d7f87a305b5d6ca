// Package config loads radiolab settings from radiolab.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/radiolab/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named.
const DefaultPath = "radiolab.yaml"

// EnvConfig names the config file when no path is given.
const EnvConfig = "RADIOLAB_CONFIG"

// EnvSimSeed passes the simulator seed to supervised servers.
const EnvSimSeed = "RADIOLAB_SIM_SEED"

// Provider names accepted in model references.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config is the full radiolab configuration.
type Config struct {
	// Path is the file the configuration was read from, if any.
	Path string `mapstructure:"-" yaml:"-"`

	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
	Server   ServerConfig  `mapstructure:"server" yaml:"server"`
	Planner  PlannerConfig `mapstructure:"planner" yaml:"planner"`
	Bridge   BridgeConfig  `mapstructure:"bridge" yaml:"bridge"`
	Redis    RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Sim      SimConfig     `mapstructure:"sim" yaml:"sim"`
}

// ServerConfig locates and supervises the tool server.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr" yaml:"addr"`
	ProbeAttempts int           `mapstructure:"probe_attempts" yaml:"probe_attempts"`
	ProbeInterval time.Duration `mapstructure:"probe_interval" yaml:"probe_interval"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
}

// PlannerConfig selects the candidate models.
// Models are "provider:model" references tried in order.
type PlannerConfig struct {
	Models          []string `mapstructure:"models" yaml:"models"`
	MaxTokens       int      `mapstructure:"max_tokens" yaml:"max_tokens"`
	Decompose       bool     `mapstructure:"decompose" yaml:"decompose"`
	SystemPrompt    string   `mapstructure:"system_prompt" yaml:"system_prompt,omitempty"`
	AnthropicAPIKey string   `mapstructure:"anthropic_api_key" yaml:"-"`
	GeminiAPIKey    string   `mapstructure:"gemini_api_key" yaml:"-"`

	// Endpoint overrides, mostly for proxies and tests.
	AnthropicBaseURL string `mapstructure:"anthropic_base_url" yaml:"anthropic_base_url,omitempty"`
	GeminiBaseURL    string `mapstructure:"gemini_base_url" yaml:"gemini_base_url,omitempty"`
}

// BridgeConfig sets the failure policy of plan execution.
type BridgeConfig struct {
	StopOnError bool `mapstructure:"stop_on_error" yaml:"stop_on_error"`
}

// RedisConfig enables the distributed start lock when Addr is set.
// A zero LockTTL derives the expiry from the probe budget.
type RedisConfig struct {
	Addr    string        `mapstructure:"addr" yaml:"addr,omitempty"`
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

// SimConfig tunes the simulator. A zero Seed draws a random one.
type SimConfig struct {
	Seed uint64 `mapstructure:"seed" yaml:"seed,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:          "127.0.0.1:5001",
			ProbeAttempts: 20,
			ProbeInterval: 500 * time.Millisecond,
			ProbeTimeout:  time.Second,
		},
		Planner: PlannerConfig{
			Models: []string{
				"anthropic:claude-3-5-sonnet-20241022",
				"anthropic:claude-3-5-sonnet-20240620",
				"anthropic:claude-3-sonnet-20240229",
				"anthropic:claude-3-opus-20240229",
				"anthropic:claude-3-haiku-20240307",
			},
			MaxTokens: 2000,
			Decompose: true,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if abs, err := filepath.Abs(path); err == nil {
			cfg.Path = abs
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	// A configured model list replaces the defaults instead of overlaying them.
	if planner, ok := raw["planner"].(map[string]any); ok {
		if _, ok := planner["models"]; ok {
			cfg.Planner.Models = nil
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("RADIOLAB_SERVER_ADDR"); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := os.LookupEnv("RADIOLAB_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("RADIOLAB_REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("RADIOLAB_MODELS"); ok && v != "" {
		cfg.Planner.Models = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvSimSeed); ok && v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Sim.Seed = seed
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Planner.AnthropicAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		cfg.Planner.AnthropicBaseURL = v
	}
	for _, key := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			cfg.Planner.GeminiAPIKey = v
			break
		}
	}
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

// Validate checks ranges and model references.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ProbeAttempts < 1 {
		errs = append(errs, fmt.Errorf("server.probe_attempts must be positive, got %d", c.Server.ProbeAttempts))
	}
	if c.Server.ProbeInterval <= 0 || c.Server.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("server probe interval and timeout must be positive"))
	}
	if c.Redis.LockTTL < 0 {
		errs = append(errs, fmt.Errorf("redis.lock_ttl must not be negative, got %s", c.Redis.LockTTL))
	}
	if c.Planner.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("planner.max_tokens must be positive, got %d", c.Planner.MaxTokens))
	}
	for _, m := range c.Planner.Models {
		if _, err := ParseModel(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ModelRef names one candidate model.
type ModelRef struct {
	Provider string
	Model    string
}

func (r ModelRef) String() string { return r.Provider + ":" + r.Model }

// ParseModel reads "provider:model". A bare model name means anthropic.
func ParseModel(s string) (ModelRef, error) {
	provider, model, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		provider, model = ProviderAnthropic, provider
	}
	switch provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return ModelRef{}, fmt.Errorf("unknown model provider %q in %q", provider, s)
	}
	if model == "" {
		return ModelRef{}, fmt.Errorf("empty model name in %q", s)
	}
	return ModelRef{Provider: provider, Model: model}, nil
}

// ModelRefs parses the configured candidates in order.
func (c PlannerConfig) ModelRefs() ([]ModelRef, error) {
	refs := make([]ModelRef, 0, len(c.Models))
	for _, m := range c.Models {
		ref, err := ParseModel(m)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
