package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"llamable/generator"
)

// EnvPrefix prefixes environment overrides, e.g. LLAMABLE_LLM__MODEL.
const EnvPrefix = "LLAMABLE_"

// Config is the top-level configuration, corresponding to llamable.yml.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	LLM        LLMConfig        `koanf:"llm"`
	Generation GenerationConfig `koanf:"generation"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	AllowAllOrigins bool          `koanf:"allow_all_origins"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
}

// LLMConfig describes the OpenAI-compatible endpoint. The credential itself
// is never part of the file; APIKeyEnv names the variable read per call.
type LLMConfig struct {
	Provider  string      `koanf:"provider"`
	BaseURL   string      `koanf:"base_url"`
	Model     string      `koanf:"model"`
	APIKeyEnv string      `koanf:"api_key_env"`
	Enhancer  StageConfig `koanf:"enhancer"`
	Generator StageConfig `koanf:"generator"`
}

type StageConfig struct {
	MaxTokens   int64   `koanf:"max_tokens"`
	Temperature float64 `koanf:"temperature"`
}

type GenerationConfig struct {
	MaxAttempts int `koanf:"max_attempts"`
	// SiteKeywords overrides generator.DefaultSiteKeywords when set.
	SiteKeywords []string `koanf:"site_keywords"`
}

// DefaultConfig returns a Config pointing at the Llama compatibility API.
func DefaultConfig() *Config {
	d := generator.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowAllOrigins: true,
		},
		LLM: LLMConfig{
			Provider:  "llama",
			BaseURL:   "https://api.llama.com/compat/v1/",
			Model:     "Llama-4-Maverick-17B-128E-Instruct-FP8",
			APIKeyEnv: "LLAMA_API_KEY",
			Enhancer:  StageConfig{MaxTokens: d.Enhancer.MaxTokens, Temperature: d.Enhancer.Temperature},
			Generator: StageConfig{MaxTokens: d.Generator.MaxTokens, Temperature: d.Generator.Temperature},
		},
		Generation: GenerationConfig{
			MaxAttempts: d.MaxAttempts,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (LLAMABLE_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// LLAMABLE_LLM__BASE_URL -> llm.base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.APIKeyEnv == "" {
		return fmt.Errorf("llm.api_key_env is required")
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1")
	}
	if c.LLM.Enhancer.MaxTokens < 0 || c.LLM.Generator.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must be non-negative")
	}
	return nil
}

// Credentials resolves the API key from the environment at call time.
func (c *Config) Credentials() generator.CredentialSource {
	return generator.EnvCredential(c.LLM.APIKeyEnv)
}

// LLMSettings maps the endpoint section onto the generator client settings.
func (c *Config) LLMSettings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
	}
}

// AgentOptions maps the pipeline parameters onto generator options.
func (c *Config) AgentOptions() generator.Options {
	return generator.Options{
		MaxAttempts: c.Generation.MaxAttempts,
		Enhancer:    generator.StageParams{MaxTokens: c.LLM.Enhancer.MaxTokens, Temperature: c.LLM.Enhancer.Temperature},
		Generator:   generator.StageParams{MaxTokens: c.LLM.Generator.MaxTokens, Temperature: c.LLM.Generator.Temperature},
	}
}

// Classifier returns the site/component policy for the configured keywords.
func (c *Config) Classifier() generator.Classifier {
	return generator.NewKeywordClassifier(c.Generation.SiteKeywords)
}
