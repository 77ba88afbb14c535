// Package config loads the service configuration from file, .env and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/washb22/gunghabnote/internal/completion"
	"github.com/washb22/gunghabnote/internal/server"
	"github.com/washb22/gunghabnote/internal/storage"
)

// EnvPrefix namespaces environment overrides, e.g. GUNGHAB_COMPLETION_PROVIDER.
const EnvPrefix = "GUNGHAB"

type Config struct {
	Server     server.Config       `mapstructure:"server"`
	Completion CompletionConfig    `mapstructure:"completion"`
	OAuth      OAuthConfig         `mapstructure:"oauth"`
	Redis      storage.RedisConfig `mapstructure:"redis"`
	Session    SessionConfig       `mapstructure:"session"`
	Community  CommunityConfig     `mapstructure:"community"`
	Debug      bool                `mapstructure:"debug"`
	JSON       bool                `mapstructure:"json"`
}

type CompletionConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max-tokens"`
	Temperature  float32       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	OpenAI       OpenAIConfig  `mapstructure:"openai"`
	Gemini       GeminiConfig  `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type OAuthProviderConfig struct {
	ClientID         string `mapstructure:"client-id"`
	ClientSecret     string `mapstructure:"client-secret"`
	ClientSecretFile string `mapstructure:"client-secret-file"`
	RedirectURL      string `mapstructure:"redirect-url"`
	TokenURL         string `mapstructure:"token-url"`
	UserInfoURL      string `mapstructure:"userinfo-url"`
}

type OAuthConfig struct {
	Google OAuthProviderConfig `mapstructure:"google"`
	Kakao  OAuthProviderConfig `mapstructure:"kakao"`
	Naver  OAuthProviderConfig `mapstructure:"naver"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type CommunityConfig struct {
	ListLimit int `mapstructure:"list-limit"`
}

var defaults = map[string]any{
	"server.address":          ":8080",
	"server.read-timeout":     "15s",
	"server.write-timeout":    "45s",
	"server.idle-timeout":     "60s",
	"server.shutdown-timeout": "10s",

	"completion.provider":            completion.ProviderOpenAI,
	"completion.model":               "",
	"completion.max-tokens":          150,
	"completion.temperature":         0.7,
	"completion.timeout":             "30s",
	"completion.max-log-length":      200,
	"completion.openai.api-key":      "",
	"completion.openai.api-key-file": "",
	"completion.openai.base-url":     "",
	"completion.gemini.api-key":      "",
	"completion.gemini.api-key-file": "",

	"redis.address":  "",
	"redis.password": "",
	"redis.db":       0,

	"session.ttl":          "168h",
	"community.list-limit": 50,

	"debug": false,
	"json":  false,
}

var oauthKeys = []string{"client-id", "client-secret", "client-secret-file", "redirect-url", "token-url", "userinfo-url"}

// ApplyDefaults registers every key so environment overrides reach Unmarshal.
func ApplyDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, provider := range []string{"google", "kakao", "naver"} {
		for _, key := range oauthKeys {
			v.SetDefault("oauth."+provider+"."+key, "")
		}
	}
	v.SetDefault("oauth.kakao.redirect-url", "https://gunghabnote.com/auth/kakao/callback")
	v.SetDefault("oauth.naver.redirect-url", "https://gunghabnote.com/auth/naver/callback")
	v.SetDefault("oauth.google.redirect-url", "https://gunghabnote.com/auth/google/callback")
}

// BindEnv makes GUNGHAB_<SECTION>_<KEY> override file values.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads the first existing file into the process environment.
// Variables already set are kept. Missing files are not an error.
func LoadDotEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("load %s: %w", path, err)
		}
	}
	return "", nil
}

// Load unmarshals and validates v. Defaults and env binding must already be applied.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	provider, err := completion.NormalizeProvider(c.Completion.Provider)
	if err != nil {
		return err
	}
	c.Completion.Provider = provider

	if c.Completion.MaxTokens <= 0 {
		return fmt.Errorf("completion.max-tokens must be positive, got %d", c.Completion.MaxTokens)
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return fmt.Errorf("completion.temperature must be within [0, 2], got %v", c.Completion.Temperature)
	}
	if c.Completion.Timeout <= 0 {
		return fmt.Errorf("completion.timeout must be positive, got %s", c.Completion.Timeout)
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Completion.Timeout {
		return fmt.Errorf("server.write-timeout (%s) must exceed completion.timeout (%s)", c.Server.WriteTimeout, c.Completion.Timeout)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	return nil
}
