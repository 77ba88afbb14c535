package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/washb22/gunghabnote/internal/auth"
	"github.com/washb22/gunghabnote/internal/compat"
	"github.com/washb22/gunghabnote/internal/completion"
	"github.com/washb22/gunghabnote/internal/completion/gemini"
	"github.com/washb22/gunghabnote/internal/completion/openai"
	"github.com/washb22/gunghabnote/internal/config"
	"github.com/washb22/gunghabnote/internal/logger"
	"github.com/washb22/gunghabnote/internal/secrets"
)

// newCompleter builds the configured backend. A missing API key is not fatal:
// the analyzer then answers every request from the fallback corpus.
func newCompleter(ctx context.Context, cfg config.CompletionConfig, log *zap.Logger) (completion.Completer, error) {
	switch cfg.Provider {
	case completion.ProviderGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return unavailable(err, log)
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("building gemini generator: %w", err)
		}
		logger.WithCompletionFields(log, completion.ProviderGemini, generator.Model()).Info("completion backend ready")
		return generator, nil

	default:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return unavailable(err, log)
		}

		client, err := openai.NewClient(apiKey, openai.Options{
			Model:   cfg.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("building openai client: %w", err)
		}
		logger.WithCompletionFields(log, completion.ProviderOpenAI, client.Model()).Info("completion backend ready")
		return client, nil
	}
}

func unavailable(err error, log *zap.Logger) (completion.Completer, error) {
	if !errors.Is(err, secrets.ErrNotConfigured) {
		return nil, err
	}
	log.Warn("completion api key is not configured, every analysis will use the fallback corpus",
		zap.Error(err),
		zap.String("hint", "set OPENAI_API_KEY or completion.openai.api-key-file"),
	)
	return completion.Unavailable{Reason: err.Error()}, nil
}

func newAnalyzer(completer completion.Completer, cfg config.CompletionConfig, recorder compat.Recorder, log *zap.Logger) *compat.Analyzer {
	return compat.NewAnalyzer(completer, compat.Options{
		Logger:       logger.WithCompletionFields(logger.Component(log, "compat"), cfg.Provider, completer.Model()),
		Recorder:     recorder,
		Timeout:      cfg.Timeout,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		MaxLogLength: cfg.MaxLogLength,
	})
}

// newOAuthClient registers every provider with a client id. Client secrets may
// be inline, in a file or in <PROVIDER>_CLIENT_SECRET.
func newOAuthClient(cfg config.OAuthConfig, timeout time.Duration) (*auth.OAuthClient, error) {
	entries := map[auth.Provider]config.OAuthProviderConfig{
		auth.ProviderGoogle: cfg.Google,
		auth.ProviderKakao:  cfg.Kakao,
		auth.ProviderNaver:  cfg.Naver,
	}
	envNames := map[auth.Provider]string{
		auth.ProviderGoogle: "GOOGLE_CLIENT_SECRET",
		auth.ProviderKakao:  "KAKAO_CLIENT_SECRET",
		auth.ProviderNaver:  "NAVER_CLIENT_SECRET",
	}

	providers := make(map[auth.Provider]auth.ProviderConfig, len(entries))
	for provider, entry := range entries {
		if entry.ClientID == "" {
			continue
		}

		secret, err := secrets.Load(secrets.Source{
			Name:  string(provider) + " client secret",
			Value: entry.ClientSecret,
			File:  entry.ClientSecretFile,
			Env:   envNames[provider],
		})
		// Kakao issues optional client secrets.
		if err != nil && !(provider == auth.ProviderKakao && errors.Is(err, secrets.ErrNotConfigured)) {
			return nil, err
		}

		providers[provider] = auth.ProviderConfig{
			ClientID:     entry.ClientID,
			ClientSecret: secret,
			RedirectURL:  entry.RedirectURL,
			TokenURL:     entry.TokenURL,
			UserInfoURL:  entry.UserInfoURL,
		}
	}

	return auth.NewOAuthClient(providers, &http.Client{Timeout: timeout}), nil
}
