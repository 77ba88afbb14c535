// Package completion defines the text-completion capability used by the
// analysis pipelines and the backends that implement it.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var (
	// ErrUnavailable marks a backend that cannot serve requests, typically
	// because no API key is configured.
	ErrUnavailable = errors.New("completion backend unavailable")
	// ErrEmptyResponse is returned when the upstream answered without any text.
	ErrEmptyResponse = errors.New("completion returned empty response")
)

// Prompt is one system instruction plus one user message.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Completer turns a prompt into free text. Implementations make exactly one
// upstream call per Complete and never retry.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Model() string
}

// Unavailable is a Completer that always fails with ErrUnavailable.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Complete(context.Context, Prompt) (string, error) {
	reason := strings.TrimSpace(u.Reason)
	if reason == "" {
		return "", ErrUnavailable
	}
	return "", fmt.Errorf("%s: %w", reason, ErrUnavailable)
}

func (Unavailable) Model() string { return "" }

// NormalizeProvider lowercases and trims a provider name, mapping empty to openai.
func NormalizeProvider(name string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "", ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported completion provider %q", name)
	}
}
