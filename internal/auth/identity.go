// Package auth normalizes social-login identities and keeps server-side sessions.
package auth

import (
	"errors"
	"fmt"
	"strings"
)

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
	ProviderNaver  Provider = "naver"
	ProviderEmail  Provider = "email"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported auth provider")
	ErrMissingID           = errors.New("provider returned no user id")
	// ErrMissingCode carries the text shown to users.
	ErrMissingCode = errors.New("인증 코드가 필요합니다")
)

// ParseProvider accepts a provider name in any case.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderGoogle, ProviderKakao, ProviderNaver, ProviderEmail:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
}

// Identity is an authenticated user, whatever the provider.
type Identity struct {
	Provider Provider `json:"provider"`
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Picture  string   `json:"picture"`
}

// UserID is unique across providers.
func (i Identity) UserID() string {
	return string(i.Provider) + ":" + i.ID
}
