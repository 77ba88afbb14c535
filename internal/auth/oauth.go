package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// ProviderConfig holds one provider's client registration.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectURL is used when the request carries no Origin header.
	RedirectURL string
	// TokenURL and UserInfoURL override the public endpoints.
	TokenURL    string
	UserInfoURL string
}

type endpoint struct {
	authURL     string
	tokenURL    string
	userInfoURL string
}

var defaultEndpoints = map[Provider]endpoint{
	ProviderGoogle: {
		authURL:     "https://accounts.google.com/o/oauth2/auth",
		tokenURL:    "https://oauth2.googleapis.com/token",
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	},
	ProviderKakao: {
		authURL:     "https://kauth.kakao.com/oauth/authorize",
		tokenURL:    "https://kauth.kakao.com/oauth/token",
		userInfoURL: "https://kapi.kakao.com/v2/user/me",
	},
	ProviderNaver: {
		authURL:     "https://nid.naver.com/oauth2.0/authorize",
		tokenURL:    "https://nid.naver.com/oauth2.0/token",
		userInfoURL: "https://openapi.naver.com/v1/nid/me",
	},
}

// Stage names the step of the login flow that failed.
type Stage string

const (
	StageToken    Stage = "token"
	StageUserInfo Stage = "userinfo"
)

// ExchangeError reports a provider-side failure. Details is safe to show.
type ExchangeError struct {
	Provider Provider
	Stage    Stage
	Details  string
	Err      error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// OAuthClient turns authorization codes into identities.
type OAuthClient struct {
	providers  map[Provider]ProviderConfig
	httpClient *http.Client
}

// NewOAuthClient registers the given providers. Providers without a client id
// are treated as unsupported. A nil httpClient uses http.DefaultClient.
func NewOAuthClient(providers map[Provider]ProviderConfig, httpClient *http.Client) *OAuthClient {
	registered := make(map[Provider]ProviderConfig, len(providers))
	for p, cfg := range providers {
		if _, ok := defaultEndpoints[p]; !ok || strings.TrimSpace(cfg.ClientID) == "" {
			continue
		}
		registered[p] = cfg
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OAuthClient{providers: registered, httpClient: httpClient}
}

// Supports reports whether provider can be exchanged.
func (c *OAuthClient) Supports(provider Provider) bool {
	_, ok := c.providers[provider]
	return ok
}

// RedirectURI is <origin>/auth/<provider>/callback when origin is known.
func (c *OAuthClient) RedirectURI(provider Provider, origin string) string {
	if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
		return fmt.Sprintf("%s/auth/%s/callback", origin, provider)
	}
	return c.providers[provider].RedirectURL
}

// Exchange swaps code for a token, fetches userinfo and normalizes it.
func (c *OAuthClient) Exchange(ctx context.Context, provider Provider, code, redirectURI string) (Identity, error) {
	cfg, ok := c.providers[provider]
	if !ok {
		return Identity{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	if strings.TrimSpace(code) == "" {
		return Identity{}, ErrMissingCode
	}

	ep := defaultEndpoints[provider]
	if cfg.TokenURL != "" {
		ep.tokenURL = cfg.TokenURL
	}
	if cfg.UserInfoURL != "" {
		ep.userInfoURL = cfg.UserInfoURL
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   ep.authURL,
			TokenURL:  ep.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := oc.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return Identity{}, &ExchangeError{Provider: provider, Stage: StageToken, Details: retrieveDetails(err), Err: err}
	}

	raw, err := c.userInfo(ctx, oc.Client(ctx, token), ep.userInfoURL)
	if err != nil {
		return Identity{}, &ExchangeError{Provider: provider, Stage: StageUserInfo, Details: err.Error(), Err: err}
	}

	return Normalize(provider, raw)
}

func (c *OAuthClient) userInfo(ctx context.Context, client *http.Client, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read userinfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}

	return raw, nil
}

func retrieveDetails(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorDescription != "" {
			return re.ErrorDescription
		}
		if re.ErrorCode != "" {
			return re.ErrorCode
		}
	}
	return err.Error()
}
