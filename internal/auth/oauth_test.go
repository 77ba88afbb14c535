package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	tokenStatus int
	tokenBody   string
	userStatus  int
	userBody    string

	gotForm   map[string]string
	gotBearer string
}

func (f *fakeProvider) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.gotForm = map[string]string{}
		for k := range r.PostForm {
			f.gotForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		f.gotBearer = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.userStatus)
		_, _ = w.Write([]byte(f.userBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *OAuthClient {
	return NewOAuthClient(map[Provider]ProviderConfig{
		ProviderKakao: {
			ClientID:     "kakao-client",
			ClientSecret: "kakao-secret",
			RedirectURL:  "https://gunghabnote.com/auth/kakao/callback",
			TokenURL:     srv.URL + "/token",
			UserInfoURL:  srv.URL + "/me",
		},
		ProviderNaver: {},
	}, srv.Client())
}

func TestExchangeKakao(t *testing.T) {
	fake := &fakeProvider{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"at-123","token_type":"bearer","expires_in":3600}`,
		userStatus:  http.StatusOK,
		userBody:    `{"id": 3012345678, "properties": {"nickname": "민수"}}`,
	}
	srv := fake.server(t)
	client := newTestClient(srv)

	redirect := client.RedirectURI(ProviderKakao, "http://localhost:3000/")
	assert.Equal(t, "http://localhost:3000/auth/kakao/callback", redirect)

	id, err := client.Exchange(context.Background(), ProviderKakao, "auth-code", redirect)
	require.NoError(t, err)

	assert.Equal(t, Identity{Provider: ProviderKakao, ID: "3012345678", Email: "kakao_3012345678@kakao.com", Name: "민수"}, id)
	assert.Equal(t, "Bearer at-123", fake.gotBearer)
	assert.Equal(t, "authorization_code", fake.gotForm["grant_type"])
	assert.Equal(t, "auth-code", fake.gotForm["code"])
	assert.Equal(t, "kakao-client", fake.gotForm["client_id"])
	assert.Equal(t, "kakao-secret", fake.gotForm["client_secret"])
	assert.Equal(t, redirect, fake.gotForm["redirect_uri"])
}

func TestExchangeTokenFailure(t *testing.T) {
	fake := &fakeProvider{
		tokenStatus: http.StatusBadRequest,
		tokenBody:   `{"error":"invalid_grant","error_description":"authorization code not found"}`,
	}
	client := newTestClient(fake.server(t))

	_, err := client.Exchange(context.Background(), ProviderKakao, "stale", "")

	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr), "got %v", err)
	assert.Equal(t, StageToken, exErr.Stage)
	assert.Equal(t, "authorization code not found", exErr.Details)
}

func TestExchangeUserInfoFailure(t *testing.T) {
	fake := &fakeProvider{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"at-123","token_type":"bearer"}`,
		userStatus:  http.StatusUnauthorized,
		userBody:    `{"msg":"this access token does not exist","code":-401}`,
	}
	client := newTestClient(fake.server(t))

	_, err := client.Exchange(context.Background(), ProviderKakao, "code", "")

	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr), "got %v", err)
	assert.Equal(t, StageUserInfo, exErr.Stage)
	assert.Contains(t, exErr.Details, "401")
}

func TestExchangeRejects(t *testing.T) {
	client := newTestClient((&fakeProvider{}).server(t))

	_, err := client.Exchange(context.Background(), ProviderKakao, "  ", "")
	assert.ErrorIs(t, err, ErrMissingCode)

	_, err = client.Exchange(context.Background(), ProviderNaver, "code", "")
	assert.ErrorIs(t, err, ErrUnsupportedProvider, "naver has no client id")

	_, err = client.Exchange(context.Background(), ProviderEmail, "code", "")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	assert.True(t, client.Supports(ProviderKakao))
	assert.False(t, client.Supports(ProviderGoogle))
}

func TestRedirectURIDefault(t *testing.T) {
	client := NewOAuthClient(map[Provider]ProviderConfig{
		ProviderKakao: {ClientID: "id", RedirectURL: "https://gunghabnote.com/auth/kakao/callback"},
	}, nil)

	assert.Equal(t, "https://gunghabnote.com/auth/kakao/callback", client.RedirectURI(ProviderKakao, ""))
}
