package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/washb22/gunghabnote/internal/auth"
)

const (
	msgUnsupportedProvider = "지원하지 않는 로그인 방식입니다"
	msgTokenFailed         = "토큰 획득 실패"
	msgUserInfoFailed      = "사용자 정보 조회 실패"
	msgLoginFailed         = "로그인 처리 중 오류가 발생했습니다"
	msgLoginRequired       = "로그인이 필요합니다."
)

type loginRequest struct {
	Code string `json:"code"`
}

type sessionResponse struct {
	Success   bool          `json:"success"`
	User      auth.Identity `json:"user"`
	SessionID string        `json:"sessionId,omitempty"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	provider, err := auth.ParseProvider(mux.Vars(r)["provider"])
	if err != nil || !h.oauth.Supports(provider) {
		respondError(w, http.StatusBadRequest, msgUnsupportedProvider)
		return
	}

	var body loginRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	redirectURI := h.oauth.RedirectURI(provider, r.Header.Get("Origin"))

	user, err := h.oauth.Exchange(r.Context(), provider, body.Code, redirectURI)
	if err != nil {
		h.respondLoginError(w, provider, err)
		return
	}

	session, err := h.sessions.Create(r.Context(), user)
	if err != nil {
		h.internalError(w, "create session", err)
		return
	}

	h.logger.Info("user logged in",
		zap.String("provider", string(provider)),
		zap.String("user_id", user.UserID()),
	)

	respondJSON(w, http.StatusOK, sessionResponse{
		Success:   true,
		User:      session.User,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *Handler) respondLoginError(w http.ResponseWriter, provider auth.Provider, err error) {
	if errors.Is(err, auth.ErrMissingCode) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Warn("login failed", zap.String("provider", string(provider)), zap.Error(err))

	var exErr *auth.ExchangeError
	if errors.As(err, &exErr) {
		msg := msgTokenFailed
		if exErr.Stage == auth.StageUserInfo {
			msg = msgUserInfoFailed
		}
		respondErrorDetails(w, http.StatusBadRequest, msg, exErr.Details)
		return
	}

	respondErrorDetails(w, http.StatusInternalServerError, msgLoginFailed, err.Error())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Success:   true,
		User:      session.User,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	err := h.sessions.Delete(r.Context(), auth.BearerToken(r.Header.Get("Authorization")))
	if errors.Is(err, auth.ErrSessionNotFound) {
		respondError(w, http.StatusUnauthorized, msgLoginRequired)
		return
	}
	if err != nil {
		h.internalError(w, "delete session", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// requireSession resolves the bearer session or writes a 401.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	session, err := h.sessions.Get(r.Context(), auth.BearerToken(r.Header.Get("Authorization")))
	if errors.Is(err, auth.ErrSessionNotFound) {
		respondError(w, http.StatusUnauthorized, msgLoginRequired)
		return nil, false
	}
	if err != nil {
		h.internalError(w, "load session", err)
		return nil, false
	}
	return session, true
}
