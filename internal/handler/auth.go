package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/sakif/kanban-board/internal/apperror"
	"github.com/sakif/kanban-board/internal/auth"
	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/service"
)

// AuthService is the part of service.AuthService the handlers use.
type AuthService interface {
	Signup(ctx context.Context, in service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID string) (model.PublicUser, error)
	Users(ctx context.Context) ([]model.PublicUser, error)
	LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*service.AuthResult, error)
}

// GitHubProvider is satisfied by *auth.GitHubProvider.
type GitHubProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

const oauthStateCookie = "oauth_state"

// AuthHandler serves signup, login, logout, the current user and the user
// directory, plus the optional GitHub sign-in redirects.
type AuthHandler struct {
	auth     AuthService
	github   GitHubProvider // nil when GitHub sign-in is not configured
	logger   *slog.Logger
	maxBytes int64
}

func NewAuthHandler(svc AuthService, github GitHubProvider, maxBytes int64, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, github: github, logger: logger, maxBytes: maxBytes}
}

// HandleSignup registers a user.
//
// HTTP: POST /api/auth/signup
// REQUEST BODY: {"name": "Ann", "email": "ann@x.io", "password": "secret1"}
// RESPONSE: 201 {"token": "...", "user": {...}}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleLogin exchanges credentials for a session token.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleLogout revokes the token the request was authenticated with.
//
// HTTP: POST /api/auth/logout (auth required)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated user.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleUsers lists board members for the assignee picker.
//
// HTTP: GET /api/users
func (h *AuthHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.Users(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// A random state value is stored in a short-lived HttpOnly cookie and
// checked on callback, proving the flow was started by this server.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow and hands the new session
// token to the browser app in the URL fragment, which is never sent to a
// server.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	res, err := h.auth.LoginWithGitHub(r.Context(), ghUser)
	if errors.Is(err, apperror.ErrConflict) {
		h.logger.Warn("auth callback: email belongs to another account", slog.Int64("githubID", ghUser.ID))
		http.Redirect(w, r, "/?auth=conflict", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.logger.Error("auth callback: sign-in failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/#token="+url.QueryEscape(res.Token), http.StatusSeeOther)
}
