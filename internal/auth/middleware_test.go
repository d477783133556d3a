package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	sessions map[string]string
	err      error
}

func (f fakeResolver) Resolve(_ context.Context, token string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	id, ok := f.sessions[token]
	return id, ok, nil
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// echoUser responds with the user ID and token found in the context.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	tok, _ := TokenFromContext(r.Context())
	w.Write([]byte(id + "|" + tok))
})

func TestRequireAuth(t *testing.T) {
	resolver := fakeResolver{sessions: map[string]string{"good": "u1"}}
	handler := RequireAuth(resolver, discardLogger)(echoUser)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "u1|good"},
		{"lower-case scheme", "bearer good", http.StatusOK, "u1|good"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"scheme only", "Bearer", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Unauthorized", body["error"])
			assert.Equal(t, "unauthorized", body["code"])
		})
	}
}

func TestRequireAuth_BackendFailure(t *testing.T) {
	handler := RequireAuth(fakeResolver{err: errors.New("redis down")}, discardLogger)(echoUser)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis down")
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserIDFromContext(WithUserID(context.Background(), ""))
	assert.False(t, ok, "empty id is not a user")

	id, ok := UserIDFromContext(WithUserID(context.Background(), "u9"))
	assert.True(t, ok)
	assert.Equal(t, "u9", id)
}
