package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticValidator(token string, claims *Claims) TokenValidator {
	return func(got string) (*Claims, error) {
		if got == token {
			return claims, nil
		}
		return nil, errors.New("unknown token")
	}
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	var gotActorID, gotRole string
	mw := Auth(staticValidator("good-token", &Claims{ActorID: "actor-1", Role: "customer"}))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActorID = ActorIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "actor-1", gotActorID)
	assert.Equal(t, "customer", gotRole)
}

func TestAuth_SchemeIsCaseInsensitive(t *testing.T) {
	mw := Auth(staticValidator("good-token", &Claims{ActorID: "actor-1", Role: "provider"}))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", scheme+" good-token")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "scheme %q", scheme)
	}
}

func TestAuth_Rejections(t *testing.T) {
	mw := Auth(staticValidator("good-token", &Claims{ActorID: "actor-1", Role: "customer"}))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", "good-token"},
		{"wrong scheme", "Basic good-token"},
		{"unknown token", "Bearer bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "UNAUTHORIZED", body["code"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		role     string
		expected int
	}{
		{"matching role", []string{"provider"}, "provider", http.StatusOK},
		{"one of several", []string{"customer", "admin"}, "admin", http.StatusOK},
		{"wrong role", []string{"provider"}, "customer", http.StatusForbidden},
		{"no role in context", []string{"provider"}, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := RequireRole(tt.allowed...)
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.role != "" {
				ctx := context.WithValue(req.Context(), roleKey, tt.role)
				req = req.WithContext(ctx)
			}
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
			if tt.expected == http.StatusForbidden {
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "FORBIDDEN", body["code"])
			}
		})
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ActorIDFromContext(ctx))
	assert.Empty(t, RoleFromContext(ctx))
}
