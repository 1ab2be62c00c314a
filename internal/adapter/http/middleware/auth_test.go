package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/auth"
)

func issueToken(t *testing.T, m *auth.JWTManager) string {
	t.Helper()
	token, err := m.Generate(&domain.User{ID: "user-1", Email: "a@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	token := issueToken(t, manager)

	var seen *domain.User
	h := AuthMiddleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK},
		{"access token param", "", "?access_token=" + token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if tt.want == http.StatusOK && (seen == nil || seen.ID != "user-1" || seen.Name != "Ana") {
				t.Fatalf("expected user in context, got %+v", seen)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)

	var ok bool
	h := OptionalAuth(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetUserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || ok {
		t.Fatalf("expected anonymous pass-through, got %d user=%v", rr.Code, ok)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ok {
		t.Fatal("expected user for a valid token")
	}
}
