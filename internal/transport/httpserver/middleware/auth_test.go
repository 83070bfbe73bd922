package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pet-diary/internal/config"
	"pet-diary/pkg/logger"
)

type recordingProfiles struct {
	saved []string
}

func (p *recordingProfiles) UpsertProfile(ctx context.Context, ownerID, email, displayName string) error {
	p.saved = append(p.saved, ownerID+"|"+email+"|"+displayName)
	return nil
}

func ownerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := OwnerIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(ownerID))
	})
}

func serve(handler http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/animals", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsSignedToken(t *testing.T) {
	verifier := NewJWTVerifier("secret", "pet-diary")
	profiles := &recordingProfiles{}
	auth := NewAuthWithVerifier(verifier, profiles, logger.Discard())

	token, err := verifier.Sign(User{ID: "owner-1", Email: "a@example.com", Name: "Aki"}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec := serve(auth.Middleware(ownerEcho()), "Authorization", "Bearer "+token)
	if rec.Code != http.StatusOK || rec.Body.String() != "owner-1" {
		t.Fatalf("expected owner-1, got %d %q", rec.Code, rec.Body.String())
	}
	if len(profiles.saved) != 1 || profiles.saved[0] != "owner-1|a@example.com|Aki" {
		t.Fatalf("expected profile upsert, got %v", profiles.saved)
	}
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	verifier := NewJWTVerifier("secret", "pet-diary")
	auth := NewAuthWithVerifier(verifier, nil, logger.Discard())

	expired, _ := verifier.Sign(User{ID: "owner-1"}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	wrongIssuer, _ := NewJWTVerifier("secret", "someone-else").Sign(User{ID: "owner-1"}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	wrongSecret, _ := NewJWTVerifier("other", "pet-diary").Sign(User{ID: "owner-1"}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noExpiry, _ := verifier.Sign(User{ID: "owner-1"}, jwt.RegisteredClaims{})

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"expired":      "Bearer " + expired,
		"wrong issuer": "Bearer " + wrongIssuer,
		"wrong secret": "Bearer " + wrongSecret,
		"no expiry":    "Bearer " + noExpiry,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(auth.Middleware(ownerEcho()), "Authorization", header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestSkipAuthUsesMockUser(t *testing.T) {
	profiles := &recordingProfiles{}
	auth := NewAuth(config.AuthConfig{SkipAuth: true, MockUserID: "mock-owner"}, profiles, logger.Discard())

	rec := serve(auth.Middleware(ownerEcho()), "", "")
	if rec.Body.String() != "mock-owner" {
		t.Fatalf("expected mock owner, got %q", rec.Body.String())
	}
	if len(profiles.saved) != 1 {
		t.Fatalf("expected mock profile upsert")
	}
}

func TestDebugHeaderOnlyWhenAllowed(t *testing.T) {
	allowed := NewAuth(config.AuthConfig{JWTSecret: "secret", AllowDebugUser: true, DebugUserHeader: "X-Debug-User-ID"}, nil, logger.Discard())
	rec := serve(allowed.Middleware(ownerEcho()), "X-Debug-User-ID", "debug-owner")
	if rec.Body.String() != "debug-owner" {
		t.Fatalf("expected debug owner, got %d %q", rec.Code, rec.Body.String())
	}

	denied := NewAuth(config.AuthConfig{JWTSecret: "secret", DebugUserHeader: "X-Debug-User-ID"}, nil, logger.Discard())
	rec = serve(denied.Middleware(ownerEcho()), "X-Debug-User-ID", "debug-owner")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when debug header is disabled, got %d", rec.Code)
	}
}

func TestAuthNotConfigured(t *testing.T) {
	auth := NewAuth(config.AuthConfig{}, nil, logger.Discard())
	rec := serve(auth.Middleware(ownerEcho()), "Authorization", "Bearer abc")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestSupabaseVerifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("apikey") != "key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"owner-9","email":"s@example.com","user_metadata":{"full_name":"Sora"}}`))
	}))
	defer server.Close()

	verifier := NewSupabaseVerifier(server.URL+"/", "key", time.Second)

	user, err := verifier.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "owner-9" || user.Email != "s@example.com" || user.Name != "Sora" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := verifier.Verify(context.Background(), "bad"); err == nil {
		t.Fatalf("expected rejected token")
	}
}
