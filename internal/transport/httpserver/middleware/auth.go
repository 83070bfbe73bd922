package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"pet-diary/internal/config"
	"pet-diary/pkg/logger"
)

var ErrInvalidToken = errors.New("invalid token")

type contextKey int

const (
	ownerIDKey contextKey = iota
	userKey
)

type User struct {
	ID    string
	Email string
	Name  string
}

// Verifier resolves a bearer token into the authenticated owner.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

type ProfileSaver interface {
	UpsertProfile(ctx context.Context, ownerID, email, displayName string) error
}

type Auth struct {
	verifier    Verifier
	profiles    ProfileSaver
	log         logger.Logger
	skipAuth    bool
	mockUser    User
	debugHeader string
}

// NewAuth picks the identity provider from config: a local HS256 secret wins
// over remote Supabase verification. AUTH_SKIP bypasses both with the mock user.
func NewAuth(cfg config.AuthConfig, profiles ProfileSaver, log logger.Logger) *Auth {
	var verifier Verifier
	switch {
	case strings.TrimSpace(cfg.JWTSecret) != "":
		verifier = NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	case strings.TrimSpace(cfg.SupabaseURL) != "" && strings.TrimSpace(cfg.SupabaseKey) != "":
		verifier = NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Timeout)
	}

	a := &Auth{
		verifier: verifier,
		profiles: profiles,
		log:      log,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:    strings.TrimSpace(cfg.MockUserID),
			Email: strings.TrimSpace(cfg.MockUserEmail),
			Name:  strings.TrimSpace(cfg.MockUserName),
		},
	}
	if cfg.AllowDebugUser {
		a.debugHeader = strings.TrimSpace(cfg.DebugUserHeader)
	}
	return a
}

func NewAuthWithVerifier(verifier Verifier, profiles ProfileSaver, log logger.Logger) *Auth {
	return &Auth{verifier: verifier, profiles: profiles, log: log}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			if a.mockUser.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			a.serveAs(w, r, next, a.mockUser)
			return
		}

		if a.debugHeader != "" {
			if ownerID := strings.TrimSpace(r.Header.Get(a.debugHeader)); ownerID != "" {
				a.serveAs(w, r, next, User{ID: ownerID})
				return
			}
		}

		if a.verifier == nil {
			writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		user, err := a.verifier.Verify(r.Context(), token)
		if err != nil || user.ID == "" {
			a.log.Debug("auth: token rejected", "error", err)
			unauthorized(w)
			return
		}

		a.serveAs(w, r, next, user)
	})
}

func (a *Auth) serveAs(w http.ResponseWriter, r *http.Request, next http.Handler, user User) {
	if a.profiles != nil {
		if err := a.profiles.UpsertProfile(r.Context(), user.ID, user.Email, user.Name); err != nil {
			a.log.InternalError("auth: upsert profile failed", err, "owner_id", user.ID)
		}
	}
	next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, ownerIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func OwnerIDFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	if !ok || ownerID == "" {
		return "", false
	}
	return ownerID, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
