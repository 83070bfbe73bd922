package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier accepts HS256 tokens signed with a shared secret. The subject
// claim is the owner id.
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (User, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return User{}, ErrInvalidToken
	}

	return User{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// Sign issues a token whose subject is user.ID.
func (v *JWTVerifier) Sign(user User, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = user.ID
	if v.issuer != "" && claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:            user.Email,
		Name:             user.Name,
		RegisteredClaims: claims,
	})
	return token.SignedString(v.secret)
}
