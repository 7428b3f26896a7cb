package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"policyrelay/internal/domain"
	"policyrelay/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier implements Verifier against a remote JWKS endpoint. Used
// when SUPABASE_JWKS_URL (or equivalent) is configured.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a Verifier that fetches public keys from the
// given JWKS endpoint. Keys are cached and refreshed based on HTTP cache
// headers.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (Verifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// VerifyToken validates a JWT's signature against the JWKS and extracts
// its claims.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.ActorClaims{}, v.jwks.Keyfunc)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.ActorClaims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases resources held by the verifier. keyfunc v3 manages its
// own background refresh, so this is a no-op kept for symmetry with
// UnverifiedVerifier's interface.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}

// UnverifiedVerifier decodes a bearer token's claims without checking its
// signature. This is the fallback identity pass-through used when no JWKS
// endpoint is configured: it trusts whatever sits in front of this service
// (an API gateway, a reverse proxy) to have already authenticated the
// caller, and only extracts the subject for logging and routing.
type UnverifiedVerifier struct {
	logger *slog.Logger
}

// NewUnverifiedVerifier returns a Verifier that extracts claims without
// signature verification.
func NewUnverifiedVerifier(logger *slog.Logger) *UnverifiedVerifier {
	return &UnverifiedVerifier{logger: logger}
}

func (v *UnverifiedVerifier) VerifyToken(tokenString string) (*models.ActorClaims, error) {
	claims := &models.ActorClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		v.logger.Debug("token decode failed", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (v *UnverifiedVerifier) Close() error {
	return nil
}
