package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

// TokenVerifierConfig describes the identity provider's signing setup.
type TokenVerifierConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// TokenVerifier validates identity-provider access tokens. It never sees
// credentials; the subject claim is trusted as the user id once the
// signature checks out.
type TokenVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenVerifier constructs a TokenVerifier for HS256 tokens.
func NewTokenVerifier(cfg TokenVerifierConfig) *TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &TokenVerifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

// Verify parses and validates a token returning its claims.
func (v *TokenVerifier) Verify(tokenString string) (*models.TokenClaims, error) {
	token, err := v.parser.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
