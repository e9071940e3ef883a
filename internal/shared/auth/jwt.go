// Package auth guards the HTTP surface with bearer-token authentication.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	sharederrors "github.com/daviag/bookshop-order-service/internal/shared/errors"
)

const (
	bearerPrefix = "bearer"
	// subjectContextKey carries the verified principal through the gin context.
	subjectContextKey = "auth.subject"
	// defaultClockSkew tolerates small clock drift between issuer and verifier.
	defaultClockSkew = 5 * time.Minute
)

// Config holds the verification parameters for incoming JWTs.
type Config struct {
	// Secret is the HMAC signing key shared with the token issuer.
	Secret []byte
	// Issuer, when set, must match the token's iss claim.
	Issuer string
	// ClockSkew defaults to defaultClockSkew when zero.
	ClockSkew time.Duration
}

// Middleware returns a gin handler that rejects unauthenticated requests with
// a problem+json 401 and stores the verified subject in the request context.
func Middleware(cfg Config) gin.HandlerFunc {
	skew := cfg.ClockSkew
	if skew == 0 {
		skew = defaultClockSkew
	}
	return func(c *gin.Context) {
		subject, err := verify(c.GetHeader("Authorization"), cfg, skew)
		if err != nil {
			sharederrors.Respond(c, sharederrors.ErrUnauthorized.WithDetail(err.Error()))
			c.Abort()
			return
		}
		c.Set(subjectContextKey, subject)
		c.Next()
	}
}

// SubjectFromContext returns the authenticated principal set by Middleware.
func SubjectFromContext(c *gin.Context) (string, bool) {
	subject, ok := c.Value(subjectContextKey).(string)
	return subject, ok && subject != ""
}

func verify(header string, cfg Config, skew time.Duration) (string, error) {
	raw, err := extractBearerToken(header)
	if err != nil {
		return "", err
	}
	parser := jwt.NewParser(jwt.WithLeeway(skew), jwt.WithExpirationRequired())
	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("missing subject claim")
	}
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return "", errors.New("invalid issuer")
	}
	return claims.Subject, nil
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}
