package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/modkit-dev/modkit/pkg/secctx"
)

// AuthProvider validates a bearer token and yields a Security Context,
// the "platform-provided auth component" spec §5 names. It is the
// extension point a deployment swaps for its real identity provider;
// JWTAuthProvider below is the one this framework ships.
type AuthProvider interface {
	Validate(ctx context.Context, token string) (secctx.SecurityContext, error)
}

// jwtClaims is the expected shape of the bearer token's claims. A
// deployment with a richer token format can implement AuthProvider
// itself instead of using JWTAuthProvider.
type jwtClaims struct {
	jwt.RegisteredClaims
	TenantID    string            `json:"tenant_id"`
	SubjectType string            `json:"subject_type"`
	Properties  map[string]string `json:"properties"`
}

// JWTAuthProvider validates HMAC-signed bearer tokens locally.
type JWTAuthProvider struct {
	secret []byte
}

func NewJWTAuthProvider(secret []byte) *JWTAuthProvider {
	return &JWTAuthProvider{secret: secret}
}

func (p *JWTAuthProvider) Validate(_ context.Context, token string) (secctx.SecurityContext, error) {
	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return secctx.SecurityContext{}, fmt.Errorf("gateway: invalid bearer token: %w", err)
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return secctx.SecurityContext{}, fmt.Errorf("gateway: token subject is not a uuid: %w", err)
	}

	var tenantID uuid.UUID
	if claims.TenantID != "" {
		tenantID, err = uuid.Parse(claims.TenantID)
		if err != nil {
			return secctx.SecurityContext{}, fmt.Errorf("gateway: token tenant_id is not a uuid: %w", err)
		}
	}

	subjectType := secctx.SubjectType(strings.ToLower(claims.SubjectType))
	if subjectType == "" {
		subjectType = secctx.SubjectUser
	}

	return secctx.New(tenantID, subjectID, subjectType, claims.Properties), nil
}

// BreakingAuthProvider wraps an AuthProvider with a circuit breaker
// (spec's domain-stack entry: "Circuit-breaks calls to the external
// auth/Security-Context provider"), the same thin-adapter shape
// r3e-network-service_layer/infrastructure/resilience/resilience.go
// uses around sony/gobreaker/v2 — preserving the wrapped type's own
// method signature rather than exposing gobreaker's API directly.
type BreakingAuthProvider struct {
	inner AuthProvider
	cb    *gobreaker.CircuitBreaker[secctx.SecurityContext]
}

// NewBreakingAuthProvider trips open after maxFailures consecutive
// validation failures and stays open for resetTimeout before probing
// again.
func NewBreakingAuthProvider(inner AuthProvider, maxFailures uint32, resetTimeout time.Duration) *BreakingAuthProvider {
	settings := gobreaker.Settings{
		Name:    "gateway.auth_provider",
		Timeout: resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}

	return &BreakingAuthProvider{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[secctx.SecurityContext](settings),
	}
}

func (b *BreakingAuthProvider) Validate(ctx context.Context, token string) (secctx.SecurityContext, error) {
	return b.cb.Execute(func() (secctx.SecurityContext, error) {
		return b.inner.Validate(ctx, token)
	})
}
