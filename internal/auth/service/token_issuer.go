package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"messagely/internal/common/clock"
	commoncrypto "messagely/internal/common/crypto"
	"messagely/internal/observability/metrics"
)

// TokenIssuer mints the opaque signed session token bound to a username. The
// token is verifiable without a storage round trip.
type TokenIssuer struct {
	jwtSecret   []byte
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	tokenTTL    time.Duration
}

func NewTokenIssuer(
	jwtSecret string,
	idGenerator commoncrypto.IDGenerator,
	tokenTTL time.Duration,
	clk clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		jwtSecret:   []byte(jwtSecret),
		idGenerator: idGenerator,
		clock:       clk,
		tokenTTL:    tokenTTL,
	}
}

func (ti *TokenIssuer) Issue(username string) (string, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", err
	}

	now := ti.clock.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"jti": jti,
		"exp": now.Add(ti.tokenTTL).Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(ti.jwtSecret)
	if err != nil {
		return "", err
	}

	metrics.AccessTokensIssued.Inc()
	return tokenString, nil
}
