package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"messagely/internal/common/constants"
	commonerrors "messagely/internal/common/errors"
)

type Config struct {
	HTTPPort         string
	DatabaseURL      string
	JWTSecret        string
	TokenTTL         time.Duration
	BcryptWorkFactor int
	RequestTimeout   time.Duration
}

func Load() (Config, error) {
	// A missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}

	if len(jwtSecret) < constants.JWTSecretMinLength {
		return Config{}, commonerrors.ErrInvalidJWTSecret.WithCause(
			fmt.Errorf("got %d bytes", len(jwtSecret)))
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:         getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:      databaseURL,
		JWTSecret:        jwtSecret,
		TokenTTL:         getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL),
		BcryptWorkFactor: getIntEnv("BCRYPT_WORK_FACTOR", constants.DefaultBcryptWorkFactor),
		RequestTimeout:   getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
