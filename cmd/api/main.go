package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "messagely/internal/auth/http"
	authservice "messagely/internal/auth/service"
	"messagely/internal/common/clock"
	"messagely/internal/common/config"
	commoncrypto "messagely/internal/common/crypto"
	"messagely/internal/common/db"
	commonhttp "messagely/internal/common/http"
	"messagely/internal/common/jwtverify"
	"messagely/internal/common/logger"
	srv "messagely/internal/common/server"
	messagehttp "messagely/internal/message/http"
	messagerepo "messagely/internal/message/repository"
	messageservice "messagely/internal/message/service"
	userhttp "messagely/internal/user/http"
	userrepo "messagely/internal/user/repository"
	userservice "messagely/internal/user/service"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	clk := clock.NewRealClock()
	hasher := commoncrypto.NewBcryptHasher(cfg.BcryptWorkFactor)
	idGenerator := commoncrypto.NewUUIDGenerator()

	users := userservice.NewService(userrepo.NewPgRepository(pool), hasher, clk, log)
	messages := messageservice.NewService(messagerepo.NewPgRepository(pool), clk, log)
	issuer := authservice.NewTokenIssuer(cfg.JWTSecret, idGenerator, cfg.TokenTTL, clk)
	auth := authservice.NewAuthService(users, issuer, log)

	authHandler := authhttp.NewHandler(auth, cfg.RequestTimeout, log)
	userHandler := userhttp.NewHandler(users, messages, cfg.RequestTimeout, log)
	messageHandler := messagehttp.NewHandler(messages, cfg.RequestTimeout, log)

	requireToken := jwtverify.Middleware(cfg.JWTSecret, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/auth/", authHandler)
	mux.Handle("/api/users", requireToken(userHandler))
	mux.Handle("/api/users/", requireToken(userHandler))
	mux.Handle("/api/messages", requireToken(messageHandler))
	mux.Handle("/api/messages/", requireToken(messageHandler))

	baseHandler := commonhttp.BuildBaseHandler(log, mux)

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), baseHandler)
	srv.StartWithGracefulShutdown(server, log, "api")
}
