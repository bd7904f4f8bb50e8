package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/forumkit/auth-service/internal/account"
	"github.com/forumkit/auth-service/internal/audit"
	"github.com/forumkit/auth-service/internal/auth"
	"github.com/forumkit/auth-service/internal/db"
	"github.com/forumkit/auth-service/internal/sweep"
	"github.com/forumkit/auth-service/internal/token"
	"github.com/forumkit/auth-service/pkg/config"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	database, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}
	defer database.Close()

	accessTTL := time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute
	refreshTTL := time.Duration(cfg.RefreshTokenTTLHours) * time.Hour

	codec := token.NewCodec(token.CodecConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    accessTTL,
	})
	tokenStore := token.NewPostgresStore(database)
	rotator := token.NewRotator(tokenStore, refreshTTL)

	accountStore := account.NewPostgresStore(database)
	gate := account.NewVersionGate(accountStore)

	recorder := audit.NewRecorder(log)
	sessions := auth.NewSessionService(codec, tokenStore, rotator, gate, accountStore, refreshTTL, recorder, log)
	authenticator := auth.NewAuthenticator(codec, gate, accountStore, log)

	handler := auth.NewHandler(sessions, accountStore, auth.CookieConfig{
		Name:   cfg.RefreshCookieName,
		Path:   cfg.RefreshCookiePath,
		Secure: cfg.RefreshCookieSecure,
	}, refreshTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := sweep.NewSweeper(tokenStore, time.Duration(cfg.SweepIntervalHours)*time.Hour, log)
	go sweeper.Run(ctx)

	router := gin.Default()
	router.Use(auth.Middleware(authenticator))
	handler.Register(router)

	log.Info("starting server", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
