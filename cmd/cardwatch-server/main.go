package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cardwatch/server/internal/cardwatch/broadcast"
	"github.com/cardwatch/server/internal/cardwatch/service"
	sqlitestore "github.com/cardwatch/server/internal/cardwatch/store/sqlite"
	"github.com/cardwatch/server/internal/cardwatch/token"
	"github.com/cardwatch/server/internal/config"
	"github.com/cardwatch/server/internal/db"
	"github.com/cardwatch/server/internal/httpapi"
)

// Bootstrap account so a fresh deployment can be logged into.
// A deployment concern, not a security feature: change or disable it
// (CARDWATCH_SEED_DEFAULT=false) for anything public.
const (
	defaultRegNumber = "6216922"
	defaultName      = "Default User"
	defaultEmail     = "user@example.com"
	defaultPassword  = "password123"
)

// devJWTSecret is only ever used when CARDWATCH_ENV=dev.
const devJWTSecret = "cardwatch-dev-secret"

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "cardwatch-server ", log.LstdFlags|log.LUTC)

	if cfg.JWTSecret == "" {
		if cfg.Env == "prod" {
			logger.Fatal("CARDWATCH_JWT_SECRET must be set when CARDWATCH_ENV=prod")
		}
		cfg.JWTSecret = devJWTSecret
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	identityStore := sqlitestore.NewIdentityStore(conn, writer)
	eventStore := sqlitestore.NewEventStore(conn, writer)

	if cfg.SeedDefault {
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), cfg.BcryptCost)
		if err != nil {
			logger.Fatalf("hash seed password: %v", err)
		}
		if err := db.SeedDefaultIdentity(ctx, conn, db.SeedIdentity{
			RegNumber:    defaultRegNumber,
			Name:         defaultName,
			Email:        defaultEmail,
			PasswordHash: string(hash),
		}); err != nil {
			logger.Fatalf("seed: %v", err)
		}
		logger.Printf("default identity ensured (reg %s)", defaultRegNumber)
	}

	signer := token.NewSigner([]byte(cfg.JWTSecret), token.DefaultTTL)
	hub := broadcast.NewHub(logger)

	authSvc := service.NewAuthService(identityStore, signer, cfg.BcryptCost)
	ingestSvc := service.NewIngestService(eventStore, hub)
	statsSvc := service.NewStatsService(eventStore)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger: logger,
		Addr:   cfg.HTTPAddr,
		Auth:   authSvc,
		Ingest: ingestSvc,
		Stats:  statsSvc,
		Events: eventStore,
		Hub:    hub,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	hub.Close()
}
