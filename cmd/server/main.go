// Server runs the campus dispatch HTTP API: session registry, report triage,
// community escalation and broadcast targeting behind one facade.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-dispatch/internal/audit"
	auditrepo "campus-dispatch/internal/audit/repository"
	broadcastengine "campus-dispatch/internal/broadcast/engine"
	broadcastrepo "campus-dispatch/internal/broadcast/repository"
	"campus-dispatch/internal/clock"
	communityengine "campus-dispatch/internal/community/engine"
	communityrepo "campus-dispatch/internal/community/repository"
	"campus-dispatch/internal/config"
	"campus-dispatch/internal/db"
	"campus-dispatch/internal/directory"
	"campus-dispatch/internal/dispatch"
	"campus-dispatch/internal/events"
	eventsotel "campus-dispatch/internal/events/otel"
	"campus-dispatch/internal/events/producer"
	identityrepo "campus-dispatch/internal/identity/repository"
	identityservice "campus-dispatch/internal/identity/service"
	policyengine "campus-dispatch/internal/policy/engine"
	policyrepo "campus-dispatch/internal/policy/repository"
	reportengine "campus-dispatch/internal/report/engine"
	reportrepo "campus-dispatch/internal/report/repository"
	"campus-dispatch/internal/security"
	"campus-dispatch/internal/server"
	sessionengine "campus-dispatch/internal/session/engine"
	sessionrepo "campus-dispatch/internal/session/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := eventsotel.NewProviders(ctx, cfg.OTLPEndpoint, "campus-dispatch", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer database.Close()
		log.Println("persistence enabled")
	} else {
		log.Println("DATABASE_URL unset, running in-memory only")
	}

	// Routing policy resolves once at startup; triage routing stays a pure
	// function of category for the process lifetime.
	var evaluator *policyengine.OPAEvaluator
	if database != nil {
		evaluator = policyengine.NewOPAEvaluator(policyrepo.NewPostgresRepository(database))
	} else {
		evaluator = policyengine.NewOPAEvaluator(nil)
	}
	table, err := evaluator.ResolveRoutingTable(ctx)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	clk := clock.NewSystem()
	registry := sessionengine.New(clk, cfg.Staleness(), cfg.CheckIn())
	triage, err := reportengine.New(clk, table)
	if err != nil {
		log.Fatalf("triage: %v", err)
	}
	community := communityengine.New(clk, communityengine.Thresholds{
		LowWaterMark:   cfg.EscalationLowWaterMark,
		Threshold:      cfg.EscalationThreshold,
		RejectionFloor: cfg.RejectionFloor,
	})

	var recipientDir directory.RecipientDirectory
	if database != nil {
		recipientDir = directory.NewPostgres(database)
	} else {
		recipientDir = directory.NewInMemory()
	}
	broadcasts := broadcastengine.New(clk, recipientDir, cfg.BroadcastMinRadiusM, cfg.BroadcastMaxRadiusM)

	var stores dispatch.Stores
	if database != nil {
		stores = dispatch.Stores{
			Sessions:   sessionrepo.NewPostgresRepository(database),
			Reports:    reportrepo.NewPostgresRepository(database),
			Posts:      communityrepo.NewPostgresRepository(database),
			Broadcasts: broadcastrepo.NewPostgresRepository(database),
		}
	}

	sinks := []events.Sink{eventsotel.NewEventSink(providers.LoggerProvider)}
	kafkaProducer, err := producer.NewKafkaProducer(cfg.EventsKafkaBrokersList(), cfg.EventsKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		sinks = append(sinks, kafkaProducer)
		log.Printf("event export enabled, topic %s", cfg.EventsKafkaTopic)
	}

	facade := dispatch.New(clk, registry, triage, community, broadcasts, stores, events.NewFanout(sinks...))
	facade.StartSweep(cfg.Sweep())
	defer facade.Stop()

	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	var auth *identityservice.AuthService
	var auditLogger audit.AuditLogger
	if database != nil {
		auth = identityservice.NewAuthService(identityrepo.NewPostgresRepository(database), hasher, tokens)
		auditLogger = audit.NewLogger(auditrepo.NewPostgresRepository(database), audit.ClientIPFromContext)
	} else {
		auth = identityservice.NewAuthService(identityrepo.NewInMemory(), hasher, tokens)
		auditLogger = audit.NewLogger(nil, nil)
	}

	var pinger server.Pinger
	if database != nil {
		pinger = database
	}
	handlers := server.NewHandlers(facade, auth, auditLogger, pinger, evaluator)
	router := server.NewRouter(handlers, tokens)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	drainCtx, drainCancel := context.WithTimeout(context.Background(), events.ShutdownDrainDuration)
	defer drainCancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("server stopped")
}
