package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"complyd/internal/ack"
	ackhandler "complyd/internal/ack/handler"
	ackservice "complyd/internal/ack/service"
	"complyd/internal/audit"
	audithandler "complyd/internal/audit/handler"
	authhandler "complyd/internal/auth/handler"
	authservice "complyd/internal/auth/service"
	"complyd/internal/compliance"
	compliancehandler "complyd/internal/compliance/handler"
	httprouter "complyd/internal/http"
	"complyd/internal/otp"
	"complyd/internal/platform/config"
	"complyd/internal/platform/httpserver"
	"complyd/internal/platform/logger"
	"complyd/internal/platform/metrics"
	platformredis "complyd/internal/platform/redis"
	"complyd/internal/policy"
	policyhandler "complyd/internal/policy/handler"
	policyservice "complyd/internal/policy/service"
	"complyd/internal/roster"
	rosterhandler "complyd/internal/roster/handler"
	rosterservice "complyd/internal/roster/service"
	"complyd/internal/token"
	"complyd/pkg/email"
)

// main wires stores, services, and the HTTP surface, then owns the server
// lifecycle. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	// Stores fall back to in-memory twins when their backing service is not
	// configured, which keeps local development a single binary.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var (
		rosterStore roster.Store
		policyStore policy.Store
		ackStore    ack.Store
		auditStore  audit.Store
	)
	if db != nil {
		rosterStore = roster.NewPostgres(db)
		policyStore = policy.NewPostgres(db)
		ackStore = ack.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		rosterStore = roster.NewInMemoryStore()
		policyStore = policy.NewInMemoryStore()
		ackStore = ack.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	var otpStore otp.Store
	redisClient, err := platformredis.New(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		otpStore = otp.NewRedisStore(redisClient.Client)
	} else {
		log.Warn("REDIS_ADDR not set, using in-memory otp store")
		otpStore = otp.NewInMemoryStore()
	}

	var mail email.Sender
	if cfg.SMTPAddr != "" {
		mail = email.WithLogging(&email.SMTPSender{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}, log)
	} else {
		log.Warn("SMTP_ADDR not set, logging outbound mail instead")
		mail = &email.LogSender{Logger: log}
	}

	recorder := audit.NewRecorder(auditStore, log, m, 0)
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	go recorder.Run(recorderCtx)

	tokens := token.NewService(cfg.JWTSigningKey, "complyd", config.AccessTokenTTL)

	rosterSvc := rosterservice.New(rosterStore, recorder, mail)
	ackSvc := ackservice.New(ackStore, policyStore, recorder)
	policySvc := policyservice.New(policyStore, rosterSvc, ackSvc, recorder)
	complianceSvc := compliance.NewService(rosterSvc, policyStore, ackStore, m)
	authSvc := authservice.New(rosterStore, tokens, otpStore, mail, recorder, config.OTPTTL)

	router := httprouter.New(httprouter.Deps{
		Logger:     log,
		Metrics:    m,
		Validator:  tokens,
		Recorder:   recorder,
		Ready:      readiness(db, redisClient),
		Auth:       authhandler.New(authSvc, log),
		Roster:     rosterhandler.New(rosterSvc, log),
		Policies:   policyhandler.New(policySvc, log),
		Acks:       ackhandler.New(ackSvc, m, log),
		Compliance: compliancehandler.New(complianceSvc, log),
		AuditLogs:  audithandler.New(auditStore, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting complyd", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Stop the recorder last and wait for it, so buffered audit events are
	// persisted before the process exits.
	stopRecorder()
	recorder.Wait()
}

// readiness reports whether the configured backing services answer. Services
// that are not configured are not checked.
func readiness(db *sql.DB, redisClient *platformredis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
