package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/backend/internal/access/engine"
	"taskhub/backend/internal/audit"
	auditrepo "taskhub/backend/internal/audit/repository"
	"taskhub/backend/internal/config"
	"taskhub/backend/internal/db"
	identityhandler "taskhub/backend/internal/identity/handler"
	identityservice "taskhub/backend/internal/identity/service"
	membershiprepo "taskhub/backend/internal/membership/repository"
	"taskhub/backend/internal/notification"
	"taskhub/backend/internal/platform/rbac"
	policyhandler "taskhub/backend/internal/policy/handler"
	policyrepo "taskhub/backend/internal/policy/repository"
	policyservice "taskhub/backend/internal/policy/service"
	tokenrepo "taskhub/backend/internal/refreshtoken/repository"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/server"
	"taskhub/backend/internal/server/middleware"
	"taskhub/backend/internal/sweep"
	taskhandler "taskhub/backend/internal/task/handler"
	taskrepo "taskhub/backend/internal/task/repository"
	taskservice "taskhub/backend/internal/task/service"
	teamhandler "taskhub/backend/internal/team/handler"
	teamrepo "taskhub/backend/internal/team/repository"
	teamservice "taskhub/backend/internal/team/service"
	"taskhub/backend/internal/telemetry"
	telemetryotel "taskhub/backend/internal/telemetry/otel"
	"taskhub/backend/internal/telemetry/producer"
	userhandler "taskhub/backend/internal/user/handler"
	userrepo "taskhub/backend/internal/user/repository"
	userservice "taskhub/backend/internal/user/service"
	verificationrepo "taskhub/backend/internal/verification/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "taskhub-server", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	metrics, err := telemetryotel.NewMetrics(providers.MeterProvider.Meter("taskhub"))
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	tokens := tokenrepo.NewPostgresRepository(conn)
	verifications := verificationrepo.NewPostgresRepository(conn)
	teams := teamrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	tasks := taskrepo.NewPostgresRepository(conn)
	policies := policyrepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)

	// Telemetry to Kafka is optional; without brokers events go to OTel logs only.
	var emitter telemetry.EventEmitter
	if kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic); err != nil {
		log.Printf("telemetry: kafka producer: %v", err)
	} else if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitter = kafkaProducer
	} else {
		emitter = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	}

	auditor := audit.NewLogger(audits, nil)
	codec := security.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience)
	hasher := security.NewHasher(cfg.BcryptCost)

	evaluator := engine.NewOPAEvaluator(policies)
	if err := evaluator.HealthCheck(ctx); err != nil {
		log.Fatalf("policy engine: %v", err)
	}
	guard := rbac.NewGuard(teams, memberships, evaluator)

	authSvc := identityservice.NewAuthService(
		users, tokens, verifications,
		notification.LogMailer{},
		hasher, codec,
		cfg.AccessTTL(), cfg.RefreshTTL(),
		cfg.VerificationBaseURL+"/api/auth/verify",
		auditor, emitter, metrics,
	)
	userSvc := userservice.NewUserService(users, memberships, teams, hasher, auditor)
	teamSvc := teamservice.NewTeamService(teams, memberships, users, guard, auditor, metrics)
	taskSvc := taskservice.NewTaskService(tasks, guard, auditor, emitter, metrics)
	policySvc := policyservice.NewPolicyService(guard, policies, auditor)

	requestMetrics, err := middleware.RequestMetrics(providers.MeterProvider.Meter("taskhub"))
	if err != nil {
		log.Fatalf("metrics middleware: %v", err)
	}

	e := server.New(&server.Deps{
		AuthHandler:   &identityhandler.AuthHTTP{Svc: authSvc},
		UserHandler:   &userhandler.UserHTTP{Svc: userSvc},
		TeamHandler:   &teamhandler.TeamHTTP{Svc: teamSvc},
		TaskHandler:   &taskhandler.TaskHTTP{Svc: taskSvc},
		PolicyHandler: &policyhandler.PolicyHTTP{Svc: policySvc},
		Auth:          middleware.NewAuth(codec),
		Metrics:       requestMetrics,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweeper := sweep.New(tokens, verifications, cfg.SweepInterval())
	go sweeper.Run(sweepCtx)

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Give in-flight async telemetry emits time to finish before the
	// providers flush.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
