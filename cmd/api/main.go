package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/prsentry/prsentry/internal/application"
	appai "github.com/prsentry/prsentry/internal/application/ai"
	appanalyses "github.com/prsentry/prsentry/internal/application/analyses"
	appfixtures "github.com/prsentry/prsentry/internal/application/fixtures"
	"github.com/prsentry/prsentry/internal/config"
	domai "github.com/prsentry/prsentry/internal/domain/ai"
	domanalyses "github.com/prsentry/prsentry/internal/domain/analyses"
	domfixtures "github.com/prsentry/prsentry/internal/domain/fixtures"
	geminiai "github.com/prsentry/prsentry/internal/infra/ai/gemini"
	localai "github.com/prsentry/prsentry/internal/infra/ai/local"
	openaiai "github.com/prsentry/prsentry/internal/infra/ai/openai"
	mysqlp "github.com/prsentry/prsentry/internal/infra/db/mysql"
	postgresp "github.com/prsentry/prsentry/internal/infra/db/postgres"
	"github.com/prsentry/prsentry/internal/infra/executor/gotest"
	"github.com/prsentry/prsentry/internal/infra/github"
	"github.com/prsentry/prsentry/internal/infra/httpserver"
	"github.com/prsentry/prsentry/internal/infra/scheduler"
	minioStore "github.com/prsentry/prsentry/internal/infra/storage"
	"github.com/prsentry/prsentry/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB (mysql or postgres)
	db, analysisRepo, fixtureRepo, err := connectDB(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init github client
	gh := github.NewClient(cfg.GitHub.Token, time.Duration(cfg.GitHub.TimeoutSeconds)*time.Second)

	// init AI client per provider
	analyst, err := newAnalyst(ctx, cfg)
	if err != nil {
		log.Fatalf("ai client init error: %v", err)
	}

	// init suite runner
	runner := gotest.NewRunner()
	if cfg.Suite.Command != "" {
		runner.Command = cfg.Suite.Command
	}

	// init services
	analysesSvc := &appanalyses.Service{
		Repo:      analysisRepo,
		Metadata:  gh,
		Analyst:   analyst,
		Artifacts: store,
		Clock:     application.SystemClock{},
	}
	aiSvc := appai.NewService(analyst, analysisRepo)
	fixturesSvc := &appfixtures.Service{
		Checker: gh,
		Repo:    fixtureRepo,
		Runner:  runner,
		Clock:   application.SystemClock{},
	}

	fixtureSet := cfg.FixtureSet()

	// schedule periodic fixture verification
	sched := scheduler.New()
	if cfg.Verify.Schedule != "" {
		err := sched.Start(cfg.Verify.Schedule, func() {
			results := fixturesSvc.VerifyAll(context.Background(), "system", fixtureSet)
			for _, r := range results {
				middleware.IncrementFixtureChecks()
				if r.Status != domfixtures.CheckOK {
					middleware.IncrementFixtureChecksFailed()
					log.Printf("fixture check failed: %s (%s): %s", r.Name, r.URL, r.Error)
				}
			}
		})
		if err != nil {
			log.Fatalf("scheduler error: %v", err)
		}
		defer sched.Stop()
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
		mux.Use(middleware.RequireValidTenant)
	}

	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Mount("/", httpserver.NewRouter(analysesSvc, aiSvc, fixturesSvc, fixtureSet))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, domanalyses.Repository, domfixtures.Repository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, postgresp.NewAnalysisRepository(db), postgresp.NewFixtureCheckRepository(db), nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db, mysqlp.NewAnalysisRepository(db), mysqlp.NewFixtureCheckRepository(db), nil
	}
}

func newAnalyst(ctx context.Context, cfg *config.Config) (domai.Client, error) {
	switch cfg.AI.Provider {
	case "gemini":
		return geminiai.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
	case "openai":
		return openaiai.NewClient(cfg.AI.APIKey, cfg.AI.Model), nil
	default:
		log.Println("no AI provider configured, using local analyst")
		return localai.NewClient(), nil
	}
}
