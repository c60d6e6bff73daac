/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for Verdict server
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cmd/verdict-server/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/verdictml/verdict/internal/api"
	"github.com/verdictml/verdict/internal/config"
	"github.com/verdictml/verdict/internal/db"
	"github.com/verdictml/verdict/internal/evaluation"
	"github.com/verdictml/verdict/internal/metrics"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	var (
		showVersion      = flag.Bool("version", false, "Show version information")
		showVersionShort = flag.Bool("v", false, "Show version information (short)")
		configPath       = flag.String("c", "", "Path to configuration file")
		configPathLong   = flag.String("config", "", "Path to configuration file")
		showHelp         = flag.Bool("help", false, "Show help message")
		showHelpShort    = flag.Bool("h", false, "Show help message (short)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Verdict Server - ML evaluation backend\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    Start server with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c config.yaml     Start server with custom config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --version          Show version information\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --help             Show this help message\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConfiguration:\n")
		fmt.Fprintf(os.Stderr, "  Configuration can be provided via:\n")
		fmt.Fprintf(os.Stderr, "  - Command line flag: -c or --config\n")
		fmt.Fprintf(os.Stderr, "  - Environment variable: CONFIG_PATH\n")
		fmt.Fprintf(os.Stderr, "  - Environment variables (see config package for details)\n")
	}
	flag.Parse()

	/* Handle version flag */
	if *showVersion || *showVersionShort {
		fmt.Printf("verdict version %s\n", version)
		fmt.Printf("Build date: %s\n", buildDate)
		fmt.Printf("Git commit: %s\n", gitCommit)
		os.Exit(0)
	}

	/* Handle help flag */
	if *showHelp || *showHelpShort {
		flag.Usage()
		os.Exit(0)
	}

	/* Load configuration */
	cfg := config.DefaultConfig()

	/* Determine config path - command line flag takes precedence over environment variable */
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = *configPathLong
	}
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}

	if cfgPath != "" {
		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v, using defaults\n", err)
		}
	} else {
		/* Load from environment variables if no config file */
		config.LoadFromEnv(cfg)
	}

	/* Initialize logging */
	metrics.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	/* Connect to database */
	database, err := db.NewDBWithRetry(cfg.Database.ConnString(), db.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}, 5, 2*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to connect to database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Connection: host=%s port=%d user=%s dbname=%s\n",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Database)
		os.Exit(1)
	}
	defer database.Close()

	/* Run migrations */
	migrationRunner, err := db.NewMigrationRunner(database.DB, cfg.Database.MigrationsDir)
	if err == nil {
		if err := migrationRunner.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: Migration failed: %v\n", err)
			os.Exit(1)
		}
	}

	/* Initialize components */
	queries := db.NewQueries(database.DB)
	queries.SetConnInfoFunc(database.GetConnInfoString)

	manager := evaluation.NewManager(queries)
	computer := evaluation.NewComputer(queries)

	/* Initialize API */
	handlers := api.NewHandlers(queries, manager, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return database.HealthCheck(ctx)
	})

	/* Setup router */
	router := mux.NewRouter()
	router.Use(api.RequestIDMiddleware)
	router.Use(api.SecurityHeadersMiddleware)
	router.Use(api.CORSMiddleware)
	router.Use(api.LoggingMiddleware)

	/* API routes */
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/datasets", handlers.CreateDataset).Methods("POST")
	apiRouter.HandleFunc("/datasets", handlers.ListDatasets).Methods("GET")
	apiRouter.HandleFunc("/datasets/{name}", handlers.GetDataset).Methods("GET")
	apiRouter.HandleFunc("/datasets/{name}", handlers.DeleteDataset).Methods("DELETE")
	apiRouter.HandleFunc("/datasets/{name}/datums", handlers.CreateDatum).Methods("POST")
	apiRouter.HandleFunc("/datasets/{name}/datums", handlers.ListDatums).Methods("GET")
	apiRouter.HandleFunc("/datasets/{name}/datums/{uid}", handlers.GetDatum).Methods("GET")
	apiRouter.HandleFunc("/datasets/{name}/datums/{uid}/annotations", handlers.CreateAnnotation).Methods("POST")
	apiRouter.HandleFunc("/datasets/{name}/datums/{uid}/annotations", handlers.ListAnnotations).Methods("GET")
	apiRouter.HandleFunc("/models", handlers.CreateModel).Methods("POST")
	apiRouter.HandleFunc("/models", handlers.ListModels).Methods("GET")
	apiRouter.HandleFunc("/models/{name}", handlers.GetModel).Methods("GET")
	apiRouter.HandleFunc("/models/{name}", handlers.DeleteModel).Methods("DELETE")
	apiRouter.HandleFunc("/labels", handlers.ListLabels).Methods("GET")
	apiRouter.HandleFunc("/evaluations", handlers.CreateEvaluation).Methods("POST")
	apiRouter.HandleFunc("/evaluations", handlers.ListEvaluations).Methods("GET")
	apiRouter.HandleFunc("/evaluations/{id}", handlers.GetEvaluation).Methods("GET")
	apiRouter.HandleFunc("/filters/validate", handlers.ValidateFilter).Methods("POST")
	apiRouter.HandleFunc("/stats", handlers.Stats).Methods("GET")

	/* Health check */
	router.HandleFunc("/health", handlers.Health).Methods("GET")

	/* Metrics endpoint */
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	/* Start evaluation worker */
	if cfg.Worker.Enabled {
		worker := evaluation.NewWorker(manager, computer, cfg.Worker.Concurrency, cfg.Worker.PollInterval)
		worker.Start()
		defer worker.Stop()
	}

	/* Report pool stats to Prometheus */
	statsCtx, statsCancel := context.WithCancel(context.Background())
	defer statsCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				open, idle, inUse := database.GetPoolStats()
				metrics.RecordDBPoolStats(cfg.Database.Database, open, idle, inUse)
			}
		}
	}()

	/* Start server */
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	/* Graceful shutdown */
	go func() {
		fmt.Printf("Server starting on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "FATAL: Server failed to start on %s: %v\n", addr, err)
			os.Exit(1)
		}
	}()

	/* Wait for interrupt signal */
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Server exited")
}
