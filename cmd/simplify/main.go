package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"simplify/backend/internal/api"
	"simplify/backend/internal/config"
	"simplify/backend/internal/logging"
	"simplify/backend/internal/mcp"
	"simplify/backend/internal/report"
	"simplify/backend/internal/repository"
	"simplify/backend/internal/services"
	"simplify/backend/internal/storage"
	"simplify/backend/internal/store"
	syncadapter "simplify/backend/internal/sync"
	"simplify/backend/internal/wizard"
)

func main() {
	root := &cobra.Command{
		Use:   "simplify",
		Short: "Simplify workflow and time tracking service",
	}
	root.AddCommand(serveCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	ctx := context.Background()

	// Initialize logging
	logger := logging.NewLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return err
	}

	logger.Info("Starting Simplify Service")

	// Local state, hydrated from the storage slot
	slot := storage.NewFileSlot(cfg.Storage.Path)
	memStore, err := store.NewMemoryStore(slot, logger)
	if err != nil {
		logger.Error("Failed to load local state: %v", err)
		return err
	}

	// Optional persistence mirror
	var workflowStore store.WorkflowStore = memStore
	var syncer *syncadapter.Adapter
	if cfg.Sync.Enable {
		dbPool, err := initDatabase(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize database: %v", err)
			return err
		}
		defer dbPool.Close()

		syncer = syncadapter.NewAdapter(memStore, repository.NewPostgresStore(dbPool), logger)
		defer syncer.Close()
		if err := syncer.SeedRemote(ctx); err != nil {
			logger.Warn("Failed to seed remote mirror: %v", err)
		}
		workflowStore = syncer
		logger.Info("Persistence mirror enabled")
	}

	// Completion service and creation wizard
	client := services.NewAnthropicClient(cfg.Anthropic.BaseURL, cfg.Anthropic.APIKey)
	wiz := wizard.New(workflowStore, client, logger, wizard.Config{
		ChatModel:    cfg.Anthropic.ChatModel,
		SuggestModel: cfg.Anthropic.SuggestModel,
	})

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("simplify"))

	analyzer := report.NewGenerator(client, cfg.Anthropic.SuggestModel)
	srv := api.NewServer(workflowStore, wiz, analyzer, syncer, logger)
	e.GET("/health", srv.HandleHealth)
	srv.Register(e.Group("/api/v1"))

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(workflowStore)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting on %s", cfg.Server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error: %v", err)
			return err
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error: %v", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write a sample workflow into the local storage slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

func runSeed() error {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slot := storage.NewFileSlot(cfg.Storage.Path)
	st, err := store.NewMemoryStore(slot, logger)
	if err != nil {
		log.Fatalf("Failed to load local state: %v", err)
	}

	// Skip when the slot already has data
	if len(st.ListWorkflows()) > 0 {
		logger.Info("Storage already populated, nothing to do")
		return nil
	}

	workflowID, err := st.CreateWorkflow(store.NewWorkflow{
		Title:       "Hiring Pipeline",
		Description: "Screen, interview and onboard new engineers.",
		CreatedBy:   "seed",
	})
	if err != nil {
		log.Fatalf("Failed to create workflow: %v", err)
	}

	est := 120
	tasks := []store.NewTask{
		{Title: "Screen resumes", Description: "Review applicants against the role requirements.", Priority: "high", EstimatedTime: &est},
		{Title: "Schedule interviews", Description: "Coordinate panel availability with candidates.", Priority: "medium"},
		{Title: "Prepare onboarding docs", Description: "Collect equipment and access requests.", Priority: "low"},
	}
	for _, nt := range tasks {
		if _, err := st.CreateTask(workflowID, nt); err != nil {
			log.Fatalf("Failed to create task: %v", err)
		}
	}

	logger.Info("Seeded workflow %s with %d tasks", workflowID, len(tasks))
	return nil
}
