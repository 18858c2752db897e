/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load environment configuration (gateway credentials, reports dir)
  3. Initialize SQLite store
  4. Wire ledger, settler, report service, API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: payroll.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  GATEWAY_URL         Payment provider base URL
  GATEWAY_KEY_ID      Provider key id (basic auth user)
  GATEWAY_KEY_SECRET  Provider key secret; also the HMAC signature key
  ORDER_TTL_MINUTES   Gateway order expiry (default 30)
  REPORTS_DIR         Where generated reports are written (default ./reports)
  A .env file is honored in development.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/autoweave/payroll-engine/api"
	"github.com/autoweave/payroll-engine/config"
	"github.com/autoweave/payroll-engine/gateway"
	"github.com/autoweave/payroll-engine/payroll"
	"github.com/autoweave/payroll-engine/reports"
	"github.com/autoweave/payroll-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "payroll.db", "SQLite database path")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		sugar.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire the domain
	gw := gateway.NewHTTPClient(cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, sugar)
	ledger := payroll.NewLedger(store)
	settler := payroll.NewSettler(store, gw, cfg.OrderTTL, sugar)

	reportSvc, err := reports.NewService(store, store, cfg.ReportsDir)
	if err != nil {
		sugar.Fatalf("Failed to initialize report service: %v", err)
	}

	handler := api.NewHandler(store, ledger, settler, reportSvc, sugar)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		sugar.Infof("🚀 Server starting on http://localhost:%d", *port)
		sugar.Infof("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugar.Fatalf("Server forced to shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
