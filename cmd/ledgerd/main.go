/*
main.go - HTTP server entry point

PURPOSE:
  Runs the ledger engine behind the REST API for interactive inspection
  and live event submission. Optionally preloads a CSV event stream before
  serving, so a batch result can be explored over HTTP.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Open the storage backend
  3. Optionally drain the -input CSV through the engine
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -backend   Storage backend: memory (default), sqlite, bolt
  -db        Data path for the persistent backends
  -input     Optional event CSV to process before serving

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the storage backend
  4. Exit

EXAMPLES:
  # Explore a batch result interactively
  ledgerd -input=transactions.csv

  # Persistent engine, events arriving over HTTP
  ledgerd -backend=bolt -db=./data/ledger.db

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - cmd/engine/main.go: The batch CLI
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

	"github.com/warp/txledger/api"
	"github.com/warp/txledger/csv"
	"github.com/warp/txledger/factory"
	"github.com/warp/txledger/ledger"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	backend := flag.String("backend", "memory", fmt.Sprintf("storage backend, one of %v", factory.Backends))
	dbPath := flag.String("db", "", "data path for persistent backends")
	inputPath := flag.String("input", "", "optional event CSV to process before serving")
	flag.Parse()

	// Initialize stores
	stores, err := factory.Open(*backend, *dbPath)
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	defer stores.Close()

	engine := ledger.NewEngine(stores.Accounts, stores.Transactions)

	// Optional preload
	if *inputPath != "" {
		input, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		if err := engine.Run(context.Background(), csv.NewReader(input)); err != nil {
			input.Close()
			log.Fatalf("Failed to process input: %v", err)
		}
		input.Close()
		log.Printf("Preloaded events from %s", *inputPath)
	}

	// Create router
	router := api.NewRouter(api.NewHandler(engine))

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
		log.Printf("Ledger API listening on http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
