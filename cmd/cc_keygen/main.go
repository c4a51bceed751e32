// Command cc_keygen issues an API key into the configured PostgreSQL store
// and prints the plaintext once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/services"
	"github.com/SscSPs/currency_converter/internal/platform/config"
	"github.com/SscSPs/currency_converter/internal/repositories/database/pgsql"
	"github.com/SscSPs/currency_converter/pkg/database"
)

func main() {
	name := flag.String("name", "", "name of the key owner")
	perHour := flag.Int("requests-per-hour", 1000, "hourly request quota")
	validFor := flag.Duration("valid-for", 0, "lifetime of the key, 0 for no expiry")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.StorageDriver != config.StorageDriverPostgres {
		logger.Error("Issuing keys requires STORAGE_DRIVER=postgres")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	var expiresAt *time.Time
	if *validFor > 0 {
		t := time.Now().UTC().Add(*validFor)
		expiresAt = &t
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	keyService := services.NewAPIKeyService(repos.APIKeyRepo, nil)
	plain, err := keyService.IssueAPIKey(ctx, *name, *perHour, expiresAt)
	if err != nil {
		logger.Error("Failed to issue api key", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(plain)
}
