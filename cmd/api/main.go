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

	"github.com/joho/godotenv"
	"github.com/vanity-address-api/internal/config"
	"github.com/vanity-address-api/internal/infrastructure/dynamo"
	"github.com/vanity-address-api/internal/infrastructure/inventory"
	"github.com/vanity-address-api/internal/infrastructure/ledger"
	transporthttp "github.com/vanity-address-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Ledger websocket client. Connection is lazy: the first submit or
	// trustline query dials, and later calls reconnect as needed.
	ledgerClient := ledger.NewWSClient(cfg.LedgerWSURL)

	inventoryClient := inventory.NewClient(cfg.VanityAPIURL, cfg.VanityAPISecret)

	deps := &transporthttp.Deps{
		OriginRepo:       dynamo.NewOriginRepo(dynamoClient, cfg.DynamoTables.Origins),
		APIKeyRepo:       dynamo.NewAPIKeyRepo(dynamoClient, cfg.DynamoTables.APIKeys),
		RegistrationRepo: dynamo.NewRegistrationRepo(dynamoClient, cfg.DynamoTables.UserRegistrations),
		WalletUserRepo:   dynamo.NewLinkageRepo(dynamoClient, cfg.DynamoTables.WalletUserPayloads),
		AccountRepo:      dynamo.NewLinkageRepo(dynamoClient, cfg.DynamoTables.AccountPayloads),
		SearchTermRepo:   dynamo.NewSearchTermRepo(dynamoClient, cfg.DynamoTables.SearchTerms),
		PurchaseRepo:     dynamo.NewPurchaseRepo(dynamoClient, cfg.DynamoTables.Purchases),
		StatisticsRepo:   dynamo.NewStatisticsRepo(dynamoClient, cfg.DynamoTables.Statistics),
		TempInfoRepo:     dynamo.NewTempInfoRepo[map[string]interface{}](dynamoClient, cfg.DynamoTables.TempInfo),
		Inventory:        inventoryClient,
		Ledger:           ledgerClient,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	ledgerClient.Close()
	log.Println("Server stopped")
}
