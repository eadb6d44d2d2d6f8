package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/churchledger/server/api"
	"github.com/churchledger/server/auth"
	"github.com/churchledger/server/config"
	"github.com/churchledger/server/db"
	"github.com/churchledger/server/donations"
	"github.com/churchledger/server/eventledger"
	"github.com/churchledger/server/legacy"
	"github.com/churchledger/server/models"
	"github.com/churchledger/server/notify"
	"github.com/churchledger/server/payments"
	"github.com/churchledger/server/receipts"
	"github.com/churchledger/server/webhooks"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("File .env not found!")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration: %v", err)
	}

	ctx := context.Background()

	firestoreClient, authClient, err := db.Clients(ctx)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}
	defer firestoreClient.Close()

	repo := donations.NewRepo(donations.NewFirestore(firestoreClient))

	ledger, err := eventledger.OpenSQLite(cfg.EventLedgerPath)
	if err != nil {
		log.Fatalf("event ledger: %v", err)
	}
	defer ledger.Close()

	handlers := webhooks.NewHandlers(repo, webhooks.Defaults{
		CategoryID:   cfg.DefaultCategoryID,
		CategoryName: cfg.DefaultCategoryName,
	})

	// Legacy Postgres mirror, kept while the old reporting tools still
	// read from it.
	if cfg.LegacyEnabled() {
		legacyDB := db.LegacyDB(cfg.LegacyConnectionName, cfg.LegacyUser, cfg.LegacyDatabase, cfg.LegacyPassword)
		if err := legacy.RunMigrations(legacyDB); err != nil {
			log.Fatalf("legacy migrations: %v", err)
		}

		mirror := legacy.NewMirror(legacyDB)
		handlers.OnCreated(func(ctx context.Context, d *models.Donation) {
			if err := mirror.Record(d); err != nil {
				log.Printf("legacy mirror: %v", err)
			}
		})
		repo.OnStatusChanged(func(ctx context.Context, d *models.Donation) {
			if err := mirror.Record(d); err != nil {
				log.Printf("legacy mirror: %v", err)
			}
		})
		repo.OnDeleted(func(ctx context.Context, id string) {
			if err := mirror.Remove(id); err != nil {
				log.Printf("legacy mirror: %v", err)
			}
		})
		log.Println("Legacy Postgres mirror enabled")
	}

	if cfg.AMQPURL != "" {
		publisher, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Fatalf("amqp: %v", err)
		}
		defer publisher.Close()

		handlers.OnCreated(func(ctx context.Context, d *models.Donation) {
			if err := publisher.DonationCreated(ctx, d); err != nil {
				log.Printf("notify: %v", err)
			}
		})
		repo.OnStatusChanged(func(ctx context.Context, d *models.Donation) {
			if err := publisher.DonationStatusChanged(ctx, d); err != nil {
				log.Printf("notify: %v", err)
			}
		})
		log.Println("AMQP notifications enabled")
	}

	dispatcher := webhooks.NewDispatcher(cfg.StripeWebhookSecret, ledger, handlers)

	var orchestrator *payments.Orchestrator
	if cfg.StripeKey != "" {
		orchestrator = payments.New(repo, cfg.StripeKey)
	}

	server := api.NewServer(repo, dispatcher, orchestrator)
	if cfg.MailgunDomain != "" && cfg.MailgunKey != "" {
		server.WithReceipts(receipts.NewSender(cfg.MailgunDomain, cfg.MailgunKey, cfg.ReceiptSender, repo))
		log.Println("Receipt mail enabled")
	}
	router := server.Router(auth.Middleware(authClient))

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Printf("Shutdown signal received: %s", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Donation server listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
