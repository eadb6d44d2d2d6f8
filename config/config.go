// Package config loads all environment configuration once at startup.
// Components receive the values they need at construction time instead of
// reading the process environment at call time.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// HTTP server
	Port string

	// Stripe
	StripeKey           string
	StripeWebhookSecret string

	// Donation defaults for webhook-created records
	DefaultCategoryID   string
	DefaultCategoryName string

	// Durable webhook-event ledger (sqlite)
	EventLedgerPath string

	// Legacy CloudSQL Postgres mirror
	LegacyConnectionName string
	LegacyUser           string
	LegacyDatabase       string
	LegacyPassword       string
	LegacySocketPrefix   string

	// AMQP notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Mailgun receipts
	MailgunDomain string
	MailgunKey    string
	ReceiptSender string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		StripeKey:           os.Getenv("STRIPE_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		DefaultCategoryID:   getEnv("DEFAULT_CATEGORY_ID", "general-fund"),
		DefaultCategoryName: getEnv("DEFAULT_CATEGORY_NAME", "General Fund"),

		EventLedgerPath: getEnv("EVENT_LEDGER_PATH", "./data/events.db"),

		LegacyConnectionName: os.Getenv("CLOUDSQL_CONNECTION_NAME"),
		LegacyUser:           os.Getenv("CLOUDSQL_USER"),
		LegacyDatabase:       os.Getenv("CLOUDSQL_DATABASE_NAME"),
		LegacyPassword:       os.Getenv("CLOUDSQL_PASSWORD"),
		LegacySocketPrefix:   getEnv("CLOUDSQL_SOCKET_PREFIX", "/cloudsql"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "donations"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "donation_events"),

		MailgunDomain: os.Getenv("MAILGUN_DOMAIN"),
		MailgunKey:    os.Getenv("MAILGUN_KEY"),
		ReceiptSender: getEnv("RECEIPT_SENDER", "Giving <giving@localhost>"),
	}
}

// Validate checks the values a running server cannot do without. Optional
// integrations (legacy mirror, AMQP, Mailgun) are allowed to be unset.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	if c.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}
	if c.DefaultCategoryID == "" {
		return fmt.Errorf("DEFAULT_CATEGORY_ID cannot be empty")
	}

	return nil
}

// LegacyEnabled reports whether the Postgres mirror is configured.
func (c *Config) LegacyEnabled() bool {
	return c.LegacyConnectionName != "" && c.LegacyUser != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
