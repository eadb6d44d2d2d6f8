// Package api exposes the HTTP surface: the Stripe webhook endpoint and the
// JSON routes for donations, categories, and financial reports.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/cors"

	"github.com/churchledger/server/donations"
	"github.com/churchledger/server/payments"
	"github.com/churchledger/server/receipts"
	"github.com/churchledger/server/webhooks"
)

type Server struct {
	repo       *donations.Repo
	dispatcher *webhooks.Dispatcher
	payments   *payments.Orchestrator
	receipts   *receipts.Sender
}

func NewServer(repo *donations.Repo, dispatcher *webhooks.Dispatcher, orchestrator *payments.Orchestrator) *Server {
	return &Server{
		repo:       repo,
		dispatcher: dispatcher,
		payments:   orchestrator,
	}
}

// WithReceipts enables the receipt-send route.
func (s *Server) WithReceipts(sender *receipts.Sender) *Server {
	s.receipts = sender
	return s
}

// Router mounts all routes. The middleware slot takes the auth middleware;
// the webhook route stays outside it since Stripe authenticates with its
// signature, not a bearer token.
func (s *Server) Router(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	webhookCORS := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST"},
		AllowedHeaders: []string{"Content-Type", "Stripe-Signature"},
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(webhookCORS.Handler)
		r.HandleFunc("/stripe", s.handleStripeWebhook)
	})

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", s.handleListDonations)
			r.Post("/", s.handleCreateDonation)
			r.Get("/{id}", s.handleGetDonation)
			r.Post("/{id}/status", s.handleTransition)
			r.Post("/{id}/receipt", s.handleSendReceipt)
			r.Delete("/{id}", s.handleDeleteDonation)
		})

		r.Get("/categories", s.handleListCategories)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", s.handleSummary)
			r.Get("/form990", s.handleForm990)
		})

		r.Post("/payments/one-time", s.handleOneTimePayment)
		r.Post("/payments/recurring", s.handleRecurringPayment)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
