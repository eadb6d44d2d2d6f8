// Package webhooks verifies, de-duplicates, and routes Stripe events to the
// donation lifecycle handlers.
package webhooks

import (
	"context"
	"fmt"
	"log"

	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/webhook"

	"github.com/churchledger/server/eventledger"
)

const (
	EventPaymentSucceeded      = "payment_intent.succeeded"
	EventPaymentFailed         = "payment_intent.payment_failed"
	EventRecurringSucceeded    = "invoice.payment_succeeded"
	EventRecurringFailed       = "invoice.payment_failed"
	EventSubscriptionCancelled = "customer.subscription.deleted"
)

// Result is the uniform outcome shape every handler produces. Processed is
// false for skipped events (duplicates and unsupported types), which are not
// errors.
type Result struct {
	Success    bool   `json:"success"`
	Processed  bool   `json:"processed"`
	EventID    string `json:"eventId"`
	EventType  string `json:"eventType"`
	DonationID string `json:"donationId,omitempty"`
	Err        string `json:"error,omitempty"`
	SkipReason string `json:"skipReason,omitempty"`
}

type handlerFunc func(ctx context.Context, event stripe.Event) Result

type Dispatcher struct {
	secret string
	ledger eventledger.Ledger
	routes map[string]handlerFunc
}

func NewDispatcher(secret string, ledger eventledger.Ledger, handlers *Handlers) *Dispatcher {
	return &Dispatcher{
		secret: secret,
		ledger: ledger,
		routes: map[string]handlerFunc{
			EventPaymentSucceeded:      handlers.PaymentSucceeded,
			EventPaymentFailed:         handlers.PaymentFailed,
			EventRecurringSucceeded:    handlers.RecurringPaymentSucceeded,
			EventRecurringFailed:       handlers.RecurringPaymentFailed,
			EventSubscriptionCancelled: handlers.SubscriptionCancelled,
		},
	}
}

// Handle verifies the signed payload and routes it. Verification failures
// come back as a coded *Error for the HTTP layer to map; every other outcome
// is a Result — handler failures are caught here, never propagated.
func (d *Dispatcher) Handle(ctx context.Context, payload []byte, sigHeader string) (Result, error) {
	if d.secret == "" {
		return Result{}, errMissingSecret()
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, d.secret)
	if err != nil {
		return Result{}, errInvalidSignature(err)
	}

	result := Result{EventID: event.ID, EventType: event.Type}

	handler, ok := d.routes[event.Type]
	if !ok {
		result.Success = true
		result.SkipReason = fmt.Sprintf("Unsupported event type: %s", event.Type)
		return result, nil
	}

	// Reserve before handling so a concurrent or replayed delivery of the
	// same event id cannot create a second donation.
	fresh, err := d.ledger.Reserve(ctx, event.ID, event.Type)
	if err != nil {
		result.Err = fmt.Sprintf("event ledger: %v", err)
		return result, nil
	}
	if !fresh {
		result.Success = true
		result.SkipReason = fmt.Sprintf("Event %s already processed", event.ID)
		return result, nil
	}

	out := d.invoke(ctx, handler, event)
	out.EventID = event.ID
	out.EventType = event.Type

	// A failed attempt must stay retriable by provider redelivery
	if !out.Success {
		if relErr := d.ledger.Release(ctx, event.ID); relErr != nil {
			log.Printf("release event %s after failure: %v", event.ID, relErr)
		}
	}

	return out, nil
}

// invoke shields the dispatcher from a panicking handler.
func (d *Dispatcher) invoke(ctx context.Context, handler handlerFunc, event stripe.Event) (out Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("webhook handler panic on %s (%s): %v", event.ID, event.Type, r)
			out = Result{Err: fmt.Sprintf("handler panic: %v", r)}
		}
	}()

	return handler(ctx, event)
}
