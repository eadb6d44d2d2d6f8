package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	stripe "github.com/stripe/stripe-go"

	"github.com/churchledger/server/models"
	"github.com/churchledger/server/money"
)

// Metadata keys the giving form sets on Stripe objects.
const (
	metaMemberID     = "memberId"
	metaMemberName   = "memberName"
	metaCategoryID   = "categoryId"
	metaCategoryName = "categoryName"
	metaAnonymous    = "anonymous"
)

const fallbackCategoryID = "general-fund"
const fallbackCategoryName = "General Fund"

// DonationCreator is the slice of the donation repository the handlers need.
type DonationCreator interface {
	Create(ctx context.Context, d *models.Donation) (*models.Donation, error)
}

// Defaults configure the category applied when the payment metadata names
// none. Passed in at construction; handlers never read the environment.
type Defaults struct {
	CategoryID   string
	CategoryName string
}

type Handlers struct {
	repo      DonationCreator
	defaults  Defaults
	onCreated []func(ctx context.Context, d *models.Donation)
}

func NewHandlers(repo DonationCreator, defaults Defaults) *Handlers {
	return &Handlers{repo: repo, defaults: defaults}
}

// OnCreated registers a best-effort follow-up (legacy mirror, notification,
// receipt) run after a donation record is written.
func (h *Handlers) OnCreated(fn func(ctx context.Context, d *models.Donation)) {
	h.onCreated = append(h.onCreated, fn)
}

// PaymentSucceeded maps a confirmed payment intent to a pending donation.
func (h *Handlers) PaymentSucceeded(ctx context.Context, event stripe.Event) Result {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return Result{Err: fmt.Sprintf("decode payment_intent payload: %v", err)}
	}

	d := h.donationFromMetadata(pi.Metadata, money.FromMinorUnits(pi.Amount), eventTime(event))
	d.PaymentIntentID = pi.ID

	created, err := h.repo.Create(ctx, d)
	if err != nil {
		return Result{Err: fmt.Sprintf("create donation for %s: %v", pi.ID, err)}
	}

	h.fanOut(ctx, created)
	return Result{Success: true, Processed: true, DonationID: created.ID}
}

// RecurringPaymentSucceeded maps a paid invoice to a donation. The amount
// recorded is what was actually paid; a short payment gets a disclosure note.
func (h *Handlers) RecurringPaymentSucceeded(ctx context.Context, event stripe.Event) Result {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return Result{Err: fmt.Sprintf("decode invoice payload: %v", err)}
	}

	paid := money.FromMinorUnits(inv.AmountPaid)
	due := money.FromMinorUnits(inv.AmountDue)

	d := h.donationFromMetadata(inv.Metadata, paid, eventTime(event))
	d.InvoiceID = inv.ID
	d.SubscriptionID = inv.Metadata["subscriptionId"]
	if inv.AmountPaid < inv.AmountDue {
		d.Note = money.PartialPaymentNote(paid, due)
	}

	created, err := h.repo.Create(ctx, d)
	if err != nil {
		return Result{Err: fmt.Sprintf("create donation for invoice %s: %v", inv.ID, err)}
	}

	h.fanOut(ctx, created)
	return Result{Success: true, Processed: true, DonationID: created.ID}
}

// PaymentFailed records nothing; logging the failure is the handling.
func (h *Handlers) PaymentFailed(ctx context.Context, event stripe.Event) Result {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return Result{Err: fmt.Sprintf("decode payment_intent payload: %v", err)}
	}

	reason := "unknown"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}
	logPaymentFailure("payment", pi.ID, pi.Metadata, money.FromMinorUnits(pi.Amount), reason)

	return Result{Success: true, Processed: true}
}

func (h *Handlers) RecurringPaymentFailed(ctx context.Context, event stripe.Event) Result {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return Result{Err: fmt.Sprintf("decode invoice payload: %v", err)}
	}

	logPaymentFailure("recurring payment", inv.ID, inv.Metadata, money.FromMinorUnits(inv.AmountDue), "invoice payment failed")

	return Result{Success: true, Processed: true}
}

func (h *Handlers) SubscriptionCancelled(ctx context.Context, event stripe.Event) Result {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return Result{Err: fmt.Sprintf("decode subscription payload: %v", err)}
	}

	member := sub.Metadata[metaMemberID]
	if member == "" {
		member = "anonymous"
	}
	log.Printf("recurring giving cancelled: subscription=%s member=%s status=%s", sub.ID, member, sub.Status)

	return Result{Success: true, Processed: true}
}

// donationFromMetadata builds the common donation shape from provider
// metadata: category falls back metadata -> configured default -> General
// Fund, and the anonymous flag suppresses donor identity.
func (h *Handlers) donationFromMetadata(meta map[string]string, amount float64, date time.Time) *models.Donation {
	categoryID := firstNonEmpty(meta[metaCategoryID], h.defaults.CategoryID, fallbackCategoryID)
	categoryName := firstNonEmpty(meta[metaCategoryName], h.defaults.CategoryName, fallbackCategoryName)
	anonymous := meta[metaAnonymous] == "true"

	donorID := meta[metaMemberID]
	donorName := meta[metaMemberName]
	if anonymous {
		donorID = ""
		donorName = ""
	}

	return &models.Donation{
		DonorID:      donorID,
		DonorName:    donorName,
		Amount:       amount,
		Date:         date,
		Method:       models.MethodStripe,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Status:       models.StatusPending,
		TaxYear:      date.Year(),
		Tax: &models.TaxCompliance{
			LineItem:        models.LineCashContribution,
			IsAnonymous:     anonymous,
			IsTaxDeductible: true,
			Restriction:     models.RestrictionNone,
		},
		CreatedBy: "stripe-webhook",
	}
}

func (h *Handlers) fanOut(ctx context.Context, d *models.Donation) {
	for _, fn := range h.onCreated {
		fn(ctx, d)
	}
}

func logPaymentFailure(kind, id string, meta map[string]string, amount float64, reason string) {
	if member := meta[metaMemberID]; member != "" && meta[metaAnonymous] != "true" {
		log.Printf("%s failed: ref=%s member=%s amount=%s reason=%s", kind, id, member, money.FormatUSD(amount), reason)
		return
	}
	log.Printf("%s failed: ref=%s donor=anonymous amount=%s reason=%s", kind, id, money.FormatUSD(amount), reason)
}

func eventTime(event stripe.Event) time.Time {
	if event.Created > 0 {
		return time.Unix(event.Created, 0).UTC()
	}
	return time.Now().UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
