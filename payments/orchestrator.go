// Package payments sequences a charge or subscription with Stripe and then
// records the resulting donation. Any provider-side failure aborts before a
// donation record is written.
package payments

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/card"
	"github.com/stripe/stripe-go/customer"
	"github.com/stripe/stripe-go/paymentintent"
	"github.com/stripe/stripe-go/sub"

	"github.com/churchledger/server/models"
	"github.com/churchledger/server/money"
)

type DonationCreator interface {
	Create(ctx context.Context, d *models.Donation) (*models.Donation, error)
}

// OneTimeRequest describes a single charge entered through the giving form.
type OneTimeRequest struct {
	DonorID         string
	DonorName       string
	DonorEmail      string
	Amount          float64
	PaymentMethodID string
	CategoryID      string
	CategoryName    string
	Anonymous       bool
	Note            string
}

// RecurringRequest sets up a subscription plan for a donor.
type RecurringRequest struct {
	DonorID    string
	DonorName  string
	DonorEmail string
	CardToken  string
	PlanID     string

	// First-cycle donation details
	Amount       float64
	CategoryID   string
	CategoryName string
	Anonymous    bool
}

type Orchestrator struct {
	repo DonationCreator
}

// New configures the Stripe client key once, at construction.
func New(repo DonationCreator, stripeKey string) *Orchestrator {
	stripe.Key = stripeKey
	return &Orchestrator{repo: repo}
}

// OneTime creates and confirms a payment intent, then records the donation
// referencing it.
func (o *Orchestrator) OneTime(ctx context.Context, req OneTimeRequest) (*models.Donation, error) {
	if err := money.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("payment amount: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(money.ToMinorUnits(req.Amount)),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	params.AddMetadata("memberId", req.DonorID)
	params.AddMetadata("categoryId", req.CategoryID)
	if req.Anonymous {
		params.AddMetadata("anonymous", "true")
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if pi.Status == stripe.PaymentIntentStatusRequiresConfirmation {
		if pi, err = paymentintent.Confirm(pi.ID, nil); err != nil {
			return nil, fmt.Errorf("confirm payment intent %s: %w", pi.ID, err)
		}
	}

	d := o.donation(req.DonorID, req.DonorName, req.Amount, req.CategoryID, req.CategoryName, req.Anonymous)
	d.PaymentIntentID = pi.ID
	d.Note = req.Note

	created, err := o.repo.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("record donation for %s: %w", pi.ID, err)
	}
	return created, nil
}

// Recurring creates the customer, attaches the card, starts the
// subscription, then records the first donation referencing it.
func (o *Orchestrator) Recurring(ctx context.Context, req RecurringRequest) (*models.Donation, error) {
	if err := money.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("payment amount: %w", err)
	}

	cus, err := customer.New(&stripe.CustomerParams{
		Name:  stripe.String(req.DonorName),
		Email: stripe.String(req.DonorEmail),
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	if _, err := card.New(&stripe.CardParams{
		Customer: stripe.String(cus.ID),
		Token:    stripe.String(req.CardToken),
	}); err != nil {
		return nil, fmt.Errorf("attach card for %s: %w", cus.ID, err)
	}

	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(cus.ID),
		Items: []*stripe.SubscriptionItemsParams{
			{
				Plan: stripe.String(req.PlanID),
			},
		},
	}
	subParams.AddMetadata("memberId", req.DonorID)
	subParams.AddMetadata("categoryId", req.CategoryID)

	subscription, err := sub.New(subParams)
	if err != nil {
		return nil, fmt.Errorf("create subscription for %s: %w", cus.ID, err)
	}

	d := o.donation(req.DonorID, req.DonorName, req.Amount, req.CategoryID, req.CategoryName, req.Anonymous)
	d.SubscriptionID = subscription.ID

	created, err := o.repo.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("record donation for %s: %w", subscription.ID, err)
	}
	return created, nil
}

// CancelSubscription stops a recurring gift at the provider.
func (o *Orchestrator) CancelSubscription(ctx context.Context, id string) error {
	if _, err := sub.Cancel(id, nil); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", id, err)
	}
	return nil
}

func (o *Orchestrator) donation(donorID, donorName string, amount float64, categoryID, categoryName string, anonymous bool) *models.Donation {
	if anonymous {
		donorID = ""
		donorName = ""
	}
	return &models.Donation{
		DonorID:      donorID,
		DonorName:    donorName,
		Amount:       amount,
		Date:         time.Now().UTC(),
		Method:       models.MethodStripe,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Status:       models.StatusPending,
		Tax: &models.TaxCompliance{
			LineItem:        models.LineCashContribution,
			IsAnonymous:     anonymous,
			IsTaxDeductible: true,
			Restriction:     models.RestrictionNone,
		},
		CreatedBy: "giving-form",
	}
}
