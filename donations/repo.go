package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/churchledger/server/auth"
	"github.com/churchledger/server/models"
	"github.com/churchledger/server/money"
)

// Repo validates donation writes, applies role scoping to reads, and keeps
// category statistics current after every write.
type Repo struct {
	store Store
	now   func() time.Time

	onStatusChanged []func(ctx context.Context, d *models.Donation)
	onDeleted       []func(ctx context.Context, id string)
}

func NewRepo(store Store) *Repo {
	return &Repo{store: store, now: time.Now}
}

// OnStatusChanged registers a best-effort follow-up run after a lifecycle
// transition (legacy mirror refresh, notification).
func (r *Repo) OnStatusChanged(fn func(ctx context.Context, d *models.Donation)) {
	r.onStatusChanged = append(r.onStatusChanged, fn)
}

// OnDeleted registers a best-effort follow-up run after an admin hard-delete.
func (r *Repo) OnDeleted(fn func(ctx context.Context, id string)) {
	r.onDeleted = append(r.onDeleted, fn)
}

// Create validates and persists a new donation, then recomputes the stats of
// the referenced category.
func (r *Repo) Create(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	if err := r.validate(ctx, d); err != nil {
		return nil, err
	}

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Status == "" {
		d.Status = models.StatusPending
	}
	if d.TaxYear == 0 {
		d.TaxYear = d.Date.Year()
	}
	now := r.now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := r.store.CreateDonation(ctx, d); err != nil {
		return nil, err
	}
	if err := r.store.RecomputeCategoryStats(ctx, d.CategoryID); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repo) Update(ctx context.Context, d *models.Donation) (*models.Donation, error) {
	existing, err := r.store.GetDonation(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if err := r.validate(ctx, d); err != nil {
		return nil, err
	}

	d.CreatedAt = existing.CreatedAt
	d.CreatedBy = existing.CreatedBy
	d.UpdatedAt = r.now().UTC()

	if err := r.store.UpdateDonation(ctx, d); err != nil {
		return nil, err
	}
	if err := r.store.RecomputeCategoryStats(ctx, d.CategoryID); err != nil {
		return nil, err
	}
	// A category change must refresh the old category too
	if existing.CategoryID != d.CategoryID {
		if err := r.store.RecomputeCategoryStats(ctx, existing.CategoryID); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Delete hard-removes a record. Normal flow transitions status instead;
// this exists for admin correction only.
func (r *Repo) Delete(ctx context.Context, principal *auth.Principal, id string) error {
	if principal == nil || principal.Role != auth.RoleAdmin {
		return fmt.Errorf("Access denied")
	}

	existing, err := r.store.GetDonation(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.DeleteDonation(ctx, id); err != nil {
		return err
	}
	if err := r.store.RecomputeCategoryStats(ctx, existing.CategoryID); err != nil {
		return err
	}
	for _, fn := range r.onDeleted {
		fn(ctx, id)
	}
	return nil
}

// Get applies role scoping: donors read only their own records, finance
// reads everything but anonymous donor identity is stripped.
func (r *Repo) Get(ctx context.Context, principal *auth.Principal, id string) (*models.Donation, error) {
	if principal == nil {
		return nil, fmt.Errorf("Access denied")
	}

	d, err := r.store.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}

	switch principal.Role {
	case auth.RoleAdmin:
		return d, nil
	case auth.RoleFinance:
		scoped := d.Anonymized()
		return &scoped, nil
	default:
		if d.DonorID != principal.UID {
			return nil, fmt.Errorf("Access denied")
		}
		return d, nil
	}
}

func (r *Repo) List(ctx context.Context, principal *auth.Principal, f Filter) ([]*models.Donation, error) {
	if principal == nil {
		return nil, fmt.Errorf("Access denied")
	}

	if !principal.CanSeeAll() {
		f.DonorID = principal.UID
	}

	out, err := r.store.ListDonations(ctx, f)
	if err != nil {
		return nil, err
	}

	if principal.Role == auth.RoleFinance {
		for i, d := range out {
			scoped := d.Anonymized()
			out[i] = &scoped
		}
	}
	return out, nil
}

// Transition moves a donation through its lifecycle. Records are never
// deleted in the normal flow, only status-transitioned.
func (r *Repo) Transition(ctx context.Context, id string, status models.DonationStatus, actor string) (*models.Donation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid donation status %q", status)
	}

	d, err := r.store.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}

	d.Status = status
	d.UpdatedBy = actor
	d.UpdatedAt = r.now().UTC()

	if err := r.store.UpdateDonation(ctx, d); err != nil {
		return nil, err
	}
	if err := r.store.RecomputeCategoryStats(ctx, d.CategoryID); err != nil {
		return nil, err
	}
	for _, fn := range r.onStatusChanged {
		fn(ctx, d)
	}
	return d, nil
}

// MarkReceiptSent records that the donor's receipt went out.
func (r *Repo) MarkReceiptSent(ctx context.Context, id string) (*models.Donation, error) {
	d, err := r.store.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	d.ReceiptSent = true
	d.ReceiptSentAt = &now
	d.UpdatedAt = now

	if err := r.store.UpdateDonation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repo) Categories(ctx context.Context) ([]*models.DonationCategory, error) {
	return r.store.ListCategories(ctx)
}

func (r *Repo) validate(ctx context.Context, d *models.Donation) error {
	if err := money.ValidateAmount(d.Amount); err != nil {
		if errors.Is(err, money.ErrNotPositive) {
			return fmt.Errorf("donation amount must be greater than 0, got %v", d.Amount)
		}
		return fmt.Errorf("donation amount %v: %w", d.Amount, err)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("donation date is required")
	}
	if d.Date.After(r.now()) {
		return fmt.Errorf("donation date cannot be in the future")
	}
	if d.Tax == nil {
		return fmt.Errorf("tax compliance information is required")
	}
	if !d.Method.Valid() {
		return fmt.Errorf("unknown payment method %q", d.Method)
	}
	if d.TaxYear != 0 && (d.TaxYear < 1990 || d.TaxYear > r.now().Year()) {
		return fmt.Errorf("invalid tax year %d", d.TaxYear)
	}

	cat, err := r.store.GetCategory(ctx, d.CategoryID)
	if errors.Is(err, ErrCategoryNotFound) {
		return fmt.Errorf("donation category %q does not exist", d.CategoryID)
	}
	if err != nil {
		return err
	}
	if !cat.Active {
		return fmt.Errorf("donation category %q is not active", cat.Name)
	}
	return nil
}
