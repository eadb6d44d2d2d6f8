// Package donations is the repository for donation records and their
// categories. The Firestore store backs production; the memory store backs
// tests and local development.
package donations

import (
	"context"
	"errors"
	"time"

	"github.com/churchledger/server/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrCategoryNotFound = errors.New("donation category not found")
)

// Filter narrows a donation listing. Zero values mean "no constraint".
type Filter struct {
	From       *time.Time
	To         *time.Time
	CategoryID string
	Method     models.PaymentMethod
	Status     models.DonationStatus
	TaxYear    int
	MinAmount  float64
	DonorID    string
}

// Matches reports whether a donation satisfies the filter. The Firestore
// store pushes what it can into the query and applies the rest here; the
// memory store applies everything here.
func (f Filter) Matches(d *models.Donation) bool {
	if f.From != nil && d.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && d.Date.After(*f.To) {
		return false
	}
	if f.CategoryID != "" && d.CategoryID != f.CategoryID {
		return false
	}
	if f.Method != "" && d.Method != f.Method {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.TaxYear != 0 && d.TaxYear != f.TaxYear {
		return false
	}
	if f.MinAmount > 0 && d.Amount < f.MinAmount {
		return false
	}
	if f.DonorID != "" && d.DonorID != f.DonorID {
		return false
	}
	return true
}

type Store interface {
	CreateDonation(ctx context.Context, d *models.Donation) error
	UpdateDonation(ctx context.Context, d *models.Donation) error
	DeleteDonation(ctx context.Context, id string) error
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	ListDonations(ctx context.Context, f Filter) ([]*models.Donation, error)

	CreateCategory(ctx context.Context, c *models.DonationCategory) error
	GetCategory(ctx context.Context, id string) (*models.DonationCategory, error)
	ListCategories(ctx context.Context) ([]*models.DonationCategory, error)

	// RecomputeCategoryStats rescans the category's donations and writes the
	// derived stats back to the category document.
	RecomputeCategoryStats(ctx context.Context, categoryID string) error
}

// ComputeStats derives category statistics from the donations referencing a
// category. Rejected and refunded records do not count toward giving totals.
func ComputeStats(donations []*models.Donation) models.CategoryStats {
	var stats models.CategoryStats
	for _, d := range donations {
		if d.Status == models.StatusRejected || d.Status == models.StatusRefunded {
			continue
		}
		stats.TotalAmount += d.Amount
		stats.DonationCount++
		if stats.LastDonationAt == nil || d.Date.After(*stats.LastDonationAt) {
			date := d.Date
			stats.LastDonationAt = &date
		}
	}
	if stats.DonationCount > 0 {
		stats.AverageAmount = stats.TotalAmount / float64(stats.DonationCount)
	}
	return stats
}
