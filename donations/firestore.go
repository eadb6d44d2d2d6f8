package donations

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/churchledger/server/models"
)

const (
	donationsCollection  = "donations"
	categoriesCollection = "donation_categories"
)

// Firestore stores donations and categories as documents, mirroring the
// collections the web application reads.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) CreateDonation(ctx context.Context, d *models.Donation) error {
	if _, err := s.client.Collection(donationsCollection).Doc(d.ID).Create(ctx, d); err != nil {
		return fmt.Errorf("create donation %s: %w", d.ID, err)
	}
	return nil
}

func (s *Firestore) UpdateDonation(ctx context.Context, d *models.Donation) error {
	if _, err := s.client.Collection(donationsCollection).Doc(d.ID).Set(ctx, d); err != nil {
		return fmt.Errorf("update donation %s: %w", d.ID, err)
	}
	return nil
}

func (s *Firestore) DeleteDonation(ctx context.Context, id string) error {
	if _, err := s.client.Collection(donationsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete donation %s: %w", id, err)
	}
	return nil
}

func (s *Firestore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	snap, err := s.client.Collection(donationsCollection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get donation %s: %w", id, err)
	}

	var d models.Donation
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode donation %s: %w", id, err)
	}
	return &d, nil
}

func (s *Firestore) ListDonations(ctx context.Context, f Filter) ([]*models.Donation, error) {
	q := s.client.Collection(donationsCollection).Query
	if f.From != nil {
		q = q.Where("date", ">=", *f.From)
	}
	if f.To != nil {
		q = q.Where("date", "<=", *f.To)
	}
	if f.CategoryID != "" {
		q = q.Where("categoryId", "==", f.CategoryID)
	}
	if f.Method != "" {
		q = q.Where("method", "==", string(f.Method))
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.TaxYear != 0 {
		q = q.Where("taxYear", "==", f.TaxYear)
	}
	if f.DonorID != "" {
		q = q.Where("donorId", "==", f.DonorID)
	}
	// Firestore allows a range on one field only; the date range takes it,
	// so the amount threshold is applied after the fetch.

	var out []*models.Donation
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list donations: %w", err)
		}

		var d models.Donation
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode donation %s: %w", snap.Ref.ID, err)
		}
		if f.MinAmount > 0 && d.Amount < f.MinAmount {
			continue
		}
		out = append(out, &d)
	}
	return out, nil
}

func (s *Firestore) CreateCategory(ctx context.Context, c *models.DonationCategory) error {
	if _, err := s.client.Collection(categoriesCollection).Doc(c.ID).Create(ctx, c); err != nil {
		return fmt.Errorf("create category %s: %w", c.ID, err)
	}
	return nil
}

func (s *Firestore) GetCategory(ctx context.Context, id string) (*models.DonationCategory, error) {
	snap, err := s.client.Collection(categoriesCollection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}

	var c models.DonationCategory
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode category %s: %w", id, err)
	}
	return &c, nil
}

func (s *Firestore) ListCategories(ctx context.Context) ([]*models.DonationCategory, error) {
	var out []*models.DonationCategory
	iter := s.client.Collection(categoriesCollection).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}

		var c models.DonationCategory
		if err := snap.DataTo(&c); err != nil {
			return nil, fmt.Errorf("decode category %s: %w", snap.Ref.ID, err)
		}
		out = append(out, &c)
	}
	return out, nil
}

// RecomputeCategoryStats runs inside a transaction on the category document
// so concurrent donation writes to the same category serialize instead of
// racing on the aggregate counters.
func (s *Firestore) RecomputeCategoryStats(ctx context.Context, categoryID string) error {
	catRef := s.client.Collection(categoriesCollection).Doc(categoryID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(catRef)
		if snap != nil && !snap.Exists() {
			return ErrCategoryNotFound
		}
		if err != nil {
			return err
		}

		var cat models.DonationCategory
		if err := snap.DataTo(&cat); err != nil {
			return err
		}

		q := s.client.Collection(donationsCollection).Where("categoryId", "==", categoryID)
		docs, err := tx.Documents(q).GetAll()
		if err != nil {
			return err
		}

		all := make([]*models.Donation, 0, len(docs))
		for _, doc := range docs {
			var d models.Donation
			if err := doc.DataTo(&d); err != nil {
				return err
			}
			all = append(all, &d)
		}

		cat.Stats = ComputeStats(all)
		cat.UpdatedAt = time.Now().UTC()
		return tx.Set(catRef, cat)
	})
	if err != nil {
		return fmt.Errorf("recompute stats for category %s: %w", categoryID, err)
	}
	return nil
}
