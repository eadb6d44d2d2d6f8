package donations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/churchledger/server/models"
)

// MemoryStore keeps donations and categories in maps. It backs tests and
// local development without a Firestore project.
type MemoryStore struct {
	mu         sync.RWMutex
	donations  map[string]models.Donation
	categories map[string]models.DonationCategory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		donations:  make(map[string]models.Donation),
		categories: make(map[string]models.DonationCategory),
	}
}

func (s *MemoryStore) CreateDonation(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.donations[d.ID] = *d
	return nil
}

func (s *MemoryStore) UpdateDonation(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.donations[d.ID]; !ok {
		return ErrNotFound
	}
	s.donations[d.ID] = *d
	return nil
}

func (s *MemoryStore) DeleteDonation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.donations[id]; !ok {
		return ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

func (s *MemoryStore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.donations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) ListDonations(ctx context.Context, f Filter) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Donation
	for _, d := range s.donations {
		d := d
		if f.Matches(&d) {
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, c *models.DonationCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetCategory(ctx context.Context, id string) (*models.DonationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]*models.DonationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DonationCategory
	for _, c := range s.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) RecomputeCategoryStats(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[categoryID]
	if !ok {
		return ErrCategoryNotFound
	}

	var all []*models.Donation
	for _, d := range s.donations {
		if d.CategoryID == categoryID {
			d := d
			all = append(all, &d)
		}
	}

	cat.Stats = ComputeStats(all)
	cat.UpdatedAt = time.Now().UTC()
	s.categories[categoryID] = cat
	return nil
}
