package receipts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/churchledger/server/models"
)

type markerSpy struct {
	marked []string
}

func (m *markerSpy) MarkReceiptSent(ctx context.Context, id string) (*models.Donation, error) {
	m.marked = append(m.marked, id)
	return &models.Donation{ID: id, ReceiptSent: true}, nil
}

func TestSendSkipsAnonymousDonations(t *testing.T) {
	repo := &markerSpy{}
	s := NewSender("mg.example.org", "key-test", "Giving <giving@example.org>", repo)

	d := &models.Donation{
		ID:  "don_anon",
		Tax: &models.TaxCompliance{IsAnonymous: true},
	}

	assert.NoError(t, s.Send(context.Background(), d, "someone@example.org"))
	assert.Empty(t, repo.marked)
}

func TestSendSkipsMissingAddress(t *testing.T) {
	repo := &markerSpy{}
	s := NewSender("mg.example.org", "key-test", "Giving <giving@example.org>", repo)

	d := &models.Donation{
		ID:  "don_1",
		Tax: &models.TaxCompliance{},
	}

	assert.NoError(t, s.Send(context.Background(), d, ""))
	assert.Empty(t, repo.marked)
}
