package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchledger/server/models"
)

func TestMessageRoundTrip(t *testing.T) {
	d := &models.Donation{
		ID:         "don_1",
		DonorID:    "member_123",
		CategoryID: "general-fund",
		Amount:     100,
		Status:     models.StatusPending,
	}

	msg := NewDonationCreatedMessage(d)
	body, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := FromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, KindDonationCreated, got.Kind)
	assert.Equal(t, "don_1", got.DonationID)
	assert.Equal(t, 100.0, got.Amount)
}

func TestMessageCarriesNoDonorIdentity(t *testing.T) {
	d := &models.Donation{
		ID:        "don_2",
		DonorID:   "member_123",
		DonorName: "Pat Example",
		Amount:    50,
		Status:    models.StatusVerified,
	}

	body, err := NewStatusChangedMessage(d).ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(body), "member_123")
	assert.NotContains(t, string(body), "Pat Example")
}

func TestNilPublisherIsNoOp(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.DonationCreated(nil, &models.Donation{ID: "don_3"}))
	assert.NoError(t, p.DonationStatusChanged(nil, &models.Donation{ID: "don_3"}))
	p.Close()
}
