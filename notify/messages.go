package notify

import (
	"encoding/json"
	"time"

	"github.com/churchledger/server/models"
)

const (
	KindDonationCreated = "donation.created"
	KindStatusChanged   = "donation.status_changed"
)

// Message is the wire shape for donation lifecycle notifications. Donor
// identity is never included; consumers look the record up by id if they are
// entitled to it.
type Message struct {
	Kind       string    `json:"kind"`
	DonationID string    `json:"donationId"`
	CategoryID string    `json:"categoryId"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewDonationCreatedMessage(d *models.Donation) *Message {
	return &Message{
		Kind:       KindDonationCreated,
		DonationID: d.ID,
		CategoryID: d.CategoryID,
		Amount:     d.Amount,
		Status:     string(d.Status),
		Timestamp:  time.Now().UTC(),
	}
}

func NewStatusChangedMessage(d *models.Donation) *Message {
	return &Message{
		Kind:       KindStatusChanged,
		DonationID: d.ID,
		CategoryID: d.CategoryID,
		Amount:     d.Amount,
		Status:     string(d.Status),
		Timestamp:  time.Now().UTC(),
	}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func FromJSON(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
