package models

import "time"

// CategoryStats are derived from the donations referencing a category and
// recomputed after every donation write. They are never written directly.
type CategoryStats struct {
	TotalAmount    float64    `json:"totalAmount" firestore:"totalAmount"`
	DonationCount  int        `json:"donationCount" firestore:"donationCount"`
	AverageAmount  float64    `json:"averageAmount" firestore:"averageAmount"`
	LastDonationAt *time.Time `json:"lastDonationAt,omitempty" firestore:"lastDonationAt"`
}

type DonationCategory struct {
	ID          string        `json:"id" firestore:"id"`
	Name        string        `json:"name" firestore:"name"`
	Description string        `json:"description,omitempty" firestore:"description"`
	Active      bool          `json:"active" firestore:"active"`
	Stats       CategoryStats `json:"stats" firestore:"stats"`
	CreatedAt   time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" firestore:"updatedAt"`
}
