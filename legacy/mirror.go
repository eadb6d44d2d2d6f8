// Package legacy mirrors donation writes into the Postgres database the
// previous system reported from. The mirror is best-effort: failures are
// logged by callers, never fatal to the donation write.
package legacy

import (
	"database/sql"
	"fmt"

	wrapped "github.com/churchledger/server/db"
	"github.com/churchledger/server/models"
)

type Mirror struct {
	db *sql.DB
}

func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

// Record upserts the donation row. A nil Mirror is a no-op so the
// integration stays optional.
func (m *Mirror) Record(d *models.Donation) error {
	if m == nil {
		return nil
	}

	anonymous := d.Tax != nil && d.Tax.IsAnonymous
	donorID := sql.NullString{String: d.DonorID, Valid: d.DonorID != ""}

	paymentRef := d.PaymentIntentID
	if paymentRef == "" {
		paymentRef = d.SubscriptionID
	}

	_, err := wrapped.LogAndExec(m.db,
		`INSERT INTO legacy_donations
			(id, donor_id, amount, donation_date, method, category_id, category_name, status, tax_year, is_anonymous, payment_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			category_id = EXCLUDED.category_id,
			category_name = EXCLUDED.category_name,
			updated_at = EXCLUDED.updated_at`,
		d.ID, donorID, d.Amount, d.Date, string(d.Method), d.CategoryID, d.CategoryName,
		string(d.Status), d.TaxYear, anonymous, paymentRef, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("mirror donation %s: %w", d.ID, err)
	}
	return nil
}

// Remove deletes the mirrored row after an admin hard-delete.
func (m *Mirror) Remove(id string) error {
	if m == nil {
		return nil
	}

	if _, err := wrapped.LogAndExec(m.db, "DELETE FROM legacy_donations WHERE id = $1", id); err != nil {
		return fmt.Errorf("remove mirrored donation %s: %w", id, err)
	}
	return nil
}
