package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchledger/server/models"
)

func TestForm990BucketsLineItems(t *testing.T) {
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	nonCash := &models.TaxCompliance{
		LineItem:        models.LineNoncashContribution,
		IsTaxDeductible: true,
		Restriction:     models.RestrictionNone,
	}
	set := []*models.Donation{
		donation("d1", "m1", 100, date, "general", "General Fund", models.MethodCash, nil),
		donation("d2", "m2", 60, date, "general", "General Fund", models.MethodCash, nil),
		donation("d3", "m3", 500, date, "general", "General Fund", models.MethodStock, nonCash),
	}

	r := Form990(set, 2025)

	require.Len(t, r.LineItems, 2)
	assert.Equal(t, models.LineCashContribution, r.LineItems[0].LineItem)
	assert.Equal(t, 160.0, r.LineItems[0].Amount)
	assert.Equal(t, 2, r.LineItems[0].Count)
	assert.Equal(t, models.LineNoncashContribution, r.LineItems[1].LineItem)
	assert.Equal(t, 500.0, r.LineItems[1].Amount)
	assert.Equal(t, 660.0, r.TotalRevenue)
}

func TestForm990SkipsOtherTaxYears(t *testing.T) {
	thisYear := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	lastYear := time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC)

	set := []*models.Donation{
		donation("d1", "m1", 100, thisYear, "general", "General Fund", models.MethodCash, nil),
		donation("d2", "m2", 40, lastYear, "general", "General Fund", models.MethodCash, nil),
	}

	r := Form990(set, 2025)

	assert.Equal(t, 100.0, r.TotalRevenue)
}

func TestForm990QuidProQuoDisclosures(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	qpq := &models.TaxCompliance{
		LineItem:        models.LineCashContribution,
		IsTaxDeductible: true,
		IsQuidProQuo:    true,
		FairMarketValue: 75,
		Restriction:     models.RestrictionNone,
	}
	set := []*models.Donation{
		donation("d1", "m1", 250, date, "gala", "Annual Gala", models.MethodCard, qpq),
	}

	r := Form990(set, 2025)

	require.Len(t, r.QuidProQuoDisclosures, 1)
	disc := r.QuidProQuoDisclosures[0]
	assert.Equal(t, "d1", disc.DonationID)
	assert.Equal(t, 250.0, disc.Amount)
	assert.Equal(t, 75.0, disc.FairMarketValue)
	assert.Equal(t, 175.0, disc.DeductibleAmount)
	assert.Equal(t, 175.0, r.TaxDeductibleTotal)
}

func TestForm990RestrictedFundsGroupByCategoryName(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	restricted := func() *models.TaxCompliance {
		return &models.TaxCompliance{
			LineItem:        models.LineCashContribution,
			IsTaxDeductible: true,
			Restriction:     models.RestrictionTemporary,
		}
	}
	set := []*models.Donation{
		donation("d1", "m1", 100, date, "building", "Building Fund", models.MethodCash, restricted()),
		donation("d2", "m2", 150, date, "building", "Building Fund", models.MethodCheck, restricted()),
		donation("d3", "m3", 50, date, "general", "General Fund", models.MethodCash, nil),
	}

	r := Form990(set, 2025)

	require.Len(t, r.RestrictedFunds, 1)
	assert.Equal(t, "Building Fund", r.RestrictedFunds[0].CategoryName)
	assert.Equal(t, models.RestrictionTemporary, r.RestrictedFunds[0].Restriction)
	assert.Equal(t, 250.0, r.RestrictedFunds[0].Amount)
}
