package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/churchledger/server/models"
)

func donation(id, donorID string, amount float64, date time.Time, categoryID, categoryName string, method models.PaymentMethod, tax *models.TaxCompliance) *models.Donation {
	if tax == nil {
		tax = &models.TaxCompliance{
			LineItem:        models.LineCashContribution,
			IsTaxDeductible: true,
			Restriction:     models.RestrictionNone,
		}
	}
	return &models.Donation{
		ID:           id,
		DonorID:      donorID,
		Amount:       amount,
		Date:         date,
		Method:       method,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Tax:          tax,
		Status:       models.StatusVerified,
		TaxYear:      date.Year(),
	}
}

func TestSummarizeEmptySetYieldsZerosNotNaN(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	s := Summarize(nil, from, to)

	assert.Equal(t, 0.0, s.TotalDonations)
	assert.Equal(t, 0.0, s.AverageDonation)
	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.ByMethod)
	for _, b := range s.DonorHistogram {
		assert.Equal(t, 0, b.DonorCount)
	}
}

func TestSummarizeBreakdownsSumToTotal(t *testing.T) {
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	set := []*models.Donation{
		donation("d1", "m1", 100, jan, "general", "General Fund", models.MethodCash, nil),
		donation("d2", "m2", 250, jan, "building", "Building Fund", models.MethodCheck, nil),
		donation("d3", "m1", 50, feb, "general", "General Fund", models.MethodCard, nil),
	}

	s := Summarize(set, jan, feb)

	assert.Equal(t, 400.0, s.TotalDonations)
	assert.Equal(t, 3, s.DonationCount)

	var categorySum, methodPct float64
	for _, b := range s.ByCategory {
		categorySum += b.Amount
	}
	for _, b := range s.ByMethod {
		methodPct += b.Percentage
	}
	assert.Equal(t, s.TotalDonations, categorySum)
	assert.InDelta(t, 100, methodPct, 1e-9)

	// Only buckets that occur
	assert.Len(t, s.ByCategory, 2)
	assert.Len(t, s.ByMethod, 3)
}

func TestSummarizeMonthlyTrend(t *testing.T) {
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	set := []*models.Donation{
		donation("d1", "m1", 100, jan, "general", "General Fund", models.MethodCash, nil),
		donation("d2", "m2", 200, jan, "general", "General Fund", models.MethodCash, nil),
		donation("d3", "m1", 50, feb, "general", "General Fund", models.MethodCard, nil),
	}

	s := Summarize(set, jan, feb)

	require.Len(t, s.MonthlyTrend, 2)
	assert.Equal(t, "2025-01", s.MonthlyTrend[0].Month)
	assert.Equal(t, 300.0, s.MonthlyTrend[0].Amount)
	assert.Equal(t, "2025-02", s.MonthlyTrend[1].Month)
	assert.Equal(t, 50.0, s.MonthlyTrend[1].Amount)
}

func TestSummarizeQuidProQuoReducesDeductibleTotal(t *testing.T) {
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	qpq := &models.TaxCompliance{
		LineItem:        models.LineCashContribution,
		IsTaxDeductible: true,
		IsQuidProQuo:    true,
		FairMarketValue: 40,
		Restriction:     models.RestrictionNone,
	}
	set := []*models.Donation{
		donation("d1", "m1", 100, date, "general", "General Fund", models.MethodCash, qpq),
		donation("d2", "m2", 50, date, "general", "General Fund", models.MethodCash, nil),
	}

	s := Summarize(set, date, date)

	assert.Equal(t, 150.0, s.TotalDonations)
	assert.Equal(t, 110.0, s.TaxDeductibleTotal)
}

func TestSummarizeHistogramUsesPerDonorTotals(t *testing.T) {
	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	// m1 gives 80+50 = 130 -> $100-249; m2 gives 3000 -> $2500+;
	// the anonymous record stays out entirely.
	anonTax := &models.TaxCompliance{
		LineItem:        models.LineCashContribution,
		IsAnonymous:     true,
		IsTaxDeductible: true,
		Restriction:     models.RestrictionNone,
	}
	set := []*models.Donation{
		donation("d1", "m1", 80, date, "general", "General Fund", models.MethodCash, nil),
		donation("d2", "m1", 50, date, "general", "General Fund", models.MethodCash, nil),
		donation("d3", "m2", 3000, date, "general", "General Fund", models.MethodCheck, nil),
		donation("d4", "", 75, date, "general", "General Fund", models.MethodCash, anonTax),
	}

	s := Summarize(set, date, date)

	counts := map[string]int{}
	for _, b := range s.DonorHistogram {
		counts[b.Range] = b.DonorCount
	}
	assert.Equal(t, 0, counts["$0-99"])
	assert.Equal(t, 1, counts["$100-249"])
	assert.Equal(t, 1, counts["$2500+"])
}

func TestSummarizeHistogramHasNoGapsBetweenBuckets(t *testing.T) {
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	// Three gifts summing to 99.99 accumulate float error that lands the
	// donor total strictly between 99.99 and 100.
	set := []*models.Donation{
		donation("d1", "m1", 33.33, date, "general", "General Fund", models.MethodCash, nil),
		donation("d2", "m1", 33.33, date, "general", "General Fund", models.MethodCash, nil),
		donation("d3", "m1", 33.33, date, "general", "General Fund", models.MethodCash, nil),
	}

	s := Summarize(set, date, date)

	total := 0
	for _, b := range s.DonorHistogram {
		total += b.DonorCount
	}
	assert.Equal(t, 1, total)
	// Bucket boundaries count toward the higher range
	boundary := Summarize([]*models.Donation{
		donation("d4", "m2", 100, date, "general", "General Fund", models.MethodCash, nil),
	}, date, date)
	for _, b := range boundary.DonorHistogram {
		if b.Range == "$100-249" {
			assert.Equal(t, 1, b.DonorCount)
		}
	}
}
