// Package reports computes financial summaries and the Form 990 report from
// a set of donation records. Everything here is pure: reports are shaped on
// demand and never stored.
package reports

import (
	"sort"
	"time"

	"github.com/churchledger/server/models"
)

// Histogram bucket bounds, in dollars. Ranges are half-open (min inclusive,
// next exclusive) so accumulated float sums always land in exactly one
// bucket; the last bucket is open-ended.
var histogramBuckets = []struct {
	label string
	min   float64
	next  float64
}{
	{"$0-99", 0, 100},
	{"$100-249", 100, 250},
	{"$250-499", 250, 500},
	{"$500-999", 500, 1000},
	{"$1000-2499", 1000, 2500},
	{"$2500+", 2500, 0},
}

// Summarize builds the financial summary for a donation set. Breakdowns only
// include buckets that actually occur, and an empty set yields zeros for
// every percentage and average, never NaN.
func Summarize(donations []*models.Donation, from, to time.Time) models.FinancialSummary {
	summary := models.FinancialSummary{From: from, To: to}

	type bucket struct {
		name   string
		amount float64
		count  int
	}
	byCategory := make(map[string]*bucket)
	byMethod := make(map[models.PaymentMethod]*bucket)
	byMonth := make(map[string]*bucket)
	byDonor := make(map[string]float64)

	for _, d := range donations {
		summary.TotalDonations += d.Amount
		summary.DonationCount++

		if d.Tax != nil && d.Tax.IsTaxDeductible {
			summary.TaxDeductibleTotal += d.Tax.DeductibleAmount(d.Amount)
		}

		c, ok := byCategory[d.CategoryID]
		if !ok {
			c = &bucket{name: d.CategoryName}
			byCategory[d.CategoryID] = c
		}
		c.amount += d.Amount
		c.count++

		m, ok := byMethod[d.Method]
		if !ok {
			m = &bucket{}
			byMethod[d.Method] = m
		}
		m.amount += d.Amount
		m.count++

		month := d.Date.Format("2006-01")
		mo, ok := byMonth[month]
		if !ok {
			mo = &bucket{}
			byMonth[month] = mo
		}
		mo.amount += d.Amount
		mo.count++

		// Anonymous records carry no donor reference and stay out of the
		// histogram; pooling them would overstate one bucket.
		if d.DonorID != "" {
			byDonor[d.DonorID] += d.Amount
		}
	}

	if summary.DonationCount > 0 {
		summary.AverageDonation = summary.TotalDonations / float64(summary.DonationCount)
	}

	for id, b := range byCategory {
		summary.ByCategory = append(summary.ByCategory, models.CategoryBreakdown{
			CategoryID:   id,
			CategoryName: b.name,
			Amount:       b.amount,
			Count:        b.count,
			Percentage:   percentage(b.amount, summary.TotalDonations),
		})
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Amount > summary.ByCategory[j].Amount
	})

	for method, b := range byMethod {
		summary.ByMethod = append(summary.ByMethod, models.MethodBreakdown{
			Method:     method,
			Amount:     b.amount,
			Count:      b.count,
			Percentage: percentage(b.amount, summary.TotalDonations),
		})
	}
	sort.Slice(summary.ByMethod, func(i, j int) bool {
		return summary.ByMethod[i].Amount > summary.ByMethod[j].Amount
	})

	for month, b := range byMonth {
		summary.MonthlyTrend = append(summary.MonthlyTrend, models.MonthlyTotal{
			Month:  month,
			Amount: b.amount,
			Count:  b.count,
		})
	}
	sort.Slice(summary.MonthlyTrend, func(i, j int) bool {
		return summary.MonthlyTrend[i].Month < summary.MonthlyTrend[j].Month
	})

	summary.DonorHistogram = histogram(byDonor)

	return summary
}

// histogram buckets per-donor totals into ranges. Individual donor amounts
// never appear in the output.
func histogram(totalsByDonor map[string]float64) []models.HistogramBucket {
	out := make([]models.HistogramBucket, len(histogramBuckets))
	for i, b := range histogramBuckets {
		out[i] = models.HistogramBucket{Range: b.label}
	}

	for _, total := range totalsByDonor {
		for i, b := range histogramBuckets {
			if total >= b.min && (b.next == 0 || total < b.next) {
				out[i].DonorCount++
				break
			}
		}
	}
	return out
}

func percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}
