package reports

import (
	"sort"

	"github.com/churchledger/server/models"
)

var lineItemOrder = []models.LineItem{
	models.LineCashContribution,
	models.LineNoncashContribution,
	models.LineGovernmentGrant,
	models.LineProgramService,
	models.LineInvestmentIncome,
	models.LineOther,
}

// Form990 buckets a tax year's donations into IRS line items and produces
// the quid pro quo and restricted-fund disclosures the filing requires.
func Form990(donations []*models.Donation, taxYear int) models.Form990Report {
	report := models.Form990Report{TaxYear: taxYear}

	type bucket struct {
		amount float64
		count  int
	}
	byLine := make(map[models.LineItem]*bucket)
	restricted := make(map[string]*models.RestrictedFundTotal)

	for _, d := range donations {
		if d.TaxYear != taxYear {
			continue
		}

		report.TotalRevenue += d.Amount

		line := models.LineOther
		if d.Tax != nil {
			line = d.Tax.LineItem
			if line == "" {
				line = models.LineOther
			}

			if d.Tax.IsTaxDeductible {
				report.TaxDeductibleTotal += d.Tax.DeductibleAmount(d.Amount)
			}

			if d.Tax.IsQuidProQuo {
				report.QuidProQuoDisclosures = append(report.QuidProQuoDisclosures, models.QuidProQuoDisclosure{
					DonationID:       d.ID,
					Amount:           d.Amount,
					FairMarketValue:  d.Tax.FairMarketValue,
					DeductibleAmount: d.Tax.DeductibleAmount(d.Amount),
				})
			}

			if d.Tax.Restriction != "" && d.Tax.Restriction != models.RestrictionNone {
				key := d.CategoryName + "|" + string(d.Tax.Restriction)
				r, ok := restricted[key]
				if !ok {
					r = &models.RestrictedFundTotal{
						CategoryName: d.CategoryName,
						Restriction:  d.Tax.Restriction,
					}
					restricted[key] = r
				}
				r.Amount += d.Amount
			}
		}

		b, ok := byLine[line]
		if !ok {
			b = &bucket{}
			byLine[line] = b
		}
		b.amount += d.Amount
		b.count++
	}

	// Line items appear in filing order; empty lines are omitted
	for _, line := range lineItemOrder {
		if b, ok := byLine[line]; ok {
			report.LineItems = append(report.LineItems, models.LineItemTotal{
				LineItem: line,
				Amount:   b.amount,
				Count:    b.count,
			})
		}
	}

	for _, r := range restricted {
		report.RestrictedFunds = append(report.RestrictedFunds, *r)
	}
	sort.Slice(report.RestrictedFunds, func(i, j int) bool {
		return report.RestrictedFunds[i].CategoryName < report.RestrictedFunds[j].CategoryName
	})

	return report
}
