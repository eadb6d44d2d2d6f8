package models

import "time"

// FinancialSummary is computed on demand for a date range; it is never
// stored.
type FinancialSummary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalDonations     float64 `json:"totalDonations"`
	TaxDeductibleTotal float64 `json:"taxDeductibleTotal"`
	DonationCount      int     `json:"donationCount"`
	AverageDonation    float64 `json:"averageDonation"`

	ByCategory   []CategoryBreakdown `json:"byCategory"`
	ByMethod     []MethodBreakdown   `json:"byMethod"`
	MonthlyTrend []MonthlyTotal      `json:"monthlyTrend"`

	// DonorHistogram buckets per-donor totals into ranges so report readers
	// never see an individual donor's amount.
	DonorHistogram []HistogramBucket `json:"donorHistogram"`
}

type CategoryBreakdown struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Amount       float64 `json:"amount"`
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
}

type MethodBreakdown struct {
	Method     PaymentMethod `json:"method"`
	Amount     float64       `json:"amount"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
}

// MonthlyTotal is keyed by the YYYY-MM month of the donation date.
type MonthlyTotal struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type HistogramBucket struct {
	Range      string `json:"range"`
	DonorCount int    `json:"donorCount"`
}

// Form990Report groups a tax year's donations into IRS line items with the
// quid pro quo and restricted-fund disclosures the filing needs.
type Form990Report struct {
	TaxYear int `json:"taxYear"`

	LineItems []LineItemTotal `json:"lineItems"`

	QuidProQuoDisclosures []QuidProQuoDisclosure `json:"quidProQuoDisclosures"`
	RestrictedFunds       []RestrictedFundTotal  `json:"restrictedFunds"`

	TotalRevenue       float64 `json:"totalRevenue"`
	TaxDeductibleTotal float64 `json:"taxDeductibleTotal"`
}

type LineItemTotal struct {
	LineItem LineItem `json:"lineItem"`
	Amount   float64  `json:"amount"`
	Count    int      `json:"count"`
}

type QuidProQuoDisclosure struct {
	DonationID       string  `json:"donationId"`
	Amount           float64 `json:"amount"`
	FairMarketValue  float64 `json:"fairMarketValue"`
	DeductibleAmount float64 `json:"deductibleAmount"`
}

type RestrictedFundTotal struct {
	CategoryName string      `json:"categoryName"`
	Restriction  Restriction `json:"restriction"`
	Amount       float64     `json:"amount"`
}
