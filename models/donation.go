package models

import (
	"time"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodOnline       PaymentMethod = "online"
	MethodStock        PaymentMethod = "stock"
	MethodCrypto       PaymentMethod = "crypto"
	MethodInKind       PaymentMethod = "in_kind"
	MethodOther        PaymentMethod = "other"
	// MethodStripe marks records created by the payment provider webhook.
	MethodStripe PaymentMethod = "stripe"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCheck, MethodCard, MethodBankTransfer, MethodOnline,
		MethodStock, MethodCrypto, MethodInKind, MethodOther, MethodStripe:
		return true
	}
	return false
}

type DonationStatus string

const (
	StatusPending  DonationStatus = "pending"
	StatusVerified DonationStatus = "verified"
	StatusRejected DonationStatus = "rejected"
	StatusRefunded DonationStatus = "refunded"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusRefunded:
		return true
	}
	return false
}

// IRS Form 990 revenue line items.
type LineItem string

const (
	LineCashContribution    LineItem = "cash_contribution"
	LineNoncashContribution LineItem = "noncash_contribution"
	LineGovernmentGrant     LineItem = "government_grant"
	LineProgramService      LineItem = "program_service_revenue"
	LineInvestmentIncome    LineItem = "investment_income"
	LineOther               LineItem = "other"
)

type Restriction string

const (
	RestrictionNone      Restriction = "unrestricted"
	RestrictionTemporary Restriction = "temporarily_restricted"
	RestrictionPermanent Restriction = "permanently_restricted"
)

// TaxCompliance is the per-donation block backing receipting and Form 990
// reporting. It is required on every donation.
type TaxCompliance struct {
	LineItem        LineItem    `json:"lineItem" firestore:"lineItem"`
	IsAnonymous     bool        `json:"isAnonymous" firestore:"isAnonymous"`
	IsTaxDeductible bool        `json:"isTaxDeductible" firestore:"isTaxDeductible"`
	IsQuidProQuo    bool        `json:"isQuidProQuo" firestore:"isQuidProQuo"`
	FairMarketValue float64     `json:"fairMarketValue" firestore:"fairMarketValue"`
	Restriction     Restriction `json:"restriction" firestore:"restriction"`
}

// DeductibleAmount returns the tax-deductible portion of a donation:
// the amount less the disclosed fair value of any goods or services
// received in return. Never negative.
func (t TaxCompliance) DeductibleAmount(amount float64) float64 {
	d := amount - t.FairMarketValue
	if d < 0 {
		return 0
	}
	return d
}

type Donation struct {
	ID           string         `json:"id" firestore:"id"`
	DonorID      string         `json:"donorId,omitempty" firestore:"donorId"`
	DonorName    string         `json:"donorName,omitempty" firestore:"donorName"`
	Amount       float64        `json:"amount" firestore:"amount"`
	Date         time.Time      `json:"date" firestore:"date"`
	Method       PaymentMethod  `json:"method" firestore:"method"`
	CategoryID   string         `json:"categoryId" firestore:"categoryId"`
	CategoryName string         `json:"categoryName" firestore:"categoryName"`
	Tax          *TaxCompliance `json:"taxCompliance" firestore:"taxCompliance"`
	Status       DonationStatus `json:"status" firestore:"status"`
	Note         string         `json:"note,omitempty" firestore:"note"`
	TaxYear      int            `json:"taxYear" firestore:"taxYear"`

	// Provider references, set when the record came through Stripe.
	PaymentIntentID string `json:"paymentIntentId,omitempty" firestore:"paymentIntentId"`
	InvoiceID       string `json:"invoiceId,omitempty" firestore:"invoiceId"`
	SubscriptionID  string `json:"subscriptionId,omitempty" firestore:"subscriptionId"`

	ReceiptSent   bool       `json:"receiptSent" firestore:"receiptSent"`
	ReceiptSentAt *time.Time `json:"receiptSentAt,omitempty" firestore:"receiptSentAt"`

	CreatedBy string    `json:"createdBy,omitempty" firestore:"createdBy"`
	UpdatedBy string    `json:"updatedBy,omitempty" firestore:"updatedBy"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Anonymized returns a copy safe to show to non-admin roles: donor identity
// is stripped when the donation is anonymous.
func (d Donation) Anonymized() Donation {
	if d.Tax != nil && d.Tax.IsAnonymous {
		d.DonorID = ""
		d.DonorName = ""
	}
	return d
}
