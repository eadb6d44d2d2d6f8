// Package receipts sends donation receipt mail through Mailgun and records
// the receipt state on the donation.
package receipts

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v3"

	"github.com/churchledger/server/models"
	"github.com/churchledger/server/money"
)

type ReceiptMarker interface {
	MarkReceiptSent(ctx context.Context, id string) (*models.Donation, error)
}

type Sender struct {
	mg     mailgun.Mailgun
	sender string
	repo   ReceiptMarker
}

func NewSender(domain, apiKey, sender string, repo ReceiptMarker) *Sender {
	return &Sender{
		mg:     mailgun.NewMailgun(domain, apiKey),
		sender: sender,
		repo:   repo,
	}
}

// Send mails the receipt and marks the donation. Anonymous donations and
// records without a donor address are skipped without error.
func (s *Sender) Send(ctx context.Context, d *models.Donation, email string) error {
	if d.Tax != nil && d.Tax.IsAnonymous {
		return nil
	}
	if email == "" {
		return nil
	}

	subject := fmt.Sprintf("Your %d donation receipt", d.TaxYear)
	message := s.mg.NewMessage(s.sender, subject, "", email)
	message.SetTemplate("donation-receipt")
	message.AddTemplateVariable("donorName", d.DonorName)
	message.AddTemplateVariable("amount", money.FormatUSD(d.Amount))
	message.AddTemplateVariable("date", d.Date.Format("January 2, 2006"))
	message.AddTemplateVariable("category", d.CategoryName)
	if d.Tax != nil {
		message.AddTemplateVariable("deductibleAmount", money.FormatUSD(d.Tax.DeductibleAmount(d.Amount)))
		if d.Tax.IsQuidProQuo {
			message.AddTemplateVariable("fairMarketValue", money.FormatUSD(d.Tax.FairMarketValue))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if _, _, err := s.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("send receipt for donation %s: %w", d.ID, err)
	}

	if _, err := s.repo.MarkReceiptSent(ctx, d.ID); err != nil {
		return fmt.Errorf("mark receipt sent for donation %s: %w", d.ID, err)
	}
	return nil
}
