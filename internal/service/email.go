package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
)

// BookingConfirmation is the content of the mail sent once a booking is finalized.
type BookingConfirmation struct {
	BookingID    string
	VehicleLabel string
	Quote        domain.Quote
}

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid-backed sender, or a sender that only logs when
// no API key is configured.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		return disabledEmailService{}
	}
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendBookingConfirmation(ctx context.Context, to, name string, c BookingConfirmation) error {
	subject := fmt.Sprintf("Your booking %s is confirmed", c.BookingID)
	plain, html := bookingConfirmationBody(name, c)

	message := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), subject, mail.NewEmail(name, to), plain, html)

	logger.ExternalServiceCall("sendgrid", "Send", "bookingID", c.BookingID)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "bookingID", c.BookingID)
	if err != nil {
		return fmt.Errorf("failed to send booking confirmation: %w", err)
	}
	return nil
}

func bookingConfirmationBody(name string, c BookingConfirmation) (string, string) {
	const layout = "02 Jan 2006 15:04"
	q := c.Quote
	plain := fmt.Sprintf("Hello %s,\n\nYour booking of %s from %s to %s is confirmed.\n\nRental amount: %s\nAdvance paid: %s\nRemaining: %s\n",
		name, c.VehicleLabel, q.StartAt.Format(layout), q.EndAt.Format(layout),
		q.BaseRentalAmount.StringFixed(2), q.AdvanceAmount.StringFixed(2), q.RemainingAmount.StringFixed(2))
	html := fmt.Sprintf(`<html><body>
<h2>Booking confirmed</h2>
<p>Hello %s, your booking of <strong>%s</strong> from %s to %s is confirmed.</p>
<table>
<tr><td>Rental amount</td><td>%s</td></tr>
<tr><td>Advance paid</td><td>%s</td></tr>
<tr><td>Remaining</td><td>%s</td></tr>`,
		name, c.VehicleLabel, q.StartAt.Format(layout), q.EndAt.Format(layout),
		q.BaseRentalAmount.StringFixed(2), q.AdvanceAmount.StringFixed(2), q.RemainingAmount.StringFixed(2))
	if q.SecurityDeposit.Enabled && q.SecurityDeposit.Amount.Valid {
		deposit := q.SecurityDeposit.Amount.Decimal.StringFixed(2)
		plain += fmt.Sprintf("Security deposit: %s\n", deposit)
		html += fmt.Sprintf("\n<tr><td>Security deposit</td><td>%s</td></tr>", deposit)
	}
	html += "\n</table>\n</body></html>"
	return plain, html
}

type disabledEmailService struct{}

func (disabledEmailService) SendBookingConfirmation(ctx context.Context, to, name string, c BookingConfirmation) error {
	logger.Debug("Email disabled, skipping booking confirmation", "bookingID", c.BookingID)
	return nil
}
