// Package notify sends booking confirmation emails.
package notify

import (
	"context"
	"fmt"
	"strings"

	"detailing-booking/internal/domain"
	"go.uber.org/zap"
)

// Mailer delivers the confirmation for a stored booking.
type Mailer interface {
	BookingConfirmed(ctx context.Context, b domain.Booking) error
}

// New returns a SendGrid mailer, or a mailer that only logs when no API key
// is configured.
func New(apiKey, from string, logger *zap.Logger) Mailer {
	if apiKey == "" {
		return NopMailer{Logger: logger}
	}
	return NewSendGrid(apiKey, from, "", logger)
}

// NopMailer drops every message.
type NopMailer struct {
	Logger *zap.Logger
}

func (m NopMailer) BookingConfirmed(_ context.Context, b domain.Booking) error {
	if m.Logger != nil {
		m.Logger.Debug("mail disabled, skipping booking confirmation", zap.String("booking_id", b.ID))
	}
	return nil
}

// ConfirmationEmail renders the subject and plain-text body for b.
func ConfirmationEmail(b domain.Booking) (subject, body string) {
	subject = fmt.Sprintf("Your detailing appointment on %s", b.BookingDate.UTC().Format("Mon, Jan 2"))

	var sb strings.Builder
	name := ""
	if b.Customer != nil {
		name = b.Customer.FirstName
	}
	fmt.Fprintf(&sb, "Hi %s,\n\n", strings.TrimSpace(name))
	fmt.Fprintf(&sb, "Your booking is confirmed for %s at %s.\n\n",
		b.BookingDate.UTC().Format("Monday, January 2, 2006"), b.BookingTime)
	for _, p := range b.Packages {
		fmt.Fprintf(&sb, "  %d x %s (%s) $%d\n", p.Quantity, p.PackageName, p.VehicleType, p.FinalPrice*int64(p.Quantity))
	}
	fmt.Fprintf(&sb, "\nService total: $%d\n", b.TotalAmount)
	fmt.Fprintf(&sb, "Reservation fee due today: $%d\n", b.DepositAmount)
	fmt.Fprintf(&sb, "Due after service: $%d\n", b.TotalAmount-b.DepositAmount)
	if b.PaymentMethod == domain.PaymentETransfer {
		sb.WriteString("\nPlease send the reservation fee by e-Transfer within 24 hours to secure your appointment.\n")
	}
	sb.WriteString("\nBooking reference: " + b.ID + "\n")
	return subject, sb.String()
}
