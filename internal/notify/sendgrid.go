package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"detailing-booking/internal/domain"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const senderName = "Shine City Detailing"

// SendGridMailer sends mail through the SendGrid v3 API.
type SendGridMailer struct {
	client sendgrid.Client
	from   string
	logger *zap.Logger
}

// NewSendGrid builds a mailer. An empty host uses the public SendGrid API.
func NewSendGrid(apiKey, from, host string, logger *zap.Logger) *SendGridMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	request := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	request.Method = "POST"
	return &SendGridMailer{
		client: sendgrid.Client{Request: request},
		from:   from,
		logger: logger,
	}
}

func (m *SendGridMailer) BookingConfirmed(ctx context.Context, b domain.Booking) error {
	if b.Customer == nil || b.Customer.Email == "" {
		return errors.New("booking has no customer email")
	}
	if m.from == "" {
		return errors.New("from address is empty")
	}
	subject, body := ConfirmationEmail(b)

	message := mail.NewSingleEmail(
		mail.NewEmail(senderName, m.from),
		subject,
		mail.NewEmail(b.Customer.FullName, b.Customer.Email),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	// SendWithContext writes the body onto the client, so each send uses a copy.
	client := m.client
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		m.logger.Warn("sendgrid rejected message",
			zap.Int("status", resp.StatusCode), zap.String("body", resp.Body), zap.String("booking_id", b.ID))
		return fmt.Errorf("sendgrid send failed: status=%d", resp.StatusCode)
	}
	m.logger.Info("booking confirmation sent",
		zap.Int("status", resp.StatusCode), zap.String("booking_id", b.ID))
	return nil
}
