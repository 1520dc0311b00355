// Package checkout turns the cart and the checkout form into a booking
// submission, sends it, and reports the outcome to the caller.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"detailing-booking/internal/apiclient"
	"detailing-booking/internal/cart"
	"detailing-booking/internal/domain"
	"go.uber.org/zap"
)

// ErrSubmitInProgress is returned when Submit is called while another
// submission is still waiting for the backend.
var ErrSubmitInProgress = errors.New("booking submission already in progress")

// DefaultETransferRecipient receives reservation fees paid by e-Transfer.
const DefaultETransferRecipient = "payments@shinecitydetailing.ca"

type bookingAPI interface {
	CreateBooking(ctx context.Context, sub domain.BookingSubmission) (*apiclient.BookingResponse, error)
}

type cartStore interface {
	Items() []cart.Item
	TotalPrice() int64
	ClearCart()
}

type Status string

const (
	StatusConfirmed       Status = "confirmed"
	StatusInvalid         Status = "invalid"
	StatusRejected        Status = "rejected"
	StatusConnectionError Status = "connection_error"
	StatusAbandoned       Status = "abandoned"
)

// Result is what the checkout screen shows after a submit attempt.
type Result struct {
	Status       Status
	Message      string
	Invalid      *ValidationError
	Totals       Totals
	Booking      *domain.Booking
	Confirmation *Confirmation
}

// Confirmation is shown after a successful booking.
type Confirmation struct {
	Date          time.Time
	TimeSlot      string
	PaymentMethod domain.PaymentMethod
	Totals        Totals
	Instructions  string
}

type Service struct {
	cart      cartStore
	api       bookingAPI
	logger    *zap.Logger
	recipient string

	busy       atomic.Bool
	generation atomic.Uint64
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithETransferRecipient(email string) Option {
	return func(s *Service) {
		if email != "" {
			s.recipient = email
		}
	}
}

func New(store cartStore, api bookingAPI, opts ...Option) *Service {
	s := &Service{
		cart:      store,
		api:       api,
		logger:    zap.NewNop(),
		recipient: DefaultETransferRecipient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Busy reports whether a submission is waiting for the backend.
func (s *Service) Busy() bool {
	return s.busy.Load()
}

// Abandon marks any in-flight submission as stale. Its response, when it
// arrives, neither clears the cart nor produces a confirmation.
func (s *Service) Abandon() {
	s.generation.Add(1)
}

// Quote returns the totals for the current cart.
func (s *Service) Quote() Totals {
	return ComputeTotals(s.cart.TotalPrice())
}

// Submit validates the form, posts the booking and, on success, clears the
// cart. Failures are reported through Result; the only error is
// ErrSubmitInProgress. Nothing is retried.
func (s *Service) Submit(ctx context.Context, f Form) (Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return Result{}, ErrSubmitInProgress
	}
	defer s.busy.Store(false)

	gen := s.generation.Load()

	if verr := Validate(f); verr != nil {
		return Result{Status: StatusInvalid, Message: verr.Message, Invalid: verr}, nil
	}

	items := s.cart.Items()
	if len(items) == 0 {
		verr := &ValidationError{Step: StepCart, Message: MsgEmptyCart}
		return Result{Status: StatusInvalid, Message: verr.Message, Invalid: verr}, nil
	}

	totals := ComputeTotals(s.cart.TotalPrice())
	sub := BuildSubmission(f, items, totals.ServiceTotal)

	resp, err := s.api.CreateBooking(ctx, sub)

	if s.generation.Load() != gen {
		s.logger.Info("ignoring response for abandoned booking submission", zap.Error(err))
		return Result{Status: StatusAbandoned, Totals: totals}, nil
	}

	if err != nil {
		s.logger.Warn("booking submission failed", zap.Error(err))
		return Result{Status: StatusConnectionError, Message: MsgConnection, Totals: totals}, nil
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = MsgRejected
		}
		s.logger.Info("booking rejected", zap.String("reason", resp.Error))
		return Result{Status: StatusRejected, Message: msg, Totals: totals}, nil
	}

	s.cart.ClearCart()
	conf := &Confirmation{
		Date:          f.Date,
		TimeSlot:      f.TimeSlot,
		PaymentMethod: f.PaymentMethod,
		Totals:        totals,
		Instructions:  PaymentInstructions(f.PaymentMethod, totals, s.recipient),
	}
	s.logger.Info("booking confirmed",
		zap.Int64("service_total", totals.ServiceTotal), zap.String("payment_method", string(f.PaymentMethod)))
	return Result{
		Status:       StatusConfirmed,
		Message:      ConfirmationMessage(conf),
		Totals:       totals,
		Booking:      resp.Booking,
		Confirmation: conf,
	}, nil
}

// PaymentInstructions is the method-specific text on the confirmation.
func PaymentInstructions(method domain.PaymentMethod, t Totals, recipient string) string {
	switch method {
	case domain.PaymentCreditCard:
		return fmt.Sprintf("Your card has been charged the $%d reservation fee. The remaining $%d is due after your service is completed.",
			t.DueToday, t.DueLater)
	case domain.PaymentETransfer:
		return fmt.Sprintf("Please send an e-Transfer of $%d to %s within 24 hours to secure your appointment. The remaining $%d is due after your service is completed.",
			t.DueToday, recipient, t.DueLater)
	default:
		return ""
	}
}

// ConfirmationMessage renders the full confirmation text.
func ConfirmationMessage(c *Confirmation) string {
	return fmt.Sprintf("Your booking is confirmed for %s at %s.\n%s",
		c.Date.Format("Monday, January 2, 2006"), c.TimeSlot, c.Instructions)
}
