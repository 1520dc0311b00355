// Package booking accepts booking submissions from the app and serves the
// admin views over stored bookings.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"detailing-booking/internal/domain"
	bookingrepo "detailing-booking/internal/repository/booking"
	"detailing-booking/internal/schedule"
	"go.uber.org/zap"
)

type repository interface {
	Create(ctx context.Context, in bookingrepo.CreateInput) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	MarkComplete(ctx context.Context, id string, at time.Time) (*domain.Booking, error)
}

type mailer interface {
	BookingConfirmed(ctx context.Context, b domain.Booking) error
}

type Service struct {
	repo   repository
	mailer mailer
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithMailer(m mailer) Option {
	return func(s *Service) { s.mailer = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(repo repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates a submission, stores it and sends the confirmation mail.
// A mail failure is logged and does not fail the booking.
func (s *Service) Create(ctx context.Context, sub domain.BookingSubmission) (*domain.Booking, error) {
	in, err := s.validate(sub)
	if err != nil {
		return nil, err
	}

	b, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("customer_id", b.CustomerID),
		zap.Int64("total", b.TotalAmount),
		zap.Int("packages", b.PackageCount()))

	if s.mailer != nil {
		if err := s.mailer.BookingConfirmed(ctx, *b); err != nil {
			s.logger.Warn("booking confirmation mail failed", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("booking id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Booking, error) {
	return s.repo.List(ctx)
}

// Complete marks the booking as serviced and fully paid.
func (s *Service) Complete(ctx context.Context, id string) (*domain.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("booking id required")
	}
	b, err := s.repo.MarkComplete(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking completed", zap.String("booking_id", b.ID))
	return b, nil
}

// Schedule groups every stored booking by date.
func (s *Service) Schedule(ctx context.Context) ([]schedule.Day, error) {
	bookings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.GroupByDate(bookings), nil
}

func (s *Service) validate(sub domain.BookingSubmission) (bookingrepo.CreateInput, error) {
	c := sub.Customer
	email := strings.ToLower(strings.TrimSpace(c.Email))
	fullName := strings.TrimSpace(c.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	switch {
	case fullName == "" || email == "" || strings.TrimSpace(c.Phone) == "":
		return bookingrepo.CreateInput{}, domain.Invalid("Customer name, email and phone are required")
	case !strings.Contains(email, "@"):
		return bookingrepo.CreateInput{}, domain.Invalid("Customer email is invalid")
	case strings.TrimSpace(c.StreetAddress) == "" || strings.TrimSpace(c.City) == "" || strings.TrimSpace(c.PostalCode) == "":
		return bookingrepo.CreateInput{}, domain.Invalid("Customer address is required")
	}
	if !sub.PaymentMethod.Valid() {
		return bookingrepo.CreateInput{}, domain.Invalid("Payment method must be credit_card or e_transfer")
	}

	date, err := parseBookingDate(sub.BookingDate)
	if err != nil {
		return bookingrepo.CreateInput{}, domain.Invalid("Booking date is invalid")
	}
	if strings.TrimSpace(sub.BookingTime) == "" {
		return bookingrepo.CreateInput{}, domain.Invalid("Booking time is required")
	}

	if len(sub.Packages) == 0 {
		return bookingrepo.CreateInput{}, domain.Invalid("At least one package is required")
	}
	packages := make([]domain.BookingPackage, 0, len(sub.Packages))
	for i, p := range sub.Packages {
		if strings.TrimSpace(p.PackageID) == "" || p.Quantity <= 0 || p.FinalPrice < 0 || p.BasePrice < 0 {
			return bookingrepo.CreateInput{}, domain.Invalid(fmt.Sprintf("Package %d is invalid", i+1))
		}
		packages = append(packages, domain.BookingPackage{
			PackageID:   p.PackageID,
			PackageName: p.PackageName,
			VehicleType: p.VehicleType,
			BasePrice:   p.BasePrice,
			FinalPrice:  p.FinalPrice,
			Quantity:    p.Quantity,
		})
	}
	if total := sub.PackagesTotal(); total != sub.ServiceTotal {
		s.logger.Warn("service total mismatch",
			zap.Int64("submitted", sub.ServiceTotal), zap.Int64("computed", total), zap.String("email", email))
		return bookingrepo.CreateInput{}, domain.Invalid("Service total does not match the selected packages")
	}

	first, last := strings.TrimSpace(c.FirstName), strings.TrimSpace(c.LastName)
	if first == "" && last == "" {
		first, last, _ = strings.Cut(fullName, " ")
	}

	var message *string
	if sub.Message != nil {
		if m := strings.TrimSpace(*sub.Message); m != "" {
			message = &m
		}
	}

	return bookingrepo.CreateInput{
		Customer: domain.Customer{
			FirstName:     first,
			LastName:      last,
			FullName:      fullName,
			Email:         email,
			Phone:         strings.TrimSpace(c.Phone),
			StreetAddress: strings.TrimSpace(c.StreetAddress),
			City:          strings.TrimSpace(c.City),
			PostalCode:    strings.TrimSpace(c.PostalCode),
		},
		BookingDate:   date,
		BookingTime:   strings.TrimSpace(sub.BookingTime),
		PaymentMethod: sub.PaymentMethod,
		TotalAmount:   sub.ServiceTotal,
		DepositAmount: domain.ReservationFee,
		Message:       message,
		Packages:      packages,
	}, nil
}

// parseBookingDate accepts an RFC 3339 timestamp or a bare date.
func parseBookingDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", v)
}
