package booking

import (
	"context"
	"time"

	"detailing-booking/internal/domain"
)

// CreateInput is a booking together with the customer it is made for. The
// customer is matched by email and its contact details are refreshed. ID is
// optional; imports use it to keep legacy references.
type CreateInput struct {
	ID            string
	Customer      domain.Customer
	BookingDate   time.Time
	BookingTime   string
	PaymentMethod domain.PaymentMethod
	TotalAmount   int64
	DepositAmount int64
	Message       *string
	Packages      []domain.BookingPackage
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	MarkComplete(ctx context.Context, id string, at time.Time) (*domain.Booking, error)
}
