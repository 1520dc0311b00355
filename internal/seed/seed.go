// Package seed fills an empty database with demo customers and bookings for
// the admin dashboard.
package seed

import (
	"context"
	"fmt"
	"time"

	"detailing-booking/internal/catalog"
	"detailing-booking/internal/domain"
	bookingrepo "detailing-booking/internal/repository/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type bookingSeed struct {
	Customer  domain.Customer
	DayOffset int
	Time      string
	Method    domain.PaymentMethod
	Lines     []lineSeed
	Message   string
}

type lineSeed struct {
	PackageID string
	Vehicle   catalog.VehicleType
	Quantity  int
}

var customers = []domain.Customer{
	{FirstName: "Avery", LastName: "Chen", FullName: "Avery Chen", Email: "avery.chen@example.com", Phone: "416-555-0141", StreetAddress: "88 Queens Quay W", City: "Toronto", PostalCode: "M5J 0B8"},
	{FirstName: "Jordan", LastName: "Patel", FullName: "Jordan Patel", Email: "jordan.patel@example.com", Phone: "905-555-0172", StreetAddress: "4150 Hurontario St", City: "Mississauga", PostalCode: "L5B 0G9"},
	{FirstName: "Sam", LastName: "Okafor", FullName: "Sam Okafor", Email: "sam.okafor@example.com", Phone: "647-555-0133", StreetAddress: "21 Dundas Sq", City: "Toronto", PostalCode: "M5B 1B7"},
}

var bookings = []bookingSeed{
	{Customer: customers[0], DayOffset: 1, Time: "9:00 AM", Method: domain.PaymentETransfer,
		Lines: []lineSeed{{PackageID: "2", Vehicle: catalog.VehicleSedan, Quantity: 1}}},
	{Customer: customers[1], DayOffset: 1, Time: "1:00 PM", Method: domain.PaymentCreditCard,
		Lines: []lineSeed{{PackageID: "4", Vehicle: catalog.VehicleSUV, Quantity: 1}}, Message: "White SUV in the visitor lot"},
	{Customer: customers[2], DayOffset: 3, Time: "10:30 AM", Method: domain.PaymentETransfer,
		Lines: []lineSeed{{PackageID: "6", Vehicle: catalog.VehicleVan, Quantity: 1}, {PackageID: "3", Vehicle: catalog.VehicleSedan, Quantity: 1}}},
	{Customer: customers[0], DayOffset: 7, Time: "7:30 AM", Method: domain.PaymentCreditCard,
		Lines: []lineSeed{{PackageID: "1", Vehicle: catalog.VehicleSedan, Quantity: 1}}},
}

// Apply inserts the demo bookings when the bookings table is empty and
// returns how many were inserted. Customers are matched by email.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	if existing > 0 {
		logger.Info("bookings already present, skipping seed", zap.Int("existing", existing))
		return 0, nil
	}

	inputs, err := demoBookings(time.Now().UTC())
	if err != nil {
		return 0, err
	}
	repo := bookingrepo.NewPostgres(pool, logger)
	for i, in := range inputs {
		if _, err := repo.Create(ctx, in); err != nil {
			return i, fmt.Errorf("insert booking for %s: %w", in.Customer.Email, err)
		}
	}
	return len(inputs), nil
}

// demoBookings prices the seed bookings from the catalog, scheduled
// relative to today.
func demoBookings(now time.Time) ([]bookingrepo.CreateInput, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]bookingrepo.CreateInput, 0, len(bookings))
	for _, b := range bookings {
		in := bookingrepo.CreateInput{
			Customer:      b.Customer,
			BookingDate:   today.AddDate(0, 0, b.DayOffset),
			BookingTime:   b.Time,
			PaymentMethod: b.Method,
			DepositAmount: domain.ReservationFee,
		}
		for _, l := range b.Lines {
			sel, err := catalog.Quote(l.PackageID, l.Vehicle)
			if err != nil {
				return nil, err
			}
			in.Packages = append(in.Packages, domain.BookingPackage{
				PackageID:   sel.PackageID,
				PackageName: sel.PackageName,
				VehicleType: string(sel.VehicleType),
				BasePrice:   sel.BasePrice,
				FinalPrice:  sel.FinalPrice,
				Quantity:    l.Quantity,
			})
			in.TotalAmount += sel.FinalPrice * int64(l.Quantity)
		}
		if b.Message != "" {
			msg := b.Message
			in.Message = &msg
		}
		out = append(out, in)
	}
	return out, nil
}
