package booking

import (
	"context"
	"strings"
	"time"

	"detailing-booking/internal/db"
	"detailing-booking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const bookingSelect = `
SELECT b.id::text, b.customer_id::text, b.booking_date, b.booking_time, b.payment_method,
       b.total_amount, b.deposit_amount, b.payment_status, b.status, b.message,
       b.created_at, b.completed_at,
       c.id::text, c.first_name, c.last_name, c.full_name, c.email, c.phone,
       c.street_address, c.city, c.postal_code, c.created_at
FROM bookings b
JOIN customers c ON c.id = b.customer_id
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Booking, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c := in.Customer
	var customerID string
	err = tx.QueryRow(ctx, `
INSERT INTO customers (first_name, last_name, full_name, email, phone, street_address, city, postal_code)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (email) DO UPDATE
SET first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    full_name = EXCLUDED.full_name,
    phone = EXCLUDED.phone,
    street_address = EXCLUDED.street_address,
    city = EXCLUDED.city,
    postal_code = EXCLUDED.postal_code,
    updated_at = now()
RETURNING id::text
`, c.FirstName, c.LastName, c.FullName, strings.ToLower(c.Email), c.Phone, c.StreetAddress, c.City, c.PostalCode,
	).Scan(&customerID)
	if err != nil {
		return nil, r.fail("booking repo: upsert customer", err, zap.String("email", c.Email))
	}

	var bookingID string
	err = tx.QueryRow(ctx, `
INSERT INTO bookings (id, customer_id, booking_date, booking_time, payment_method, total_amount, deposit_amount, message)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text
`, in.ID, customerID, in.BookingDate, in.BookingTime, string(in.PaymentMethod), in.TotalAmount, in.DepositAmount, in.Message,
	).Scan(&bookingID)
	if err != nil {
		return nil, r.fail("booking repo: insert booking", err, zap.String("customer_id", customerID))
	}

	for i, p := range in.Packages {
		if _, err := tx.Exec(ctx, `
INSERT INTO booking_packages (booking_id, position, package_id, package_name, vehicle_type, base_price, final_price, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, bookingID, i, p.PackageID, p.PackageName, p.VehicleType, p.BasePrice, p.FinalPrice, p.Quantity); err != nil {
			return nil, r.fail("booking repo: insert package", err, zap.String("booking_id", bookingID), zap.Int("position", i))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, bookingID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, bookingSelect+`WHERE b.id = $1`, id))
	if err != nil {
		return nil, db.MapError(err)
	}
	bookings := []domain.Booking{*b}
	if err := r.attachPackages(ctx, bookings); err != nil {
		return nil, err
	}
	return &bookings[0], nil
}

// List returns every booking, soonest first, with customer and packages.
func (r *postgresRepo) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, bookingSelect+`ORDER BY b.booking_date ASC, b.created_at ASC`)
	if err != nil {
		r.logger.Error("booking repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachPackages(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkComplete sets the booking completed and paid. completed_at keeps the
// first completion time when called again.
func (r *postgresRepo) MarkComplete(ctx context.Context, id string, at time.Time) (*domain.Booking, error) {
	const q = `
UPDATE bookings
SET status = $2, payment_status = $3, completed_at = COALESCE(completed_at, $4)
WHERE id = $1
RETURNING id::text
`
	var bookingID string
	err := r.pool.QueryRow(ctx, q, id, domain.BookingStatusCompleted, domain.PaymentStatusPaid, at).Scan(&bookingID)
	if err != nil {
		return nil, db.MapError(err)
	}
	return r.GetByID(ctx, bookingID)
}

func (r *postgresRepo) attachPackages(ctx context.Context, bookings []domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, len(bookings))
	index := make(map[string]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		index[b.ID] = i
		bookings[i].Packages = []domain.BookingPackage{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, booking_id::text, package_id, package_name, vehicle_type, base_price, final_price, quantity
FROM booking_packages
WHERE booking_id::text = ANY($1::text[])
ORDER BY booking_id, position
`, ids)
	if err != nil {
		r.logger.Error("booking repo: load packages", zap.Int("bookings", len(ids)), zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.BookingPackage
		if err := rows.Scan(
			&p.ID,
			&p.BookingID,
			&p.PackageID,
			&p.PackageName,
			&p.VehicleType,
			&p.BasePrice,
			&p.FinalPrice,
			&p.Quantity,
		); err != nil {
			return err
		}
		i := index[p.BookingID]
		bookings[i].Packages = append(bookings[i].Packages, p)
	}
	return rows.Err()
}

// fail maps err to a domain error, logging it when it has no domain meaning.
func (r *postgresRepo) fail(msg string, err error, fields ...zap.Field) error {
	mapped := db.MapError(err)
	if mapped == err {
		r.logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return mapped
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var c domain.Customer
	var method string
	err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.BookingDate,
		&b.BookingTime,
		&method,
		&b.TotalAmount,
		&b.DepositAmount,
		&b.PaymentStatus,
		&b.Status,
		&b.Message,
		&b.CreatedAt,
		&b.CompletedAt,
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.FullName,
		&c.Email,
		&c.Phone,
		&c.StreetAddress,
		&c.City,
		&c.PostalCode,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.PaymentMethod = domain.PaymentMethod(method)
	b.Customer = &c
	return &b, nil
}
