package customer

import (
	"context"
	"strings"

	"detailing-booking/internal/db"
	"detailing-booking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const customerColumns = `id::text, first_name, last_name, full_name, email, phone, street_address, city, postal_code, created_at`

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

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (first_name, last_name, full_name, email, phone, street_address, city, postal_code)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(
		ctx,
		q,
		c.FirstName,
		c.LastName,
		c.FullName,
		strings.ToLower(c.Email),
		c.Phone,
		c.StreetAddress,
		c.City,
		c.PostalCode,
	))
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
UPDATE customers
SET first_name = $2, last_name = $3, full_name = $4, email = $5, phone = $6,
    street_address = $7, city = $8, postal_code = $9, updated_at = now()
WHERE id = $1
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(
		ctx,
		q,
		c.ID,
		c.FirstName,
		c.LastName,
		c.FullName,
		strings.ToLower(c.Email),
		c.Phone,
		c.StreetAddress,
		c.City,
		c.PostalCode,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE email = lower($1)`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC, id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("customer repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
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
		mapped := db.MapError(err)
		if mapped == err {
			r.logger.Error("customer repo: scan", zap.Error(err))
		}
		return nil, mapped
	}
	return &c, nil
}
