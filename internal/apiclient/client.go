// Package apiclient talks to the booking backend over its JSON REST contract.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"detailing-booking/internal/domain"
	"detailing-booking/internal/schedule"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrTransport covers everything short of a well-formed JSON reply:
// connection failures, timeouts, an open breaker, and undecodable bodies.
var ErrTransport = errors.New("booking api unreachable")

// RejectedError is returned when the backend answers success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "request rejected"
	}
	return e.Message
}

const maxBodyBytes = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New builds a Client for baseURL. Outbound calls are traced and pass
// through a circuit breaker that opens after consecutive transport failures.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "booking-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return c
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BookingResponse is the reply to a booking submission.
type BookingResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Booking *domain.Booking `json:"booking,omitempty"`
}

// CreateBooking posts a submission. A success=false reply is returned as a
// response, not an error; only transport failures produce an error.
func (c *Client) CreateBooking(ctx context.Context, sub domain.BookingSubmission) (*BookingResponse, error) {
	var out BookingResponse
	if err := c.do(ctx, http.MethodPost, "/api/bookings", sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var out struct {
		envelope
		Customer *domain.Customer `json:"customer"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/customers/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Customer == nil {
		return nil, &RejectedError{Message: out.Error}
	}
	return out.Customer, nil
}

// CustomerInput is the customer shape accepted on create and update.
type CustomerInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
}

func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) error {
	return c.expectSuccess(ctx, http.MethodPost, "/api/admin/customers", in)
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, in CustomerInput) error {
	return c.expectSuccess(ctx, http.MethodPut, "/api/admin/customers/"+url.PathEscape(id), in)
}

func (c *Client) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	var out struct {
		envelope
		Bookings []domain.Booking `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/bookings", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &RejectedError{Message: out.Error}
	}
	return out.Bookings, nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	var out struct {
		envelope
		Booking *domain.Booking `json:"booking"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/bookings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Booking == nil {
		return nil, &RejectedError{Message: out.Error}
	}
	return out.Booking, nil
}

func (c *Client) CompleteBooking(ctx context.Context, id string) error {
	return c.expectSuccess(ctx, http.MethodPut, "/api/admin/bookings/"+url.PathEscape(id)+"/complete", nil)
}

func (c *Client) Schedule(ctx context.Context) ([]schedule.Day, error) {
	var out struct {
		envelope
		Days []schedule.Day `json:"days"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/schedule", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &RejectedError{Message: out.Error}
	}
	return out.Days, nil
}

func (c *Client) expectSuccess(ctx context.Context, method, path string, body any) error {
	var out envelope
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return err
	}
	if !out.Success {
		return &RejectedError{Message: out.Error}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	})
	if err != nil {
		c.logger.Warn("booking api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("booking api returned non-json body", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: decode %s %s: %v", ErrTransport, method, path, err)
	}
	return nil
}
