package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"detailing-booking/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second)
}

func TestCreateBookingPostsSubmission(t *testing.T) {
	var got domain.BookingSubmission
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bookings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"success":true,"booking":{"id":"b-1","totalAmount":189,"paymentStatus":"pending"}}`)
	})

	resp, err := client.CreateBooking(context.Background(), domain.BookingSubmission{
		PaymentMethod: domain.PaymentETransfer,
		ServiceTotal:  189,
		Packages:      []domain.SubmittedPackage{{PackageID: "2", Quantity: 1, FinalPrice: 189}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, "b-1", resp.Booking.ID)
	assert.Equal(t, int64(189), got.ServiceTotal)
	assert.Equal(t, domain.PaymentETransfer, got.PaymentMethod)
}

func TestCreateBookingRejectedIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"error":"Date is fully booked"}`)
	})

	resp, err := client.CreateBooking(context.Background(), domain.BookingSubmission{})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Date is fully booked", resp.Error)
}

func TestNonJSONBodyIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := client.CreateBooking(context.Background(), domain.BookingSubmission{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := New(base, time.Second)
	_, err := client.CreateBooking(context.Background(), domain.BookingSubmission{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := New(base, time.Second)
	for i := 0; i < 5; i++ {
		_, err := client.CreateBooking(context.Background(), domain.BookingSubmission{})
		require.ErrorIs(t, err, ErrTransport)
	}
	_, err := client.CreateBooking(context.Background(), domain.BookingSubmission{})
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorContains(t, err, gobreaker.ErrOpenState.Error())
}

func TestGetCustomer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/customers/c-1":
			io.WriteString(w, `{"success":true,"customer":{"id":"c-1","firstName":"Jane","lastName":"Doe","fullName":"Jane Doe","email":"jane@example.com"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"success":false,"error":"Customer not found"}`)
		}
	})

	c, err := client.GetCustomer(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.FullName)

	_, err = client.GetCustomer(context.Background(), "missing")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Customer not found", rejected.Message)
}

func TestCustomerWrites(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		io.WriteString(w, `{"success":true}`)
	})

	require.NoError(t, client.CreateCustomer(context.Background(), CustomerInput{Email: "a@example.com"}))
	require.NoError(t, client.UpdateCustomer(context.Background(), "c-9", CustomerInput{Email: "a@example.com"}))
	assert.Equal(t, []string{"POST /api/admin/customers", "PUT /api/admin/customers/c-9"}, methods)
}

func TestGetBooking(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/admin/bookings/b-1" {
			io.WriteString(w, `{"success":true,"booking":{"id":"b-1","bookingTime":"10:00 AM","totalAmount":189}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"success":false,"error":"Booking not found"}`)
	})

	b, err := client.GetBooking(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, int64(189), b.TotalAmount)

	_, err = client.GetBooking(context.Background(), "b-2")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Booking not found", rejected.Message)
}

func TestListAndCompleteBookings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/admin/bookings":
			io.WriteString(w, `{"success":true,"bookings":[{"id":"b-1","bookingDate":"2026-05-02T14:00:00Z","bookingTime":"10:00 AM","totalAmount":189,"paymentStatus":"pending","packages":[{"packageId":"2","quantity":1}]}]}`)
		case "PUT /api/admin/bookings/b-1/complete":
			io.WriteString(w, `{"success":true}`)
		case "GET /api/admin/schedule":
			io.WriteString(w, `{"success":true,"days":[{"date":"2026-05-02","bookings":1,"packages":1,"bookingCapacity":2,"packageCapacity":2}]}`)
		default:
			io.WriteString(w, `{"success":false,"error":"unexpected"}`)
		}
	})

	bookings, err := client.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "10:00 AM", bookings[0].BookingTime)
	assert.Equal(t, 1, bookings[0].PackageCount())

	require.NoError(t, client.CompleteBooking(context.Background(), "b-1"))

	days, err := client.Schedule(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-05-02", days[0].Date)
}
