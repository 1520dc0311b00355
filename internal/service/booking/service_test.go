package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"detailing-booking/internal/domain"
	bookingrepo "detailing-booking/internal/repository/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memoryRepo struct {
	created []bookingrepo.CreateInput
	byID    map[string]*domain.Booking
	order   []string
	err     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[string]*domain.Booking)}
}

func (r *memoryRepo) Create(_ context.Context, in bookingrepo.CreateInput) (*domain.Booking, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.created = append(r.created, in)
	customer := in.Customer
	customer.ID = "cust-" + in.Customer.Email
	b := &domain.Booking{
		ID:            fmt.Sprintf("b-%d", len(r.created)),
		CustomerID:    customer.ID,
		Customer:      &customer,
		BookingDate:   in.BookingDate,
		BookingTime:   in.BookingTime,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   in.TotalAmount,
		DepositAmount: in.DepositAmount,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.BookingStatusScheduled,
		Message:       in.Message,
		Packages:      in.Packages,
	}
	r.byID[b.ID] = b
	r.order = append(r.order, b.ID)
	return b, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Booking, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Booking, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

func (r *memoryRepo) MarkComplete(_ context.Context, id string, at time.Time) (*domain.Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.Status = domain.BookingStatusCompleted
	b.PaymentStatus = domain.PaymentStatusPaid
	b.CompletedAt = &at
	return b, nil
}

type recordingMailer struct {
	sent []domain.Booking
	err  error
}

func (m *recordingMailer) BookingConfirmed(_ context.Context, b domain.Booking) error {
	m.sent = append(m.sent, b)
	return m.err
}

func submission() domain.BookingSubmission {
	return domain.BookingSubmission{
		Customer: domain.SubmissionCustomer{
			FirstName:     "Jane",
			LastName:      "Doe",
			FullName:      "Jane Doe",
			Email:         "Jane@Example.com",
			Phone:         "416-555-0100",
			StreetAddress: "12 King St W",
			City:          "Toronto",
			PostalCode:    "M5H 1A1",
		},
		BookingDate:   "2026-05-02T14:00:00.000Z",
		BookingTime:   "10:00 AM",
		PaymentMethod: domain.PaymentETransfer,
		ServiceTotal:  189,
		Packages: []domain.SubmittedPackage{
			{PackageID: "2", PackageName: "Interior Premium", VehicleType: "sedan", BasePrice: 189, FinalPrice: 189, Quantity: 1},
		},
	}
}

func TestCreate_StoresBookingAndMails(t *testing.T) {
	repo := newMemoryRepo()
	mail := &recordingMailer{}
	svc := New(repo, WithMailer(mail))

	b, err := svc.Create(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, "b-1", b.ID)

	require.Len(t, repo.created, 1)
	in := repo.created[0]
	assert.Equal(t, "jane@example.com", in.Customer.Email)
	assert.Equal(t, int64(189), in.TotalAmount)
	assert.Equal(t, int64(30), in.DepositAmount)
	assert.True(t, in.BookingDate.Equal(time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)))
	assert.Nil(t, in.Message)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "b-1", mail.sent[0].ID)
}

func TestCreate_MailFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := New(newMemoryRepo(), WithMailer(&recordingMailer{err: errors.New("smtp down")}), WithLogger(zap.New(core)))

	b, err := svc.Create(context.Background(), submission())
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, 1, logs.FilterMessage("booking confirmation mail failed").Len())
}

func TestCreate_SplitsFullNameWhenPartsMissing(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo)

	sub := submission()
	sub.Customer.FirstName, sub.Customer.LastName = "", ""
	sub.Customer.FullName = "Jean Luc Picard"
	note := "  "
	sub.Message = &note
	_, err := svc.Create(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, "Jean", repo.created[0].Customer.FirstName)
	assert.Equal(t, "Luc Picard", repo.created[0].Customer.LastName)
	assert.Nil(t, repo.created[0].Message)
}

func TestCreate_AcceptsBareDate(t *testing.T) {
	repo := newMemoryRepo()
	sub := submission()
	sub.BookingDate = "2026-05-02"
	_, err := New(repo).Create(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-02", repo.created[0].BookingDate.Format("2006-01-02"))
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.BookingSubmission)
		msg    string
	}{
		{"missing phone", func(s *domain.BookingSubmission) { s.Customer.Phone = "" }, "Customer name, email and phone are required"},
		{"bad email", func(s *domain.BookingSubmission) { s.Customer.Email = "jane" }, "Customer email is invalid"},
		{"missing city", func(s *domain.BookingSubmission) { s.Customer.City = " " }, "Customer address is required"},
		{"bad payment", func(s *domain.BookingSubmission) { s.PaymentMethod = "cash" }, "Payment method must be credit_card or e_transfer"},
		{"bad date", func(s *domain.BookingSubmission) { s.BookingDate = "tomorrow" }, "Booking date is invalid"},
		{"missing time", func(s *domain.BookingSubmission) { s.BookingTime = "" }, "Booking time is required"},
		{"no packages", func(s *domain.BookingSubmission) { s.Packages = nil; s.ServiceTotal = 0 }, "At least one package is required"},
		{"zero quantity", func(s *domain.BookingSubmission) { s.Packages[0].Quantity = 0 }, "Package 1 is invalid"},
		{"total mismatch", func(s *domain.BookingSubmission) { s.ServiceTotal = 1 }, "Service total does not match the selected packages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			sub := submission()
			tt.mutate(&sub)

			_, err := New(repo).Create(context.Background(), sub)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tt.msg, err.Error())
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreate_RepositoryError(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("db down")
	mail := &recordingMailer{}

	_, err := New(repo, WithMailer(mail)).Create(context.Background(), submission())
	assert.EqualError(t, err, "db down")
	assert.Empty(t, mail.sent)
}

func TestComplete(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	svc := New(repo, WithClock(func() time.Time { return now }))

	b, err := svc.Create(context.Background(), submission())
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, done.Status)
	assert.Equal(t, domain.PaymentStatusPaid, done.PaymentStatus)
	assert.Equal(t, now, *done.CompletedAt)

	_, err = svc.Complete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Complete(context.Background(), "")
	assert.True(t, domain.IsValidation(err))
}

func TestSchedule(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo)

	for _, date := range []string{"2026-05-03T09:00:00Z", "2026-05-02T09:00:00Z", "2026-05-02T15:00:00Z"} {
		sub := submission()
		sub.BookingDate = date
		_, err := svc.Create(context.Background(), sub)
		require.NoError(t, err)
	}

	days, err := svc.Schedule(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-05-02", days[0].Date)
	assert.Equal(t, 2, days[0].Bookings)
	assert.Equal(t, 2, days[0].Packages)
	assert.Equal(t, "2026-05-03", days[1].Date)
}

func TestListAndGet(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo)
	b, err := svc.Create(context.Background(), submission())
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}
