package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"detailing-booking/internal/apiclient"
	"detailing-booking/internal/cart"
	"detailing-booking/internal/domain"
	"detailing-booking/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	calls    int
	got      domain.BookingSubmission
	resp     *apiclient.BookingResponse
	err      error
	onCreate func()
}

func (s *stubAPI) CreateBooking(_ context.Context, sub domain.BookingSubmission) (*apiclient.BookingResponse, error) {
	s.calls++
	s.got = sub
	if s.onCreate != nil {
		s.onCreate()
	}
	return s.resp, s.err
}

func newCart(t *testing.T) *cart.Store {
	t.Helper()
	store, err := cart.Open(context.Background(), cart.NewMemoryStorage())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func interiorPremium() cart.NewItem {
	return cart.NewItem{
		PackageID:   "2",
		PackageName: "Interior Premium",
		BasePrice:   189,
		VehicleType: "sedan",
		FinalPrice:  189,
		Quantity:    1,
	}
}

func validForm(method domain.PaymentMethod) Form {
	return Form{
		FullName:      "Jane Marie Doe",
		Email:         "jane@example.com",
		Phone:         "416-555-0100",
		StreetAddress: "12 King St W",
		City:          "Toronto",
		PostalCode:    "M5H 1A1",
		PaymentMethod: method,
		Date:          time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC),
		TimeSlot:      "10:00 AM",
	}
}

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		step   Step
		msg    string
	}{
		{"missing payment only", func(f *Form) { f.PaymentMethod = "" }, StepPayment, MsgMissingPayment},
		{"missing payment and address", func(f *Form) { f.PaymentMethod = ""; f.City = "" }, StepAddress, MsgMissingAddress},
		{"everything missing", func(f *Form) { *f = Form{} }, StepContact, MsgMissingContact},
		{"whitespace phone", func(f *Form) { f.Phone = "   " }, StepContact, MsgMissingContact},
		{"unknown payment method", func(f *Form) { f.PaymentMethod = "cash" }, StepPayment, MsgMissingPayment},
		{"card without cvv", func(f *Form) {
			f.PaymentMethod = domain.PaymentCreditCard
			f.Card = CardDetails{HolderName: "Jane Doe", Number: "4111", Expiry: "12/29"}
		}, StepCard, MsgMissingCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm(domain.PaymentETransfer)
			tt.mutate(&f)
			verr := Validate(f)
			require.NotNil(t, verr)
			assert.Equal(t, tt.step, verr.Step)
			assert.Equal(t, tt.msg, verr.Message)
		})
	}
}

func TestValidateCardFieldsOnlyForCreditCard(t *testing.T) {
	assert.Nil(t, Validate(validForm(domain.PaymentETransfer)))

	f := validForm(domain.PaymentCreditCard)
	f.Card = CardDetails{HolderName: "Jane Doe", Number: "not-a-number", Expiry: "99/99", CVV: "1"}
	assert.Nil(t, Validate(f))
}

func TestComputeTotals(t *testing.T) {
	for _, total := range []int64{189, 30, 20, 0} {
		t.Run(fmt.Sprint(total), func(t *testing.T) {
			got := ComputeTotals(total)
			assert.Equal(t, int64(30), got.DueToday)
			assert.Equal(t, total-30, got.DueLater)
			assert.Equal(t, total, got.ServiceTotal)
		})
	}
	assert.Equal(t, int64(-10), ComputeTotals(20).DueLater)
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, first, last string }{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane Marie Doe", "Jane", "Marie Doe"},
		{"Cher", "Cher", ""},
		{"  Jane Doe  ", "Jane", "Doe"},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestBuildSubmission(t *testing.T) {
	items := []cart.Item{
		{ID: "2-sedan-1", PackageID: "2", PackageName: "Interior Premium", BasePrice: 189, VehicleType: "sedan", FinalPrice: 189, Quantity: 1},
		{ID: "3-suv-2", PackageID: "3", PackageName: "Exterior Express", BasePrice: 99, VehicleType: "suv", FinalPrice: 119, Quantity: 2},
	}
	f := validForm(domain.PaymentETransfer)
	f.Date = time.Date(2026, 5, 2, 9, 0, 0, 0, time.FixedZone("EDT", -4*60*60))

	sub := BuildSubmission(f, items, 427)
	assert.Equal(t, "Jane", sub.Customer.FirstName)
	assert.Equal(t, "Marie Doe", sub.Customer.LastName)
	assert.Equal(t, "Jane Marie Doe", sub.Customer.FullName)
	assert.Equal(t, "2026-05-02T00:00:00.000Z", sub.BookingDate)
	assert.Equal(t, "10:00 AM", sub.BookingTime)
	assert.Equal(t, int64(427), sub.ServiceTotal)
	assert.Nil(t, sub.Message)
	require.Len(t, sub.Packages, 2)
	assert.Equal(t, "3", sub.Packages[1].PackageID)
	assert.Equal(t, int64(119), sub.Packages[1].FinalPrice)
	assert.Equal(t, 2, sub.Packages[1].Quantity)

	f.Message = " gate code 1234 "
	sub = BuildSubmission(f, items, 427)
	require.NotNil(t, sub.Message)
	assert.Equal(t, "gate code 1234", *sub.Message)
}

func TestBuildSubmissionKeepsPickedDay(t *testing.T) {
	tests := []struct {
		name   string
		picked time.Time
	}{
		{"east of utc at midnight", time.Date(2026, 6, 10, 0, 0, 0, 0, time.FixedZone("CEST", 2*60*60))},
		{"west of utc in the evening", time.Date(2026, 6, 10, 21, 30, 0, 0, time.FixedZone("PDT", -7*60*60))},
		{"utc", time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm(domain.PaymentETransfer)
			f.Date = tt.picked

			sub := BuildSubmission(f, []cart.Item{{PackageID: "2", FinalPrice: 189, Quantity: 1}}, 189)
			sent, err := time.Parse(time.RFC3339Nano, sub.BookingDate)
			require.NoError(t, err)
			assert.Equal(t, "2026-06-10", schedule.DateKey(sent))

			conf := &Confirmation{Date: f.Date, TimeSlot: f.TimeSlot}
			assert.Contains(t, ConfirmationMessage(conf), "Wednesday, June 10, 2026")
		})
	}
}

func TestSubmitETransferClearsCartOnSuccess(t *testing.T) {
	store := newCart(t)
	store.AddItem(interiorPremium())
	api := &stubAPI{resp: &apiclient.BookingResponse{Success: true, Booking: &domain.Booking{ID: "b-1"}}}
	svc := New(store, api)

	res, err := svc.Submit(context.Background(), validForm(domain.PaymentETransfer))
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, res.Status)
	assert.Equal(t, int64(189), api.got.ServiceTotal)
	assert.Equal(t, domain.PaymentETransfer, api.got.PaymentMethod)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, Totals{ServiceTotal: 189, DueToday: 30, DueLater: 159}, res.Totals)
	require.NotNil(t, res.Confirmation)
	assert.Contains(t, res.Confirmation.Instructions, DefaultETransferRecipient)
	assert.Contains(t, res.Message, "Saturday, May 2, 2026 at 10:00 AM")
	assert.Equal(t, "b-1", res.Booking.ID)
}

func TestSubmitCreditCardInstructions(t *testing.T) {
	store := newCart(t)
	store.AddItem(interiorPremium())
	api := &stubAPI{resp: &apiclient.BookingResponse{Success: true}}
	svc := New(store, api, WithETransferRecipient("owner@example.com"))

	f := validForm(domain.PaymentCreditCard)
	f.Card = CardDetails{HolderName: "Jane Doe", Number: "4111111111111111", Expiry: "12/29", CVV: "123"}
	res, err := svc.Submit(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, res.Status)
	assert.Contains(t, res.Confirmation.Instructions, "card has been charged")
	assert.NotContains(t, res.Confirmation.Instructions, "owner@example.com")
}

func TestSubmitInvalidDoesNotCallAPI(t *testing.T) {
	store := newCart(t)
	store.AddItem(interiorPremium())
	api := &stubAPI{}
	svc := New(store, api)

	f := validForm("")
	res, err := svc.Submit(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, MsgMissingPayment, res.Message)
	assert.Zero(t, api.calls)
	assert.Equal(t, 1, store.Len())
}

func TestSubmitEmptyCart(t *testing.T) {
	api := &stubAPI{}
	svc := New(newCart(t), api)

	res, err := svc.Submit(context.Background(), validForm(domain.PaymentETransfer))
	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, StepCart, res.Invalid.Step)
	assert.Zero(t, api.calls)
}

func TestSubmitRejectedKeepsCart(t *testing.T) {
	tests := []struct {
		name string
		resp *apiclient.BookingResponse
		want string
	}{
		{"server message", &apiclient.BookingResponse{Error: "Date is fully booked"}, "Date is fully booked"},
		{"generic fallback", &apiclient.BookingResponse{}, MsgRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newCart(t)
			store.AddItem(interiorPremium())
			svc := New(store, &stubAPI{resp: tt.resp})

			res, err := svc.Submit(context.Background(), validForm(domain.PaymentETransfer))
			require.NoError(t, err)
			assert.Equal(t, StatusRejected, res.Status)
			assert.Equal(t, tt.want, res.Message)
			assert.Equal(t, 1, store.Len())
			assert.Nil(t, res.Confirmation)
		})
	}
}

func TestSubmitConnectionErrorKeepsCart(t *testing.T) {
	store := newCart(t)
	store.AddItem(interiorPremium())
	svc := New(store, &stubAPI{err: fmt.Errorf("%w: dial tcp: refused", apiclient.ErrTransport)})

	res, err := svc.Submit(context.Background(), validForm(domain.PaymentETransfer))
	require.NoError(t, err)
	assert.Equal(t, StatusConnectionError, res.Status)
	assert.Equal(t, MsgConnection, res.Message)
	assert.Equal(t, 1, store.Len())
	assert.False(t, svc.Busy())
}

func TestSubmitWhileBusy(t *testing.T) {
	store := newCart(t)
	store.AddItem(interiorPremium())

	var nested error
	api := &stubAPI{resp: &apiclient.BookingResponse{Success: true}}
	svc := New(store, api)
	api.onCreate = func() {
		assert.True(t, svc.Busy())
		_, nested = svc.Submit(context.Background(), validForm(domain.PaymentETransfer))
	}

	res, err := svc.Submit(context.Background(), validForm(domain.PaymentETransfer))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, res.Status)
	assert.True(t, errors.Is(nested, ErrSubmitInProgress))
	assert.Equal(t, 1, api.calls)
	assert.False(t, svc.Busy())
}

func TestAbandonedSubmissionIsIgnored(t *testing.T) {
	store := newCart(t)
	store.AddItem(interiorPremium())

	api := &stubAPI{resp: &apiclient.BookingResponse{Success: true}}
	svc := New(store, api)
	api.onCreate = svc.Abandon

	res, err := svc.Submit(context.Background(), validForm(domain.PaymentETransfer))
	require.NoError(t, err)
	assert.Equal(t, StatusAbandoned, res.Status)
	assert.Nil(t, res.Confirmation)
	assert.Equal(t, 1, store.Len())
}

func TestQuote(t *testing.T) {
	store := newCart(t)
	store.AddItem(cart.NewItem{PackageID: "3", PackageName: "Exterior Express", BasePrice: 99, VehicleType: "suv", FinalPrice: 119, Quantity: 2})
	svc := New(store, &stubAPI{})
	assert.Equal(t, Totals{ServiceTotal: 238, DueToday: 30, DueLater: 208}, svc.Quote())
}
