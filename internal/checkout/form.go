package checkout

import (
	"strings"
	"time"

	"detailing-booking/internal/cart"
	"detailing-booking/internal/domain"
)

// User-facing messages, one per failed precondition.
const (
	MsgMissingContact = "Please enter your full name, email and phone number."
	MsgMissingAddress = "Please enter your street address, city and postal code."
	MsgMissingPayment = "Please select a payment method."
	MsgMissingCard    = "Please fill in all credit card details."
	MsgEmptyCart      = "Your cart is empty. Add a package before booking."
	MsgRejected       = "We could not complete your booking. Please try again."
	MsgConnection     = "Could not connect to the server. Please check your connection and try again."
)

// Step names the precondition a form failed.
type Step string

const (
	StepContact Step = "contact"
	StepAddress Step = "address"
	StepPayment Step = "payment"
	StepCard    Step = "card"
	StepCart    Step = "cart"
)

// Form is what the customer typed on the checkout screen.
type Form struct {
	FullName      string
	Email         string
	Phone         string
	StreetAddress string
	City          string
	PostalCode    string
	PaymentMethod domain.PaymentMethod
	Card          CardDetails
	Date          time.Time
	TimeSlot      string
	Message       string
}

// CardDetails are checked for presence only.
type CardDetails struct {
	HolderName string
	Number     string
	Expiry     string
	CVV        string
}

type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks contact, then address, then payment method, then card
// fields, and stops at the first failure.
func Validate(f Form) *ValidationError {
	if blank(f.FullName, f.Email, f.Phone) {
		return &ValidationError{Step: StepContact, Message: MsgMissingContact}
	}
	if blank(f.StreetAddress, f.City, f.PostalCode) {
		return &ValidationError{Step: StepAddress, Message: MsgMissingAddress}
	}
	if !f.PaymentMethod.Valid() {
		return &ValidationError{Step: StepPayment, Message: MsgMissingPayment}
	}
	if f.PaymentMethod == domain.PaymentCreditCard &&
		blank(f.Card.HolderName, f.Card.Number, f.Card.Expiry, f.Card.CVV) {
		return &ValidationError{Step: StepCard, Message: MsgMissingCard}
	}
	return nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// SplitName splits on the first space: the first token is the first name,
// everything after it is the last name.
func SplitName(full string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(full), " ")
	return first, last
}

// Totals is the payment breakdown shown before and after booking.
type Totals struct {
	ServiceTotal int64 `json:"serviceTotal"`
	DueToday     int64 `json:"dueToday"`
	DueLater     int64 `json:"dueLater"`
}

// ComputeTotals applies the flat reservation fee. DueLater is not clamped
// and goes negative when the service total is below the fee.
func ComputeTotals(serviceTotal int64) Totals {
	return Totals{
		ServiceTotal: serviceTotal,
		DueToday:     domain.ReservationFee,
		DueLater:     serviceTotal - domain.ReservationFee,
	}
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// CalendarDate is the day t falls on in its own location, as midnight UTC.
// The backend reads booking dates by their UTC day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BuildSubmission assembles the request body from the form and cart lines.
// serviceTotal is passed in so it is computed exactly once.
func BuildSubmission(f Form, items []cart.Item, serviceTotal int64) domain.BookingSubmission {
	first, last := SplitName(f.FullName)

	packages := make([]domain.SubmittedPackage, 0, len(items))
	for _, it := range items {
		packages = append(packages, domain.SubmittedPackage{
			PackageID:   it.PackageID,
			PackageName: it.PackageName,
			VehicleType: it.VehicleType,
			BasePrice:   it.BasePrice,
			FinalPrice:  it.FinalPrice,
			Quantity:    it.Quantity,
		})
	}

	var message *string
	if m := strings.TrimSpace(f.Message); m != "" {
		message = &m
	}

	return domain.BookingSubmission{
		Customer: domain.SubmissionCustomer{
			FirstName:     first,
			LastName:      last,
			FullName:      strings.TrimSpace(f.FullName),
			Email:         strings.TrimSpace(f.Email),
			Phone:         strings.TrimSpace(f.Phone),
			StreetAddress: strings.TrimSpace(f.StreetAddress),
			City:          strings.TrimSpace(f.City),
			PostalCode:    strings.TrimSpace(f.PostalCode),
		},
		BookingDate:   CalendarDate(f.Date).Format(isoMillis),
		BookingTime:   f.TimeSlot,
		PaymentMethod: f.PaymentMethod,
		ServiceTotal:  serviceTotal,
		Packages:      packages,
		Message:       message,
	}
}
