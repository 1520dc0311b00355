package domain

import "time"

// PaymentMethod is how the reservation fee is paid.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentETransfer  PaymentMethod = "e_transfer"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCreditCard || m == PaymentETransfer
}

const (
	BookingStatusScheduled = "scheduled"
	BookingStatusCompleted = "completed"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// ReservationFee is the flat deposit due at booking time, in whole currency units.
const ReservationFee int64 = 30

type Booking struct {
	ID            string           `json:"id"`
	CustomerID    string           `json:"customerId"`
	Customer      *Customer        `json:"customer,omitempty"`
	BookingDate   time.Time        `json:"bookingDate"`
	BookingTime   string           `json:"bookingTime"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	TotalAmount   int64            `json:"totalAmount"`
	DepositAmount int64            `json:"depositAmount"`
	PaymentStatus string           `json:"paymentStatus"`
	Status        string           `json:"status"`
	Message       *string          `json:"message,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
	Packages      []BookingPackage `json:"packages"`
}

type BookingPackage struct {
	ID          string `json:"id,omitempty"`
	BookingID   string `json:"bookingId,omitempty"`
	PackageID   string `json:"packageId"`
	PackageName string `json:"packageName"`
	VehicleType string `json:"vehicleType"`
	BasePrice   int64  `json:"basePrice"`
	FinalPrice  int64  `json:"finalPrice"`
	Quantity    int    `json:"quantity"`
}

// PackageCount sums quantities across the booking's package lines.
func (b Booking) PackageCount() int {
	total := 0
	for _, p := range b.Packages {
		total += p.Quantity
	}
	return total
}
