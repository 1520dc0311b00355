package domain

// BookingSubmission is the body of POST /api/bookings.
type BookingSubmission struct {
	Customer      SubmissionCustomer `json:"customer"`
	BookingDate   string             `json:"bookingDate"`
	BookingTime   string             `json:"bookingTime"`
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
	ServiceTotal  int64              `json:"serviceTotal"`
	Packages      []SubmittedPackage `json:"packages"`
	Message       *string            `json:"message"`
}

type SubmissionCustomer struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
}

type SubmittedPackage struct {
	PackageID   string `json:"packageId"`
	PackageName string `json:"packageName"`
	VehicleType string `json:"vehicleType"`
	BasePrice   int64  `json:"basePrice"`
	FinalPrice  int64  `json:"finalPrice"`
	Quantity    int    `json:"quantity"`
}

// PackagesTotal is the sum of FinalPrice*Quantity over the submitted packages.
func (s BookingSubmission) PackagesTotal() int64 {
	var total int64
	for _, p := range s.Packages {
		total += p.FinalPrice * int64(p.Quantity)
	}
	return total
}
