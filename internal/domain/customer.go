package domain

import "time"

// Customer is the person a booking is made for.
type Customer struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	StreetAddress string    `json:"streetAddress"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postalCode"`
	CreatedAt     time.Time `json:"createdAt"`
}
