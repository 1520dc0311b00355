package customer

import (
	"context"
	"errors"
	"strings"

	"detailing-booking/internal/domain"
)

type repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

// Service manages customer records for the admin dashboard.
type Service struct {
	repo repository
}

func New(repo repository) *Service {
	return &Service{repo: repo}
}

// Input is the customer shape accepted on create and update.
type Input struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("customer id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	c, err := normalize(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, c)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.Invalid("a customer with this email already exists")
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("customer id required")
	}
	c, err := normalize(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	updated, err := s.repo.Update(ctx, c)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.Invalid("a customer with this email already exists")
	}
	return updated, err
}

// normalize trims every field and fills whichever of full name or
// first/last name is missing from the other.
func normalize(in Input) (domain.Customer, error) {
	c := domain.Customer{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		FullName:      strings.TrimSpace(in.FullName),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         strings.TrimSpace(in.Phone),
		StreetAddress: strings.TrimSpace(in.StreetAddress),
		City:          strings.TrimSpace(in.City),
		PostalCode:    strings.TrimSpace(in.PostalCode),
	}
	if c.Email == "" || !strings.Contains(c.Email, "@") {
		return c, domain.Invalid("a valid email is required")
	}
	if c.FullName == "" {
		c.FullName = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	if c.FirstName == "" && c.LastName == "" {
		c.FirstName, c.LastName, _ = strings.Cut(c.FullName, " ")
	}
	if c.FullName == "" {
		return c, domain.Invalid("customer name required")
	}
	return c, nil
}
