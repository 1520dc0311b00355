package customer

import (
	"context"
	"testing"

	"detailing-booking/internal/dbtest"
	"detailing-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jane() domain.Customer {
	return domain.Customer{
		FirstName:     "Jane",
		LastName:      "Doe",
		FullName:      "Jane Doe",
		Email:         "Jane@Example.com",
		Phone:         "416-555-0100",
		StreetAddress: "12 King St W",
		City:          "Toronto",
		PostalCode:    "M5H 1A1",
	}
}

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(dbtest.Pool(t), nil)

	created, err := repo.Create(ctx, jane())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "jane@example.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.FullName, byID.FullName)

	byEmail, err := repo.GetByEmail(ctx, "JANE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.Create(ctx, jane())
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestPostgres_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(dbtest.Pool(t), nil)

	created, err := repo.Create(ctx, jane())
	require.NoError(t, err)

	changed := *created
	changed.City = "Mississauga"
	changed.Phone = "905-555-0199"
	updated, err := repo.Update(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, "Mississauga", updated.City)
	assert.Equal(t, "905-555-0199", updated.Phone)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mississauga", list[0].City)
}

func TestPostgres_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(dbtest.Pool(t), nil)

	_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Update(ctx, domain.Customer{ID: "00000000-0000-0000-0000-000000000000", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
