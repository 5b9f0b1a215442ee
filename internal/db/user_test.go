package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/maintenance-tracker/internal/apperr"
	"github.com/ukydev/maintenance-tracker/internal/models"
)

func TestMongoUserCollection_InsertAndFind(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	user := models.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleTechnician,
		Name:         "Test User",
	}

	inserted, err := store.Users.InsertUser(ctx, user)
	require.NoError(t, err)
	assert.False(t, inserted.ID.IsZero())
	assert.NotZero(t, inserted.CreatedAt)

	byID, err := store.Users.FindUserByID(ctx, inserted.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.Username, byID.Username)

	byName, err := store.Users.FindUserByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, user.Email, byName.Email)

	byEmail, err := store.Users.FindUserByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTechnician, byEmail.Role)

	_, err = store.Users.InsertUser(ctx, user)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = store.Users.FindUserByID(ctx, "invalid-id")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = store.Users.FindUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMongoUserCollection_FindUsersByRole(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, u := range []models.User{
		{Username: "tech-b", Email: "b@example.com", Role: models.RoleTechnician, Name: "Bea"},
		{Username: "tech-a", Email: "a@example.com", Role: models.RoleTechnician, Name: "Al"},
		{Username: "tech-x", Email: "x@example.com", Role: models.RoleTechnician, Name: "Xe", IsArchived: true},
		{Username: "emp", Email: "e@example.com", Role: models.RoleEmployee, Name: "Emp"},
	} {
		_, err := store.Users.InsertUser(ctx, u)
		require.NoError(t, err)
	}

	techs, err := store.Users.FindUsersByRole(ctx, models.RoleTechnician)
	require.NoError(t, err)
	require.Len(t, techs, 2)
	assert.Equal(t, "Al", techs[0].Name)
	assert.Equal(t, "Bea", techs[1].Name)
}

func TestMongoUserCollection_UpdateLastLogin(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	inserted, err := store.Users.InsertUser(ctx, models.User{Username: "u", Email: "u@example.com", Role: models.RoleEmployee})
	require.NoError(t, err)
	require.NoError(t, store.Users.UpdateLastLogin(ctx, inserted.ID.Hex()))

	found, err := store.Users.FindUserByID(ctx, inserted.ID.Hex())
	require.NoError(t, err)
	assert.NotNil(t, found.LastLogin)
}
