package users_test

import (
	"context"
	"testing"
	"time"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/users"
	fakeuserrepo "github.com/jrsteele09/go-crm/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoNumbersHere", false},
	}
	for _, tt := range tests {
		err := users.ValidatePasswordStrength(tt.password)
		if tt.valid {
			require.NoError(t, err, tt.password)
		} else {
			require.Error(t, err, tt.password)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, users.ValidateEmail("jane@example.com"))
	require.Error(t, users.ValidateEmail("Jane <jane@example.com>"))
	require.Error(t, users.ValidateEmail("not-an-email"))
	require.Equal(t, "jane@example.com", users.NormaliseEmail("  Jane@Example.COM "))
}

func TestHashPassword(t *testing.T) {
	hash, err := users.HashPassword("Passw0rd")
	require.NoError(t, err)
	require.NotEqual(t, "Passw0rd", hash)
	require.True(t, users.CheckPasswordHash("Passw0rd", hash))
	require.False(t, users.CheckPasswordHash("passw0rd", hash))
}

func TestFakeUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()

	user := &users.User{Name: "Jane", Email: "jane@example.com"}
	require.NoError(t, repo.Insert(ctx, user))
	require.NotEmpty(t, user.ID)

	require.ErrorIs(t, repo.Insert(ctx, &users.User{Email: "jane@example.com"}), crmerrors.ErrUserExists)

	got, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.SetLastLogin(ctx, user.ID, at))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, at, got.LastLogin)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, crmerrors.ErrUserNotFound)
	require.ErrorIs(t, repo.SetLastLogin(ctx, "missing", at), crmerrors.ErrUserNotFound)

	profile := got.Profile()
	require.Equal(t, "Jane", profile.Name)
	require.Equal(t, user.ID, profile.ID)
}
