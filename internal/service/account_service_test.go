package service_test

import (
	"context"
	"testing"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/fitstudio/fitstudio-server/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("creates identity, profile and session", func(t *testing.T) {
		profile, session, err := ts.Services.Account.Register(ctx, service.RegisterInput{
			Email:     "register@example.com",
			Password:  "password123",
			FirstName: "Sam",
			LastName:  "Lee",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.RoleUser, profile.Role, "empty role defaults to user")
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)

		stored, err := ts.Services.Account.GetProfile(ctx, profile.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sam", stored.FirstName)
	})

	t.Run("duplicate email", func(t *testing.T) {
		testutil.NewProfileBuilder().WithEmail("dupe@example.com").Build(t, ts)

		_, _, err := ts.Services.Account.Register(ctx, service.RegisterInput{
			Email:    "dupe@example.com",
			Password: "password123",
		})
		assert.ErrorIs(t, err, domain.ErrEmailExists)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, _, err := ts.Services.Account.Register(ctx, service.RegisterInput{
			Email:    "badrole@example.com",
			Password: "password123",
			Role:     "superuser",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})
}

func TestAccountService_CreateUser(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	profile, err := ts.Services.Account.CreateUser(ctx, service.RegisterInput{
		Email:     "coach@example.com",
		Password:  "password123",
		FirstName: "Dana",
		Role:      domain.RoleInstructor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleInstructor, profile.Role)

	// The provisioned account can sign in with the assigned role claim.
	token, _ := testutil.Login(t, ts, "coach@example.com", "password123", false)
	assert.NotEmpty(t, token)
}

func TestAccountService_DeleteUser(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	instructor, _ := testutil.NewProfileBuilder().WithRole(domain.RoleInstructor).Build(t, ts)
	member, _ := testutil.NewProfileBuilder().WithEmail("doomed@example.com").Build(t, ts)
	class := testutil.NewClassBuilder().WithInstructor(instructor).Build(t, ts.DB.DB)
	testutil.EnrollUser(t, ts.DB.DB, class.ID, member.ID)

	require.NoError(t, ts.Services.Account.DeleteUser(ctx, member.ID))

	_, err := ts.Services.Account.GetProfile(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	enrollments, err := ts.Services.Class.Enrollments(ctx, member.ID)
	require.NoError(t, err)
	assert.Empty(t, enrollments, "enrollments are cleaned up with the account")

	t.Run("unknown user", func(t *testing.T) {
		err := ts.Services.Account.DeleteUser(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	profile, _ := testutil.NewProfileBuilder().WithName("Old", "Name").Build(t, ts)

	first := "New"
	phone := "555-0100"
	updated, err := ts.Services.Account.UpdateProfile(ctx, profile.ID, service.UpdateProfileInput{
		FirstName: &first,
		Phone:     &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "Name", updated.LastName, "untouched fields survive")
	assert.Equal(t, "555-0100", updated.Phone)

	t.Run("unknown profile", func(t *testing.T) {
		_, err := ts.Services.Account.UpdateProfile(ctx, uuid.New(), service.UpdateProfileInput{FirstName: &first})
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}
