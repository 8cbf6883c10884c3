package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/repository/postgres"
	"github.com/fitstudio/fitstudio-server/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProfile(email string, role domain.Role) *domain.Profile {
	return &domain.Profile{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Test",
		LastName:  "Member",
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestProfileRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProfileRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		profile *domain.Profile
		wantErr bool
	}{
		{
			name:    "successful creation",
			profile: newProfile("create@example.com", domain.RoleUser),
		},
		{
			name:    "duplicate email",
			profile: newProfile("create@example.com", domain.RoleAdmin),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.profile)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestProfileRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProfileRepository(testDB.DB)
	ctx := context.Background()

	profile := newProfile("getbyid@example.com", domain.RoleInstructor)
	require.NoError(t, repo.Create(ctx, profile))

	t.Run("existing profile", func(t *testing.T) {
		got, err := repo.GetByID(ctx, profile.ID)
		require.NoError(t, err)
		assert.Equal(t, profile.Email, got.Email)
		assert.Equal(t, domain.RoleInstructor, got.Role)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestProfileRepository_GetByEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProfileRepository(testDB.DB)
	ctx := context.Background()

	profile := newProfile("byemail@example.com", domain.RoleUser)
	require.NoError(t, repo.Create(ctx, profile))

	got, err := repo.GetByEmail(ctx, "byemail@example.com")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepository_UpdateAndDelete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProfileRepository(testDB.DB)
	ctx := context.Background()

	profile := newProfile("lifecycle@example.com", domain.RoleUser)
	require.NoError(t, repo.Create(ctx, profile))

	profile.FirstName = "Renamed"
	require.NoError(t, repo.Update(ctx, profile))

	got, err := repo.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.FirstName)

	require.NoError(t, repo.Delete(ctx, profile.ID))
	_, err = repo.GetByID(ctx, profile.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProfileRepository(testDB.DB)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newProfile(uuid.New().String()+"@example.com", domain.RoleUser)))
	}

	page, err := repo.List(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := repo.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
