package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/fitstudio/fitstudio-server/internal/repository/postgres"
	"github.com/fitstudio/fitstudio-server/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClass(instructorID uuid.UUID, category domain.ClassCategory, startsAt time.Time) *domain.Class {
	return &domain.Class{
		ID:              uuid.New(),
		Title:           "Test Class",
		Category:        category,
		InstructorID:    instructorID,
		StartsAt:        startsAt,
		DurationMinutes: 60,
		Capacity:        10,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func TestClassRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewClassRepository(testDB.DB)
	ctx := context.Background()

	yogi := uuid.New()
	lifter := uuid.New()
	now := time.Now().Truncate(time.Second)

	require.NoError(t, repo.Create(ctx, newClass(yogi, domain.CategoryYoga, now.Add(24*time.Hour))))
	require.NoError(t, repo.Create(ctx, newClass(yogi, domain.CategoryYoga, now.Add(-24*time.Hour))))
	require.NoError(t, repo.Create(ctx, newClass(lifter, domain.CategoryStrength, now.Add(48*time.Hour))))

	t.Run("no filter returns everything ordered by start", func(t *testing.T) {
		classes, err := repo.List(ctx, repository.ClassFilter{})
		require.NoError(t, err)
		require.Len(t, classes, 3)
		assert.True(t, classes[0].StartsAt.Before(classes[1].StartsAt))
	})

	t.Run("category filter", func(t *testing.T) {
		classes, err := repo.List(ctx, repository.ClassFilter{Category: domain.CategoryStrength})
		require.NoError(t, err)
		require.Len(t, classes, 1)
		assert.Equal(t, lifter, classes[0].InstructorID)
	})

	t.Run("instructor filter", func(t *testing.T) {
		classes, err := repo.List(ctx, repository.ClassFilter{InstructorID: yogi})
		require.NoError(t, err)
		assert.Len(t, classes, 2)
	})

	t.Run("from filter hides past classes", func(t *testing.T) {
		classes, err := repo.List(ctx, repository.ClassFilter{From: now})
		require.NoError(t, err)
		assert.Len(t, classes, 2)
	})

	t.Run("limit and offset", func(t *testing.T) {
		classes, err := repo.List(ctx, repository.ClassFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, classes, 2)

		classes, err = repo.List(ctx, repository.ClassFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, classes, 1)
	})
}

func TestEnrollmentRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewEnrollmentRepository(testDB.DB)
	ctx := context.Background()

	classID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	require.NoError(t, repo.Create(ctx, &domain.Enrollment{
		ID: uuid.New(), ClassID: classID, UserID: userA, CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.Create(ctx, &domain.Enrollment{
		ID: uuid.New(), ClassID: classID, UserID: userB, CreatedAt: time.Now(),
	}))

	t.Run("duplicate pair is rejected by the unique index", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Enrollment{
			ID: uuid.New(), ClassID: classID, UserID: userA, CreatedAt: time.Now(),
		})
		assert.Error(t, err)
	})

	t.Run("count by class", func(t *testing.T) {
		count, err := repo.CountByClassID(ctx, classID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("get by class and user", func(t *testing.T) {
		enrollment, err := repo.GetByClassAndUser(ctx, classID, userA)
		require.NoError(t, err)
		assert.Equal(t, userA, enrollment.UserID)
	})

	t.Run("delete by user removes all their enrollments", func(t *testing.T) {
		otherClass := uuid.New()
		require.NoError(t, repo.Create(ctx, &domain.Enrollment{
			ID: uuid.New(), ClassID: otherClass, UserID: userA, CreatedAt: time.Now(),
		}))

		require.NoError(t, repo.DeleteByUserID(ctx, userA))

		enrollments, err := repo.GetByUserID(ctx, userA)
		require.NoError(t, err)
		assert.Empty(t, enrollments)

		count, err := repo.CountByClassID(ctx, classID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count, "other members keep their spots")
	})
}
