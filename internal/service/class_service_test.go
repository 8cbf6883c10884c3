package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/fitstudio/fitstudio-server/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassService_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	admin, _ := testutil.NewProfileBuilder().WithRole(domain.RoleAdmin).Build(t, ts)
	instructor, _ := testutil.NewProfileBuilder().WithRole(domain.RoleInstructor).Build(t, ts)

	validInput := func() service.CreateClassInput {
		return service.CreateClassInput{
			Title:           "Morning Flow",
			Category:        domain.CategoryYoga,
			StartsAt:        time.Now().Add(48 * time.Hour),
			DurationMinutes: 60,
			Capacity:        12,
		}
	}

	t.Run("admin assigns any instructor", func(t *testing.T) {
		input := validInput()
		input.InstructorID = instructor.ID

		class, err := ts.Services.Class.Create(ctx, admin, input)
		require.NoError(t, err)
		assert.Equal(t, instructor.ID, class.InstructorID)
	})

	t.Run("instructor is pinned to self", func(t *testing.T) {
		input := validInput()
		input.InstructorID = admin.ID // attempt to assign someone else

		class, err := ts.Services.Class.Create(ctx, instructor, input)
		require.NoError(t, err)
		assert.Equal(t, instructor.ID, class.InstructorID)
	})

	t.Run("invalid category", func(t *testing.T) {
		input := validInput()
		input.Category = "swimming"

		_, err := ts.Services.Class.Create(ctx, admin, input)
		assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		input := validInput()
		input.DurationMinutes = 0

		_, err := ts.Services.Class.Create(ctx, admin, input)
		assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
	})

	t.Run("zero capacity", func(t *testing.T) {
		input := validInput()
		input.Capacity = 0

		_, err := ts.Services.Class.Create(ctx, admin, input)
		assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
	})
}

func TestClassService_UpdateAndDelete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	admin, _ := testutil.NewProfileBuilder().WithRole(domain.RoleAdmin).Build(t, ts)
	owner, _ := testutil.NewProfileBuilder().WithRole(domain.RoleInstructor).Build(t, ts)
	other, _ := testutil.NewProfileBuilder().WithRole(domain.RoleInstructor).Build(t, ts)

	class := testutil.NewClassBuilder().WithInstructor(owner).Build(t, ts.DB.DB)

	t.Run("owner updates own class", func(t *testing.T) {
		title := "Evening Flow"
		updated, err := ts.Services.Class.Update(ctx, owner, class.ID, service.UpdateClassInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Evening Flow", updated.Title)
	})

	t.Run("other instructor cannot update", func(t *testing.T) {
		title := "Hijacked"
		_, err := ts.Services.Class.Update(ctx, other, class.ID, service.UpdateClassInput{Title: &title})
		assert.ErrorIs(t, err, domain.ErrNotClassOwner)
	})

	t.Run("admin updates any class", func(t *testing.T) {
		capacity := 25
		updated, err := ts.Services.Class.Update(ctx, admin, class.ID, service.UpdateClassInput{Capacity: &capacity})
		require.NoError(t, err)
		assert.Equal(t, 25, updated.Capacity)
	})

	t.Run("update unknown class", func(t *testing.T) {
		title := "Ghost"
		_, err := ts.Services.Class.Update(ctx, admin, uuid.New(), service.UpdateClassInput{Title: &title})
		assert.ErrorIs(t, err, domain.ErrClassNotFound)
	})

	t.Run("other instructor cannot delete", func(t *testing.T) {
		err := ts.Services.Class.Delete(ctx, other, class.ID)
		assert.ErrorIs(t, err, domain.ErrNotClassOwner)
	})

	t.Run("owner deletes own class", func(t *testing.T) {
		err := ts.Services.Class.Delete(ctx, owner, class.ID)
		require.NoError(t, err)

		_, err = ts.Services.Class.Get(ctx, class.ID)
		assert.ErrorIs(t, err, domain.ErrClassNotFound)
	})
}

func TestClassService_Enrollment(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	instructor, _ := testutil.NewProfileBuilder().WithRole(domain.RoleInstructor).Build(t, ts)
	memberA, _ := testutil.NewProfileBuilder().Build(t, ts)
	memberB, _ := testutil.NewProfileBuilder().Build(t, ts)
	memberC, _ := testutil.NewProfileBuilder().Build(t, ts)

	class := testutil.NewClassBuilder().
		WithInstructor(instructor).
		WithCapacity(2).
		Build(t, ts.DB.DB)

	t.Run("enroll up to capacity", func(t *testing.T) {
		_, err := ts.Services.Class.Enroll(ctx, class.ID, memberA.ID)
		require.NoError(t, err)

		_, err = ts.Services.Class.Enroll(ctx, class.ID, memberB.ID)
		require.NoError(t, err)
	})

	t.Run("class full", func(t *testing.T) {
		_, err := ts.Services.Class.Enroll(ctx, class.ID, memberC.ID)
		assert.ErrorIs(t, err, domain.ErrClassFull)
	})

	t.Run("duplicate enrollment", func(t *testing.T) {
		_, err := ts.Services.Class.Enroll(ctx, class.ID, memberA.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyEnrolled)
	})

	t.Run("unenroll frees the spot", func(t *testing.T) {
		require.NoError(t, ts.Services.Class.Unenroll(ctx, class.ID, memberA.ID))

		_, err := ts.Services.Class.Enroll(ctx, class.ID, memberC.ID)
		require.NoError(t, err)
	})

	t.Run("unenroll without enrollment", func(t *testing.T) {
		err := ts.Services.Class.Unenroll(ctx, class.ID, memberA.ID)
		assert.ErrorIs(t, err, domain.ErrNotEnrolled)
	})

	t.Run("enroll in unknown class", func(t *testing.T) {
		_, err := ts.Services.Class.Enroll(ctx, uuid.New(), memberA.ID)
		assert.ErrorIs(t, err, domain.ErrClassNotFound)
	})

	t.Run("member enrollments listing", func(t *testing.T) {
		enrollments, err := ts.Services.Class.Enrollments(ctx, memberB.ID)
		require.NoError(t, err)
		require.Len(t, enrollments, 1)
		assert.Equal(t, class.ID, enrollments[0].ClassID)
	})
}

func TestClassService_Roster(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	owner, _ := testutil.NewProfileBuilder().WithRole(domain.RoleInstructor).Build(t, ts)
	other, _ := testutil.NewProfileBuilder().WithRole(domain.RoleInstructor).Build(t, ts)
	admin, _ := testutil.NewProfileBuilder().WithRole(domain.RoleAdmin).Build(t, ts)
	member, _ := testutil.NewProfileBuilder().WithName("Riley", "Chen").Build(t, ts)

	class := testutil.NewClassBuilder().WithInstructor(owner).Build(t, ts.DB.DB)
	testutil.EnrollUser(t, ts.DB.DB, class.ID, member.ID)

	t.Run("owner sees roster", func(t *testing.T) {
		roster, err := ts.Services.Class.Roster(ctx, owner, class.ID)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, member.ID, roster[0].Profile.ID)
		assert.Equal(t, "Riley", roster[0].Profile.FirstName)
	})

	t.Run("admin sees any roster", func(t *testing.T) {
		roster, err := ts.Services.Class.Roster(ctx, admin, class.ID)
		require.NoError(t, err)
		assert.Len(t, roster, 1)
	})

	t.Run("other instructor is refused", func(t *testing.T) {
		_, err := ts.Services.Class.Roster(ctx, other, class.ID)
		assert.ErrorIs(t, err, domain.ErrNotClassOwner)
	})

	t.Run("member is refused", func(t *testing.T) {
		_, err := ts.Services.Class.Roster(ctx, member, class.ID)
		assert.ErrorIs(t, err, domain.ErrNotClassOwner)
	})
}
