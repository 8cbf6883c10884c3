package service

import (
	"context"
	"errors"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassService struct {
	classRepo      repository.ClassRepository
	enrollmentRepo repository.EnrollmentRepository
	profileRepo    repository.ProfileRepository
}

func NewClassService(classRepo repository.ClassRepository, enrollmentRepo repository.EnrollmentRepository, profileRepo repository.ProfileRepository) *ClassService {
	return &ClassService{
		classRepo:      classRepo,
		enrollmentRepo: enrollmentRepo,
		profileRepo:    profileRepo,
	}
}

type CreateClassInput struct {
	Title           string
	Description     string
	Category        domain.ClassCategory
	InstructorID    uuid.UUID
	StartsAt        time.Time
	DurationMinutes int
	Capacity        int
	VideoAssetID    *uuid.UUID
}

func (s *ClassService) Create(ctx context.Context, actor *domain.Profile, input CreateClassInput) (*domain.Class, error) {
	if !input.Category.IsValid() {
		return nil, domain.ErrInvalidCategory
	}
	if input.StartsAt.IsZero() || input.DurationMinutes <= 0 || input.Capacity <= 0 {
		return nil, domain.ErrInvalidSchedule
	}

	instructorID := input.InstructorID
	// Instructors can only schedule classes for themselves; admins and
	// content admins may assign any instructor.
	if actor.Role == domain.RoleInstructor {
		instructorID = actor.ID
	} else if instructorID == uuid.Nil {
		instructorID = actor.ID
	}

	class := &domain.Class{
		ID:              uuid.New(),
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		InstructorID:    instructorID,
		StartsAt:        input.StartsAt,
		DurationMinutes: input.DurationMinutes,
		Capacity:        input.Capacity,
		VideoAssetID:    input.VideoAssetID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Get(ctx context.Context, id uuid.UUID) (*domain.Class, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *ClassService) List(ctx context.Context, filter repository.ClassFilter) ([]*domain.Class, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.classRepo.List(ctx, filter)
}

func (s *ClassService) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*domain.Class, error) {
	return s.classRepo.GetByInstructorID(ctx, instructorID)
}

type UpdateClassInput struct {
	Title           *string
	Description     *string
	Category        *domain.ClassCategory
	StartsAt        *time.Time
	DurationMinutes *int
	Capacity        *int
	VideoAssetID    *uuid.UUID
}

func (s *ClassService) Update(ctx context.Context, actor *domain.Profile, id uuid.UUID, input UpdateClassInput) (*domain.Class, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleInstructor && class.InstructorID != actor.ID {
		return nil, domain.ErrNotClassOwner
	}

	if input.Title != nil {
		class.Title = *input.Title
	}
	if input.Description != nil {
		class.Description = *input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, domain.ErrInvalidCategory
		}
		class.Category = *input.Category
	}
	if input.StartsAt != nil {
		class.StartsAt = *input.StartsAt
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			return nil, domain.ErrInvalidSchedule
		}
		class.DurationMinutes = *input.DurationMinutes
	}
	if input.Capacity != nil {
		if *input.Capacity <= 0 {
			return nil, domain.ErrInvalidSchedule
		}
		class.Capacity = *input.Capacity
	}
	if input.VideoAssetID != nil {
		class.VideoAssetID = input.VideoAssetID
	}
	class.UpdatedAt = time.Now()

	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Delete(ctx context.Context, actor *domain.Profile, id uuid.UUID) error {
	class, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if actor.Role == domain.RoleInstructor && class.InstructorID != actor.ID {
		return domain.ErrNotClassOwner
	}

	return s.classRepo.Delete(ctx, id)
}

// Enroll reserves a spot in a class for the user, enforcing capacity and
// the one-enrollment-per-class rule.
func (s *ClassService) Enroll(ctx context.Context, classID, userID uuid.UUID) (*domain.Enrollment, error) {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	existing, err := s.enrollmentRepo.GetByClassAndUser(ctx, classID, userID)
	if err == nil && existing != nil {
		return nil, domain.ErrAlreadyEnrolled
	}

	count, err := s.enrollmentRepo.CountByClassID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if count >= int64(class.Capacity) {
		return nil, domain.ErrClassFull
	}

	enrollment := &domain.Enrollment{
		ID:        uuid.New(),
		ClassID:   classID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *ClassService) Unenroll(ctx context.Context, classID, userID uuid.UUID) error {
	if _, err := s.Get(ctx, classID); err != nil {
		return err
	}

	if _, err := s.enrollmentRepo.GetByClassAndUser(ctx, classID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotEnrolled
		}
		return err
	}

	return s.enrollmentRepo.Delete(ctx, classID, userID)
}

// RosterEntry pairs an enrollment with the member's profile.
type RosterEntry struct {
	Profile    *domain.Profile
	EnrolledAt time.Time
}

// Roster lists everyone enrolled in a class. Only the class instructor,
// admins and content admins may view it.
func (s *ClassService) Roster(ctx context.Context, actor *domain.Profile, classID uuid.UUID) ([]*RosterEntry, error) {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleInstructor && class.InstructorID != actor.ID {
		return nil, domain.ErrNotClassOwner
	}
	if actor.Role == domain.RoleUser {
		return nil, domain.ErrNotClassOwner
	}

	enrollments, err := s.enrollmentRepo.GetByClassID(ctx, classID)
	if err != nil {
		return nil, err
	}

	roster := make([]*RosterEntry, 0, len(enrollments))
	for _, e := range enrollments {
		profile, err := s.profileRepo.GetByID(ctx, e.UserID)
		if err != nil {
			continue
		}
		roster = append(roster, &RosterEntry{Profile: profile, EnrolledAt: e.CreatedAt})
	}
	return roster, nil
}

// Enrollments lists a member's own enrollments.
func (s *ClassService) Enrollments(ctx context.Context, userID uuid.UUID) ([]*domain.Enrollment, error) {
	return s.enrollmentRepo.GetByUserID(ctx, userID)
}
