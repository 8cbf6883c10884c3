package service

import (
	"context"
	"errors"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/identity"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountService manages identities and their profile metadata. The
// credential store owns passwords and tokens; this service keeps the
// auxiliary profile table in step with it.
type AccountService struct {
	identityClient *identity.Client
	profileRepo    repository.ProfileRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewAccountService(identityClient *identity.Client, profileRepo repository.ProfileRepository, enrollmentRepo repository.EnrollmentRepository) *AccountService {
	return &AccountService{
		identityClient: identityClient,
		profileRepo:    profileRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      domain.Role
}

// Register creates an identity in the credential store and the matching
// profile row, then signs the new user in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Profile, *identity.Session, error) {
	existing, err := s.profileRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, nil, domain.ErrEmailExists
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, nil, domain.ErrInvalidRole
	}

	user, err := s.identityClient.AdminCreateUser(ctx, input.Email, input.Password, role.String())
	if err != nil {
		return nil, nil, err
	}

	profile := &domain.Profile{
		ID:        user.ID,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Keep the store and the metadata table consistent.
		_ = s.identityClient.AdminDeleteUser(ctx, user.ID)
		return nil, nil, err
	}

	session, err := s.identityClient.SignInWithPassword(ctx, input.Email, input.Password)
	if err != nil {
		return nil, nil, err
	}

	return profile, session, nil
}

// CreateUser provisions an account with an explicit role, without signing
// it in. Admin dashboards use this to onboard instructors and staff.
func (s *AccountService) CreateUser(ctx context.Context, input RegisterInput) (*domain.Profile, error) {
	existing, err := s.profileRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailExists
	}

	if !input.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.identityClient.AdminCreateUser(ctx, input.Email, input.Password, input.Role.String())
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:        user.ID,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      input.Role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		_ = s.identityClient.AdminDeleteUser(ctx, user.ID)
		return nil, err
	}

	return profile, nil
}

// DeleteUser removes the identity, its profile and its enrollments.
func (s *AccountService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.profileRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProfileNotFound
		}
		return err
	}

	if err := s.identityClient.AdminDeleteUser(ctx, id); err != nil {
		return err
	}

	_ = s.enrollmentRepo.DeleteByUserID(ctx, id)
	return s.profileRepo.Delete(ctx, id)
}

func (s *AccountService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *AccountService) ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.profileRepo.List(ctx, limit, offset)
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	ImageURL  *string
}

// UpdateProfile applies a partial update to the caller's own metadata. Role
// and email are not editable here.
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.Profile, error) {
	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.ImageURL != nil {
		profile.ImageURL = *input.ImageURL
	}
	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
