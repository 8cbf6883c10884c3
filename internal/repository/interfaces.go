package repository

import (
	"context"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClassRepository interface {
	Create(ctx context.Context, class *domain.Class) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Class, error)
	List(ctx context.Context, filter ClassFilter) ([]*domain.Class, error)
	GetByInstructorID(ctx context.Context, instructorID uuid.UUID) ([]*domain.Class, error)
	Update(ctx context.Context, class *domain.Class) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClassFilter narrows class listings; zero values mean "no constraint".
type ClassFilter struct {
	Category     domain.ClassCategory
	InstructorID uuid.UUID
	From         time.Time
	Limit        int
	Offset       int
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	GetByClassAndUser(ctx context.Context, classID, userID uuid.UUID) (*domain.Enrollment, error)
	GetByClassID(ctx context.Context, classID uuid.UUID) ([]*domain.Enrollment, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Enrollment, error)
	CountByClassID(ctx context.Context, classID uuid.UUID) (int64, error)
	Delete(ctx context.Context, classID, userID uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type VideoAssetRepository interface {
	Create(ctx context.Context, asset *domain.VideoAsset) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VideoAsset, error)
	GetByProviderUploadID(ctx context.Context, uploadID string) (*domain.VideoAsset, error)
	GetByProviderAssetID(ctx context.Context, assetID string) (*domain.VideoAsset, error)
	List(ctx context.Context, limit, offset int) ([]*domain.VideoAsset, error)
	Update(ctx context.Context, asset *domain.VideoAsset) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	Profile    ProfileRepository
	Class      ClassRepository
	Enrollment EnrollmentRepository
	VideoAsset VideoAssetRepository
}
