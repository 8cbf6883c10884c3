package postgres

import (
	"context"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *classRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *domain.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Class, error) {
	var class domain.Class
	err := r.db.WithContext(ctx).First(&class, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) List(ctx context.Context, filter repository.ClassFilter) ([]*domain.Class, error) {
	query := r.db.WithContext(ctx).Model(&domain.Class{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.InstructorID != uuid.Nil {
		query = query.Where("instructor_id = ?", filter.InstructorID)
	}
	if !filter.From.IsZero() {
		query = query.Where("starts_at >= ?", filter.From)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var classes []*domain.Class
	err := query.Order("starts_at").Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) GetByInstructorID(ctx context.Context, instructorID uuid.UUID) ([]*domain.Class, error) {
	var classes []*domain.Class
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("starts_at").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) Update(ctx context.Context, class *domain.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Class{}, "id = ?", id).Error
}
