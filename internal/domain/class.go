package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClassCategory groups classes on the schedule pages
type ClassCategory string

const (
	CategoryYoga     ClassCategory = "yoga"
	CategoryStrength ClassCategory = "strength"
	CategoryCardio   ClassCategory = "cardio"
	CategoryPilates  ClassCategory = "pilates"
	CategoryMobility ClassCategory = "mobility"
)

// AllCategories contains all valid class categories
var AllCategories = []ClassCategory{
	CategoryYoga, CategoryStrength, CategoryCardio, CategoryPilates, CategoryMobility,
}

// IsValid checks if a category is valid
func (c ClassCategory) IsValid() bool {
	switch c {
	case CategoryYoga, CategoryStrength, CategoryCardio, CategoryPilates, CategoryMobility:
		return true
	}
	return false
}

type Class struct {
	ID              uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title           string        `json:"title" gorm:"not null"`
	Description     string        `json:"description"`
	Category        ClassCategory `json:"category" gorm:"type:varchar(32);not null"`
	InstructorID    uuid.UUID     `json:"instructorId" gorm:"type:uuid;not null;index"`
	StartsAt        time.Time     `json:"startsAt" gorm:"not null"`
	DurationMinutes int           `json:"durationMinutes" gorm:"not null"`
	Capacity        int           `json:"capacity" gorm:"not null"`
	VideoAssetID    *uuid.UUID    `json:"videoAssetId" gorm:"type:uuid"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type Enrollment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClassID   uuid.UUID `json:"classId" gorm:"type:uuid;not null;uniqueIndex:idx_class_user"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_class_user"`
	CreatedAt time.Time `json:"createdAt"`
}
