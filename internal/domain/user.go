package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the auxiliary metadata record for an identity. The id is the
// identity provider's user id; email is owned by the provider and mirrored
// here for display.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role" gorm:"type:varchar(32);not null;default:'user'"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
