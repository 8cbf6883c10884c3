package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VideoStatus tracks an asset through the hosting provider's pipeline
type VideoStatus string

const (
	VideoStatusWaiting VideoStatus = "waiting"
	VideoStatusReady   VideoStatus = "ready"
	VideoStatusErrored VideoStatus = "errored"
)

// VideoAsset mirrors a video-host asset. ProviderAssetID and PlaybackID are
// assigned by the provider; the raw webhook payload that last touched the
// row is kept in Payload for debugging.
type VideoAsset struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProviderUploadID string         `json:"providerUploadId" gorm:"uniqueIndex"`
	ProviderAssetID  string         `json:"providerAssetId" gorm:"index"`
	Status           VideoStatus    `json:"status" gorm:"type:varchar(16);not null;default:'waiting'"`
	PlaybackID       string         `json:"playbackId"`
	Title            string         `json:"title"`
	CreatedBy        uuid.UUID      `json:"createdBy" gorm:"type:uuid;not null"`
	Payload          datatypes.JSON `json:"-"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
