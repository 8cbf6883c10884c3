package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/config"
	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/fitstudio/fitstudio-server/internal/videohost"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoService struct {
	videoClient *videohost.Client
	assetRepo   repository.VideoAssetRepository
	cfg         *config.Config
}

func NewVideoService(videoClient *videohost.Client, assetRepo repository.VideoAssetRepository, cfg *config.Config) *VideoService {
	return &VideoService{
		videoClient: videoClient,
		assetRepo:   assetRepo,
		cfg:         cfg,
	}
}

// UploadSlot is a pending direct upload returned to the browser.
type UploadSlot struct {
	Asset     *domain.VideoAsset
	UploadURL string
}

// CreateUpload requests a direct-upload slot from the video host and
// records the pending asset.
func (s *VideoService) CreateUpload(ctx context.Context, createdBy uuid.UUID, title, corsOrigin string) (*UploadSlot, error) {
	upload, err := s.videoClient.CreateDirectUpload(ctx, corsOrigin)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload slot: %w", err)
	}

	asset := &domain.VideoAsset{
		ID:               uuid.New(),
		ProviderUploadID: upload.ID,
		ProviderAssetID:  upload.AssetID,
		Status:           domain.VideoStatusWaiting,
		Title:            title,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	return &UploadSlot{Asset: asset, UploadURL: upload.URL}, nil
}

func (s *VideoService) Get(ctx context.Context, id uuid.UUID) (*domain.VideoAsset, error) {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return asset, nil
}

func (s *VideoService) List(ctx context.Context, limit, offset int) ([]*domain.VideoAsset, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.assetRepo.List(ctx, limit, offset)
}

// Delete removes the asset at the provider first, then locally.
func (s *VideoService) Delete(ctx context.Context, id uuid.UUID) error {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if asset.ProviderAssetID != "" {
		if err := s.videoClient.DeleteAsset(ctx, asset.ProviderAssetID); err != nil {
			return fmt.Errorf("failed to delete provider asset: %w", err)
		}
	}

	return s.assetRepo.Delete(ctx, id)
}

// ApplyWebhookEvent updates the local asset row from an asset-ready or
// asset-errored notification. Unknown event types and unknown assets are
// ignored so the provider does not retry them forever.
func (s *VideoService) ApplyWebhookEvent(ctx context.Context, event *videohost.Event, rawPayload []byte) error {
	if event.Type != videohost.EventAssetReady && event.Type != videohost.EventAssetErrored {
		return nil
	}

	asset, err := s.assetRepo.GetByProviderUploadID(ctx, event.Data.UploadID)
	if err != nil {
		if event.Data.ID != "" {
			asset, err = s.assetRepo.GetByProviderAssetID(ctx, event.Data.ID)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
	}

	asset.ProviderAssetID = event.Data.ID
	asset.Payload = rawPayload
	asset.UpdatedAt = time.Now()

	switch event.Type {
	case videohost.EventAssetReady:
		asset.Status = domain.VideoStatusReady
		if len(event.Data.PlaybackIDs) > 0 {
			asset.PlaybackID = event.Data.PlaybackIDs[0].ID
		}
	case videohost.EventAssetErrored:
		asset.Status = domain.VideoStatusErrored
	}

	return s.assetRepo.Update(ctx, asset)
}
