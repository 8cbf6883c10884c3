package postgres

import (
	"context"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type videoAssetRepository struct {
	db *gorm.DB
}

func NewVideoAssetRepository(db *gorm.DB) *videoAssetRepository {
	return &videoAssetRepository{db: db}
}

func (r *videoAssetRepository) Create(ctx context.Context, asset *domain.VideoAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *videoAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VideoAsset, error) {
	var asset domain.VideoAsset
	err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *videoAssetRepository) GetByProviderUploadID(ctx context.Context, uploadID string) (*domain.VideoAsset, error) {
	var asset domain.VideoAsset
	err := r.db.WithContext(ctx).First(&asset, "provider_upload_id = ?", uploadID).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *videoAssetRepository) GetByProviderAssetID(ctx context.Context, assetID string) (*domain.VideoAsset, error) {
	var asset domain.VideoAsset
	err := r.db.WithContext(ctx).First(&asset, "provider_asset_id = ?", assetID).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *videoAssetRepository) List(ctx context.Context, limit, offset int) ([]*domain.VideoAsset, error) {
	var assets []*domain.VideoAsset
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *videoAssetRepository) Update(ctx context.Context, asset *domain.VideoAsset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *videoAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.VideoAsset{}, "id = ?", id).Error
}
