package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/postcraft-io/template-studio/internal/models"
	"gorm.io/gorm"
)

// AssetService is the image-upload boundary: raw bytes or a data URL go
// in, a stored asset reference usable as an element image field comes out.
type AssetService interface {
	StoreAsset(name, contentType string, data []byte, ownerID *string) (*models.Asset, error)
	StoreDataURL(name, dataURL string, ownerID *string) (*models.Asset, error)
	GetAsset(id string) (*models.Asset, error)
	// ReadAsset satisfies the canvas resolver's local store.
	ReadAsset(id string) ([]byte, error)
}

type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetService
func NewAssetService(db *gorm.DB) AssetService {
	return &assetService{db: db}
}

// StoreAsset persists raw image bytes and returns the stored asset.
func (s *assetService) StoreAsset(name, contentType string, data []byte, ownerID *string) (*models.Asset, error) {
	if len(data) == 0 {
		return nil, &models.ValidationError{Field: "data", Reason: "must not be empty"}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	asset := &models.Asset{
		ID:          uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Data:        data,
		OwnerID:     ownerID,
	}
	if err := s.db.Create(asset).Error; err != nil {
		return nil, fmt.Errorf("store asset: %w", err)
	}
	return asset, nil
}

// StoreDataURL decodes a base64 data URL and stores its payload.
func (s *assetService) StoreDataURL(name, dataURL string, ownerID *string) (*models.Asset, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, &models.ValidationError{Field: "data", Reason: "expected a data URL"}
	}
	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return nil, &models.ValidationError{Field: "data", Reason: "malformed data URL"}
	}
	meta := dataURL[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, &models.ValidationError{Field: "data", Reason: "only base64 data URLs are supported"}
	}
	contentType := strings.TrimSuffix(meta, ";base64")

	raw, err := base64.StdEncoding.DecodeString(dataURL[comma+1:])
	if err != nil {
		return nil, &models.ValidationError{Field: "data", Reason: fmt.Sprintf("invalid base64 payload: %v", err)}
	}
	return s.StoreAsset(name, contentType, raw, ownerID)
}

// GetAsset returns a stored asset by id.
func (s *assetService) GetAsset(id string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("asset %s not found", id)
		}
		return nil, fmt.Errorf("fetch asset %s: %w", id, err)
	}
	return &asset, nil
}

// ReadAsset returns the raw bytes of a stored asset.
func (s *assetService) ReadAsset(id string) ([]byte, error) {
	asset, err := s.GetAsset(id)
	if err != nil {
		return nil, err
	}
	return asset.Data, nil
}
