package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/postcraft-io/template-studio/internal/models"
	"gorm.io/gorm"
)

// TemplateUpdate is a partial template-level update: rename, like/unlike,
// thumbnail update, size correction. Nil fields are left unchanged.
type TemplateUpdate struct {
	Name            *string `json:"name,omitempty"`
	Size            *string `json:"size,omitempty"`
	BackgroundImage *string `json:"background_image,omitempty"`
	Thumbnail       *string `json:"thumbnail,omitempty"`
	IsDefault       *bool   `json:"is_default,omitempty"`
	IsLiked         *bool   `json:"is_liked,omitempty"`
	IsAssignable    *bool   `json:"is_assignable,omitempty"`
}

// TemplateService handles template-level operations
type TemplateService interface {
	CreateTemplate(name, size string, ownerID *string, backgroundImage string) (*models.Template, error)
	GetTemplateByID(id uint) (*models.Template, error)
	ListTemplates(keyword, ownerID string, likedOnly bool, limit int) ([]models.Template, error)
	UpdateTemplate(id uint, update TemplateUpdate) (*models.Template, error)
	DeleteTemplate(id uint) error
	CopyTemplate(sourceID uint, newName string, ownerID *string) (*models.Template, error)
}

type templateService struct {
	db *gorm.DB
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(db *gorm.DB) TemplateService {
	return &templateService{db: db}
}

// CreateTemplate creates a new empty template. size must be one of the
// supported canvas sizes.
func (s *templateService) CreateTemplate(name, size string, ownerID *string, backgroundImage string) (*models.Template, error) {
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	canvasSize, err := models.ParseCanvasSize(size)
	if err != nil {
		return nil, err
	}

	template := &models.Template{
		Name:            name,
		Size:            canvasSize,
		BackgroundImage: backgroundImage,
		OwnerID:         ownerID,
	}
	if err := s.db.Create(template).Error; err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return s.GetTemplateByID(template.ID)
}

// GetTemplateByID returns a template with all element collections loaded.
func (s *templateService) GetTemplateByID(id uint) (*models.Template, error) {
	var template models.Template
	err := s.db.
		Preload("Images").
		Preload("Texts").
		Preload("Shapes").
		First(&template, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("fetch template %d: %w", id, err)
	}
	return &template, nil
}

// ListTemplates returns templates with optional filtering
func (s *templateService) ListTemplates(keyword, ownerID string, likedOnly bool, limit int) ([]models.Template, error) {
	query := s.db.Model(&models.Template{})

	if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if likedOnly {
		query = query.Where("is_liked = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var templates []models.Template
	err := query.Order("updated_at DESC").Find(&templates).Error
	return templates, err
}

// UpdateTemplate applies a partial update and returns the refreshed
// template.
func (s *templateService) UpdateTemplate(id uint, update TemplateUpdate) (*models.Template, error) {
	if _, err := s.GetTemplateByID(id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		if *update.Name == "" {
			return nil, &models.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		updates["name"] = *update.Name
	}
	if update.Size != nil {
		size, err := models.ParseCanvasSize(*update.Size)
		if err != nil {
			return nil, err
		}
		updates["size"] = size
	}
	if update.BackgroundImage != nil {
		updates["background_image"] = *update.BackgroundImage
	}
	if update.Thumbnail != nil {
		updates["thumbnail"] = *update.Thumbnail
	}
	if update.IsDefault != nil {
		updates["is_default"] = *update.IsDefault
	}
	if update.IsLiked != nil {
		updates["is_liked"] = *update.IsLiked
	}
	if update.IsAssignable != nil {
		updates["is_assignable"] = *update.IsAssignable
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Template{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update template %d: %w", id, err)
		}
	}
	return s.GetTemplateByID(id)
}

// DeleteTemplate deletes a template and its elements.
func (s *templateService) DeleteTemplate(id uint) error {
	if _, err := s.GetTemplateByID(id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.ImageElement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.TextElement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.ShapeElement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Template{}, id).Error
	})
}

// CopyTemplate deep-copies a template: a new template row with the same
// size and background, then every child element re-created under the new
// id with a fresh uuid. The whole copy runs in one transaction, so a
// failure partway rolls back instead of leaving a partially-populated
// copy behind.
func (s *templateService) CopyTemplate(sourceID uint, newName string, ownerID *string) (*models.Template, error) {
	source, err := s.GetTemplateByID(sourceID)
	if err != nil {
		return nil, err
	}
	if newName == "" {
		newName = source.Name + " (copy)"
	}

	var newID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		copy := &models.Template{
			Name:            newName,
			Size:            source.Size,
			BackgroundImage: source.BackgroundImage,
			Thumbnail:       source.Thumbnail,
			IsAssignable:    source.IsAssignable,
			OwnerID:         ownerID,
		}
		if err := tx.Create(copy).Error; err != nil {
			return fmt.Errorf("create template copy: %w", err)
		}
		newID = copy.ID

		// Children are re-created text first, then image, then shape.
		for i := range source.Texts {
			el := source.Texts[i].Clone()
			el.UUID = uuid.NewString()
			el.TemplateID = copy.ID
			if err := tx.Create(&el).Error; err != nil {
				return fmt.Errorf("copy text element %s: %w", source.Texts[i].UUID, err)
			}
		}
		for i := range source.Images {
			el := source.Images[i].Clone()
			el.UUID = uuid.NewString()
			el.TemplateID = copy.ID
			if err := tx.Create(&el).Error; err != nil {
				return fmt.Errorf("copy image element %s: %w", source.Images[i].UUID, err)
			}
		}
		for i := range source.Shapes {
			el := source.Shapes[i].Clone()
			el.UUID = uuid.NewString()
			el.TemplateID = copy.ID
			if err := tx.Create(&el).Error; err != nil {
				return fmt.Errorf("copy shape element %s: %w", source.Shapes[i].UUID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTemplateByID(newID)
}
