package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/models"
	"gorm.io/gorm"
)

// ElementService owns the per-element persistence operations. Every write
// path normalizes the element first, so geometry stored server-side is
// always finite and in range. Add/Update/Delete return the whole refreshed
// template so the caller can reconcile its local copy.
type ElementService interface {
	AddElement(templateID uint, kind models.ElementKind, raw json.RawMessage) (*models.Template, error)
	UpdateElement(templateID uint, kind models.ElementKind, elementID string, raw json.RawMessage) (*models.Template, error)
	DeleteElement(templateID uint, kind models.ElementKind, elementID string) (*models.Template, error)

	AddImageElement(templateID uint, patch canvas.ImagePatch) (*models.Template, error)
	AddTextElement(templateID uint, patch canvas.TextPatch) (*models.Template, error)
	AddShapeElement(templateID uint, patch canvas.ShapePatch) (*models.Template, error)
	UpdateImageElement(templateID uint, elementID string, patch canvas.ImagePatch) (*models.Template, error)
	UpdateTextElement(templateID uint, elementID string, patch canvas.TextPatch) (*models.Template, error)
	UpdateShapeElement(templateID uint, elementID string, patch canvas.ShapePatch) (*models.Template, error)
}

type elementService struct {
	db        *gorm.DB
	templates TemplateService
}

// NewElementService creates a new ElementService
func NewElementService(db *gorm.DB, templates TemplateService) ElementService {
	return &elementService{db: db, templates: templates}
}

// AddElement decodes raw into the patch type for kind and creates the
// element. The server assigns the uuid.
func (s *elementService) AddElement(templateID uint, kind models.ElementKind, raw json.RawMessage) (*models.Template, error) {
	switch kind {
	case models.ElementKindImage:
		var patch canvas.ImagePatch
		if err := decodePatch(raw, &patch); err != nil {
			return nil, err
		}
		return s.AddImageElement(templateID, patch)
	case models.ElementKindText:
		var patch canvas.TextPatch
		if err := decodePatch(raw, &patch); err != nil {
			return nil, err
		}
		return s.AddTextElement(templateID, patch)
	case models.ElementKindShape:
		var patch canvas.ShapePatch
		if err := decodePatch(raw, &patch); err != nil {
			return nil, err
		}
		return s.AddShapeElement(templateID, patch)
	default:
		return nil, &models.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown element kind %q", kind)}
	}
}

// UpdateElement decodes raw into the patch type for kind and applies it as
// a partial update. Fields not present in raw are left unchanged.
func (s *elementService) UpdateElement(templateID uint, kind models.ElementKind, elementID string, raw json.RawMessage) (*models.Template, error) {
	switch kind {
	case models.ElementKindImage:
		var patch canvas.ImagePatch
		if err := decodePatch(raw, &patch); err != nil {
			return nil, err
		}
		return s.UpdateImageElement(templateID, elementID, patch)
	case models.ElementKindText:
		var patch canvas.TextPatch
		if err := decodePatch(raw, &patch); err != nil {
			return nil, err
		}
		return s.UpdateTextElement(templateID, elementID, patch)
	case models.ElementKindShape:
		var patch canvas.ShapePatch
		if err := decodePatch(raw, &patch); err != nil {
			return nil, err
		}
		return s.UpdateShapeElement(templateID, elementID, patch)
	default:
		return nil, &models.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown element kind %q", kind)}
	}
}

// DeleteElement removes one element from the template.
func (s *elementService) DeleteElement(templateID uint, kind models.ElementKind, elementID string) (*models.Template, error) {
	if _, err := s.templates.GetTemplateByID(templateID); err != nil {
		return nil, err
	}

	var result *gorm.DB
	switch kind {
	case models.ElementKindImage:
		result = s.db.Where("template_id = ? AND uuid = ?", templateID, elementID).Delete(&models.ImageElement{})
	case models.ElementKindText:
		result = s.db.Where("template_id = ? AND uuid = ?", templateID, elementID).Delete(&models.TextElement{})
	case models.ElementKindShape:
		result = s.db.Where("template_id = ? AND uuid = ?", templateID, elementID).Delete(&models.ShapeElement{})
	default:
		return nil, &models.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown element kind %q", kind)}
	}
	if result.Error != nil {
		return nil, fmt.Errorf("delete %s element %s: %w", kind, elementID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, models.ErrElementNotFound
	}
	return s.templates.GetTemplateByID(templateID)
}

func (s *elementService) AddImageElement(templateID uint, patch canvas.ImagePatch) (*models.Template, error) {
	if _, err := s.templates.GetTemplateByID(templateID); err != nil {
		return nil, err
	}
	el := canvas.NormalizeImage(patch)
	el.UUID = uuid.NewString()
	el.TemplateID = templateID
	if err := s.db.Create(&el).Error; err != nil {
		return nil, fmt.Errorf("add image element: %w", err)
	}
	return s.templates.GetTemplateByID(templateID)
}

func (s *elementService) AddTextElement(templateID uint, patch canvas.TextPatch) (*models.Template, error) {
	if _, err := s.templates.GetTemplateByID(templateID); err != nil {
		return nil, err
	}
	el := canvas.NormalizeText(patch)
	el.UUID = uuid.NewString()
	el.TemplateID = templateID
	if err := s.db.Create(&el).Error; err != nil {
		return nil, fmt.Errorf("add text element: %w", err)
	}
	return s.templates.GetTemplateByID(templateID)
}

func (s *elementService) AddShapeElement(templateID uint, patch canvas.ShapePatch) (*models.Template, error) {
	if _, err := s.templates.GetTemplateByID(templateID); err != nil {
		return nil, err
	}
	el := canvas.NormalizeShape(patch)
	el.UUID = uuid.NewString()
	el.TemplateID = templateID
	if err := s.db.Create(&el).Error; err != nil {
		return nil, fmt.Errorf("add shape element: %w", err)
	}
	return s.templates.GetTemplateByID(templateID)
}

func (s *elementService) UpdateImageElement(templateID uint, elementID string, patch canvas.ImagePatch) (*models.Template, error) {
	var el models.ImageElement
	if err := s.loadElement(templateID, elementID, &el); err != nil {
		return nil, err
	}
	canvas.MergeImage(&el, patch)
	if err := s.db.Save(&el).Error; err != nil {
		return nil, fmt.Errorf("update image element %s: %w", elementID, err)
	}
	return s.templates.GetTemplateByID(templateID)
}

func (s *elementService) UpdateTextElement(templateID uint, elementID string, patch canvas.TextPatch) (*models.Template, error) {
	var el models.TextElement
	if err := s.loadElement(templateID, elementID, &el); err != nil {
		return nil, err
	}
	canvas.MergeText(&el, patch)
	if err := s.db.Save(&el).Error; err != nil {
		return nil, fmt.Errorf("update text element %s: %w", elementID, err)
	}
	return s.templates.GetTemplateByID(templateID)
}

func (s *elementService) UpdateShapeElement(templateID uint, elementID string, patch canvas.ShapePatch) (*models.Template, error) {
	var el models.ShapeElement
	if err := s.loadElement(templateID, elementID, &el); err != nil {
		return nil, err
	}
	canvas.MergeShape(&el, patch)
	if err := s.db.Save(&el).Error; err != nil {
		return nil, fmt.Errorf("update shape element %s: %w", elementID, err)
	}
	return s.templates.GetTemplateByID(templateID)
}

func (s *elementService) loadElement(templateID uint, elementID string, dest interface{}) error {
	if _, err := s.templates.GetTemplateByID(templateID); err != nil {
		return err
	}
	err := s.db.Where("template_id = ? AND uuid = ?", templateID, elementID).First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrElementNotFound
		}
		return fmt.Errorf("load element %s: %w", elementID, err)
	}
	return nil
}

func decodePatch(raw json.RawMessage, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &models.ValidationError{Field: "fields", Reason: fmt.Sprintf("malformed element fields: %v", err)}
	}
	return nil
}
