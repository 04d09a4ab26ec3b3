package models

import (
	"time"

	"gorm.io/gorm"
)

// Template is the aggregate root of one design document: a fixed-size
// canvas plus its element collections. Rendering order is derived from
// zIndex, not from collection order.
type Template struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Size            CanvasSize     `gorm:"not null;type:varchar(16)" json:"size"`
	BackgroundImage string         `gorm:"type:text" json:"background_image,omitempty"`
	Thumbnail       string         `gorm:"type:text" json:"thumbnail,omitempty"`
	IsDefault       bool           `gorm:"default:false" json:"is_default"`
	IsLiked         bool           `gorm:"default:false" json:"is_liked"`
	IsAssignable    bool           `gorm:"default:false" json:"is_assignable"`
	OwnerID         *string        `gorm:"index;type:varchar(255)" json:"owner_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Images []ImageElement `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"images"`
	Texts  []TextElement  `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"texts"`
	Shapes []ShapeElement `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"shapes"`
}

// ElementCount returns the total number of child elements.
func (t *Template) ElementCount() int {
	return len(t.Images) + len(t.Texts) + len(t.Shapes)
}

// FindElement looks up a child element by kind and uuid.
func (t *Template) FindElement(kind ElementKind, uuid string) (DesignElement, bool) {
	switch kind {
	case ElementKindImage:
		for i := range t.Images {
			if t.Images[i].UUID == uuid {
				return &t.Images[i], true
			}
		}
	case ElementKindText:
		for i := range t.Texts {
			if t.Texts[i].UUID == uuid {
				return &t.Texts[i], true
			}
		}
	case ElementKindShape:
		for i := range t.Shapes {
			if t.Shapes[i].UUID == uuid {
				return &t.Shapes[i], true
			}
		}
	}
	return nil, false
}

// Clone returns a deep value copy of the template and every child element.
// Used for history snapshots and working copies; a structural copy avoids
// the cost and lossiness of serialize-then-parse cloning.
func (t *Template) Clone() *Template {
	out := *t
	out.Images = make([]ImageElement, len(t.Images))
	for i := range t.Images {
		out.Images[i] = t.Images[i].Clone()
	}
	out.Texts = make([]TextElement, len(t.Texts))
	for i := range t.Texts {
		out.Texts[i] = t.Texts[i].Clone()
	}
	out.Shapes = make([]ShapeElement, len(t.Shapes))
	for i := range t.Shapes {
		out.Shapes[i] = t.Shapes[i].Clone()
	}
	return &out
}
