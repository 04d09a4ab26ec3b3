package models

import (
	"time"
)

// ElementKind discriminates the three element variants. Every switch over a
// kind handles all three cases plus an explicit default.
type ElementKind string

const (
	ElementKindImage ElementKind = "image"
	ElementKindText  ElementKind = "text"
	ElementKindShape ElementKind = "shape"
)

// ParseElementKind validates a kind string.
func ParseElementKind(s string) (ElementKind, error) {
	switch ElementKind(s) {
	case ElementKindImage, ElementKindText, ElementKindShape:
		return ElementKind(s), nil
	default:
		return "", &ValidationError{Field: "kind", Reason: "must be one of image, text, shape"}
	}
}

// ShapeType enumerates the drawable shape primitives.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeTriangle  ShapeType = "triangle"
	ShapeLine      ShapeType = "line"
	ShapeStar      ShapeType = "star"
)

// KnownShapeType reports whether s is a recognized shape primitive.
func KnownShapeType(s ShapeType) bool {
	switch s {
	case ShapeRectangle, ShapeCircle, ShapeTriangle, ShapeLine, ShapeStar:
		return true
	default:
		return false
	}
}

// ElementBase carries the geometry fields shared by all element variants.
// Positions are in canvas coordinates: top-left origin, Y down, same space
// as the owning template's size.
type ElementBase struct {
	UUID       string    `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	TemplateID uint      `gorm:"index;not null" json:"-"`
	PositionX  float64   `json:"positionX"`
	PositionY  float64   `json:"positionY"`
	ZIndex     int       `json:"zIndex"`
	Rotation   float64   `json:"rotation"`
	Opacity    float64   `gorm:"default:1" json:"opacity"`
	Extra      JSON      `gorm:"type:text" json:"extra,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DesignElement is the tagged union over the three element variants.
type DesignElement interface {
	Kind() ElementKind
	ID() string
	Base() *ElementBase
}

// ImageElement is a placed raster image.
type ImageElement struct {
	ElementBase
	Image        string  `gorm:"type:text" json:"image"`
	Width        float64 `gorm:"default:100" json:"width"`
	Height       float64 `gorm:"default:100" json:"height"`
	BorderRadius float64 `json:"borderRadius"`
}

func (e *ImageElement) Kind() ElementKind  { return ElementKindImage }
func (e *ImageElement) ID() string         { return e.UUID }
func (e *ImageElement) Base() *ElementBase { return &e.ElementBase }

// Clone returns an independent copy.
func (e *ImageElement) Clone() ImageElement {
	out := *e
	out.Extra = e.Extra.Clone()
	return out
}

// TextElement is a placed run of styled text. Text elements have no free
// width/height: visual size is carried entirely by the font size, so the
// two never disagree.
type TextElement struct {
	ElementBase
	Text       string  `gorm:"type:text" json:"text"`
	FontFamily string  `gorm:"default:Arial" json:"font"`
	FontSize   float64 `gorm:"default:50" json:"fontSize"`
	Color      string  `gorm:"default:#000000" json:"color"`
}

func (e *TextElement) Kind() ElementKind  { return ElementKindText }
func (e *TextElement) ID() string         { return e.UUID }
func (e *TextElement) Base() *ElementBase { return &e.ElementBase }

// Clone returns an independent copy.
func (e *TextElement) Clone() TextElement {
	out := *e
	out.Extra = e.Extra.Clone()
	return out
}

// ShapeElement is a placed vector primitive.
type ShapeElement struct {
	ElementBase
	ShapeType ShapeType `gorm:"default:rectangle" json:"shapeType"`
	Color     string    `gorm:"default:#000000" json:"color"`
	Width     float64   `gorm:"default:100" json:"width"`
	Height    float64   `gorm:"default:100" json:"height"`
}

func (e *ShapeElement) Kind() ElementKind  { return ElementKindShape }
func (e *ShapeElement) ID() string         { return e.UUID }
func (e *ShapeElement) Base() *ElementBase { return &e.ElementBase }

// Clone returns an independent copy.
func (e *ShapeElement) Clone() ShapeElement {
	out := *e
	out.Extra = e.Extra.Clone()
	return out
}
