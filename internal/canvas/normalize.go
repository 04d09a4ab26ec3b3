package canvas

import (
	"encoding/hex"
	"math"
	"strings"

	"github.com/postcraft-io/template-studio/internal/models"
)

// Default and clamp values for element geometry. Every numeric field on
// every element must resolve to a finite number inside these bounds before
// it is rendered or persisted.
const (
	DefaultOpacity  = 1.0
	DefaultSize     = 100.0
	DefaultFontSize = 50.0
	DefaultFont     = "Arial"
	DefaultColor    = "#000000"

	MinElementSize = 10.0
	MinFontSize    = 8.0
	MaxFontSize    = 500.0
)

// BasePatch is a partial update of the geometry fields shared by all
// element variants. Nil fields are left untouched on merge and take their
// documented default on create.
type BasePatch struct {
	PositionX *float64    `json:"positionX,omitempty"`
	PositionY *float64    `json:"positionY,omitempty"`
	ZIndex    *float64    `json:"zIndex,omitempty"`
	Rotation  *float64    `json:"rotation,omitempty"`
	Opacity   *float64    `json:"opacity,omitempty"`
	Extra     models.JSON `json:"extra,omitempty"`
}

// ImagePatch is a partial update of an image element. ScaleX/ScaleY carry
// a transform-end scale factor; they are folded into absolute width and
// height immediately so scale is never stored alongside size.
type ImagePatch struct {
	BasePatch
	Image        *string  `json:"image,omitempty"`
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	BorderRadius *float64 `json:"borderRadius,omitempty"`
	ScaleX       *float64 `json:"scaleX,omitempty"`
	ScaleY       *float64 `json:"scaleY,omitempty"`
}

// TextPatch is a partial update of a text element. Text elements carry no
// scale: visual size is the font size.
type TextPatch struct {
	BasePatch
	Text       *string  `json:"text,omitempty"`
	FontFamily *string  `json:"font,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	Color      *string  `json:"color,omitempty"`
}

// ShapePatch is a partial update of a shape element.
type ShapePatch struct {
	BasePatch
	ShapeType *string  `json:"shapeType,omitempty"`
	Color     *string  `json:"color,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	ScaleX    *float64 `json:"scaleX,omitempty"`
	ScaleY    *float64 `json:"scaleY,omitempty"`
}

// NormalizeImage builds a fully-populated image element from a partial
// record. Total: never fails, never produces NaN or out-of-range values.
func NormalizeImage(raw ImagePatch) models.ImageElement {
	el := models.ImageElement{}
	applyBase(&el.ElementBase, raw.BasePatch)
	if raw.Image != nil {
		el.Image = *raw.Image
	}
	el.Width = finiteOr(raw.Width, DefaultSize)
	el.Height = finiteOr(raw.Height, DefaultSize)
	el.BorderRadius = finiteOr(raw.BorderRadius, 0)
	applyScale(&el.Width, &el.Height, raw.ScaleX, raw.ScaleY)
	RepairImage(&el)
	return el
}

// NormalizeText builds a fully-populated text element from a partial record.
func NormalizeText(raw TextPatch) models.TextElement {
	el := models.TextElement{}
	applyBase(&el.ElementBase, raw.BasePatch)
	if raw.Text != nil {
		el.Text = *raw.Text
	}
	if raw.FontFamily != nil {
		el.FontFamily = *raw.FontFamily
	}
	el.FontSize = finiteOr(raw.FontSize, DefaultFontSize)
	if raw.Color != nil {
		el.Color = *raw.Color
	}
	RepairText(&el)
	return el
}

// NormalizeShape builds a fully-populated shape element from a partial record.
func NormalizeShape(raw ShapePatch) models.ShapeElement {
	el := models.ShapeElement{}
	applyBase(&el.ElementBase, raw.BasePatch)
	if raw.ShapeType != nil {
		el.ShapeType = models.ShapeType(*raw.ShapeType)
	}
	if raw.Color != nil {
		el.Color = *raw.Color
	}
	el.Width = finiteOr(raw.Width, DefaultSize)
	el.Height = finiteOr(raw.Height, DefaultSize)
	applyScale(&el.Width, &el.Height, raw.ScaleX, raw.ScaleY)
	RepairShape(&el)
	return el
}

// MergeImage applies a partial update onto an existing element, then
// repairs the result. Fields absent from the patch keep their value.
func MergeImage(el *models.ImageElement, raw ImagePatch) {
	mergeBase(&el.ElementBase, raw.BasePatch)
	if raw.Image != nil {
		el.Image = *raw.Image
	}
	if raw.Width != nil {
		el.Width = *raw.Width
	}
	if raw.Height != nil {
		el.Height = *raw.Height
	}
	if raw.BorderRadius != nil {
		el.BorderRadius = *raw.BorderRadius
	}
	applyScale(&el.Width, &el.Height, raw.ScaleX, raw.ScaleY)
	RepairImage(el)
}

// MergeText applies a partial update onto an existing text element.
func MergeText(el *models.TextElement, raw TextPatch) {
	mergeBase(&el.ElementBase, raw.BasePatch)
	if raw.Text != nil {
		el.Text = *raw.Text
	}
	if raw.FontFamily != nil {
		el.FontFamily = *raw.FontFamily
	}
	if raw.FontSize != nil {
		el.FontSize = *raw.FontSize
	}
	if raw.Color != nil {
		el.Color = *raw.Color
	}
	RepairText(el)
}

// MergeShape applies a partial update onto an existing shape element.
func MergeShape(el *models.ShapeElement, raw ShapePatch) {
	mergeBase(&el.ElementBase, raw.BasePatch)
	if raw.ShapeType != nil {
		el.ShapeType = models.ShapeType(*raw.ShapeType)
	}
	if raw.Color != nil {
		el.Color = *raw.Color
	}
	if raw.Width != nil {
		el.Width = *raw.Width
	}
	if raw.Height != nil {
		el.Height = *raw.Height
	}
	applyScale(&el.Width, &el.Height, raw.ScaleX, raw.ScaleY)
	RepairShape(el)
}

// RepairImage coerces every numeric field of an image element to a finite
// in-range value. Idempotent.
func RepairImage(el *models.ImageElement) {
	repairBase(&el.ElementBase)
	el.Width = clampSize(el.Width)
	el.Height = clampSize(el.Height)
	el.BorderRadius = math.Max(finite(el.BorderRadius, 0), 0)
}

// RepairText coerces every field of a text element to a valid value.
// fontSize is never allowed to be 0, NaN or infinite: those repair to the
// default before the element is rendered or persisted.
func RepairText(el *models.TextElement) {
	repairBase(&el.ElementBase)
	if !isFinite(el.FontSize) || el.FontSize <= 0 {
		el.FontSize = DefaultFontSize
	}
	el.FontSize = clamp(el.FontSize, MinFontSize, MaxFontSize)
	if strings.TrimSpace(el.FontFamily) == "" {
		el.FontFamily = DefaultFont
	}
	el.Color = normalizeHexColor(el.Color)
}

// RepairShape coerces every field of a shape element to a valid value.
// Unknown shape types fall back to rectangle.
func RepairShape(el *models.ShapeElement) {
	repairBase(&el.ElementBase)
	if !models.KnownShapeType(el.ShapeType) {
		el.ShapeType = models.ShapeRectangle
	}
	el.Color = normalizeHexColor(el.Color)
	el.Width = clampSize(el.Width)
	el.Height = clampSize(el.Height)
}

func applyBase(base *models.ElementBase, raw BasePatch) {
	base.PositionX = finiteOr(raw.PositionX, 0)
	base.PositionY = finiteOr(raw.PositionY, 0)
	base.ZIndex = int(finiteOr(raw.ZIndex, 0))
	base.Rotation = finiteOr(raw.Rotation, 0)
	base.Opacity = finiteOr(raw.Opacity, DefaultOpacity)
	if raw.Extra != nil {
		base.Extra = raw.Extra
	}
}

func mergeBase(base *models.ElementBase, raw BasePatch) {
	if raw.PositionX != nil {
		base.PositionX = *raw.PositionX
	}
	if raw.PositionY != nil {
		base.PositionY = *raw.PositionY
	}
	if raw.ZIndex != nil {
		base.ZIndex = int(finite(*raw.ZIndex, 0))
	}
	if raw.Rotation != nil {
		base.Rotation = *raw.Rotation
	}
	if raw.Opacity != nil {
		base.Opacity = *raw.Opacity
	}
	if raw.Extra != nil {
		base.Extra = raw.Extra
	}
}

func repairBase(base *models.ElementBase) {
	base.PositionX = finite(base.PositionX, 0)
	base.PositionY = finite(base.PositionY, 0)
	base.Rotation = finite(base.Rotation, 0)
	base.Opacity = clamp(finite(base.Opacity, DefaultOpacity), 0, 1)
}

// applyScale folds transform-end scale factors into absolute dimensions so
// size and scale never carry the same information twice.
func applyScale(width, height *float64, sx, sy *float64) {
	if sx != nil && isFinite(*sx) && *sx > 0 {
		*width = *width * *sx
	}
	if sy != nil && isFinite(*sy) && *sy > 0 {
		*height = *height * *sy
	}
}

func clampSize(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return DefaultSize
	}
	return math.Max(v, MinElementSize)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(v, def float64) float64 {
	if !isFinite(v) {
		return def
	}
	return v
}

func finiteOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return finite(*v, def)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeHexColor returns s as an uppercase #RRGGBB string, or the
// default color when s does not parse.
func normalizeHexColor(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultColor
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	s = strings.ToUpper(s)
	if len(s) != 7 {
		return DefaultColor
	}
	if _, err := hex.DecodeString(s[1:]); err != nil {
		return DefaultColor
	}
	return s
}

// ParseHexColor decodes a normalized #RRGGBB string into RGB components.
func ParseHexColor(s string) (r, g, b uint8) {
	s = normalizeHexColor(s)
	raw, err := hex.DecodeString(s[1:])
	if err != nil || len(raw) != 3 {
		return 0, 0, 0
	}
	return raw[0], raw[1], raw[2]
}
