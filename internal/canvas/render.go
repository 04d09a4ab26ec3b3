package canvas

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/models"
)

// Renderer rasterizes templates: background first, then every element in
// ascending zIndex order.
type Renderer struct {
	resolver *Resolver
	fonts    *FontLibrary
	log      *logger.Logger
}

// NewRenderer builds a renderer over an image resolver and font library.
func NewRenderer(resolver *Resolver, fonts *FontLibrary, log *logger.Logger) *Renderer {
	return &Renderer{
		resolver: resolver,
		fonts:    fonts,
		log:      log.With("component", "renderer"),
	}
}

// Render paints the template at its native canvas resolution. A background
// image that cannot be resolved degrades to a blank canvas; a missing
// element image fails the render, since silently dropping user content
// from an export would be worse than reporting it.
func (r *Renderer) Render(ctx context.Context, t *models.Template) (image.Image, error) {
	width, height := t.Size.Dimensions()
	if width <= 0 || height <= 0 {
		return nil, &models.ValidationError{Field: "size", Reason: fmt.Sprintf("size %q does not parse into positive dimensions", t.Size)}
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	r.paintBackground(ctx, dc, t, width, height)

	for _, el := range BuildScene(t) {
		var err error
		switch e := el.(type) {
		case *models.ImageElement:
			err = r.paintImage(ctx, dc, e)
		case *models.TextElement:
			r.paintText(dc, e)
		case *models.ShapeElement:
			r.paintShape(dc, e)
		default:
			err = fmt.Errorf("unhandled element kind %q", el.Kind())
		}
		if err != nil {
			return nil, fmt.Errorf("render element %s: %w", el.ID(), err)
		}
	}

	return dc.Image(), nil
}

func (r *Renderer) paintBackground(ctx context.Context, dc *gg.Context, t *models.Template, width, height int) {
	if t.BackgroundImage == "" {
		return
	}
	img, err := r.resolver.Fetch(ctx, t.BackgroundImage)
	if err != nil {
		r.log.Warn("background image unavailable, rendering blank canvas",
			"template", t.ID, "ref", t.BackgroundImage, "error", err)
		return
	}
	dc.DrawImage(scaleImage(img, width, height), 0, 0)
}

func (r *Renderer) paintImage(ctx context.Context, dc *gg.Context, e *models.ImageElement) error {
	if e.Image == "" {
		return nil
	}
	img, err := r.resolver.Fetch(ctx, e.Image)
	if err != nil {
		return err
	}

	w := int(math.Round(e.Width))
	h := int(math.Round(e.Height))
	scaled := scaleImage(img, w, h)
	if e.Opacity < 1 {
		scaled = fadeImage(scaled, e.Opacity)
	}

	dc.Push()
	rotateAbout(dc, e.Rotation, e.PositionX+e.Width/2, e.PositionY+e.Height/2)
	if e.BorderRadius > 0 {
		dc.DrawRoundedRectangle(e.PositionX, e.PositionY, e.Width, e.Height, e.BorderRadius)
		dc.Clip()
	}
	dc.DrawImage(scaled, int(math.Round(e.PositionX)), int(math.Round(e.PositionY)))
	if e.BorderRadius > 0 {
		dc.ResetClip()
	}
	dc.Pop()
	return nil
}

func (r *Renderer) paintText(dc *gg.Context, e *models.TextElement) {
	if e.Text == "" {
		return
	}
	face := r.fonts.Face(e.FontFamily, e.FontSize)
	dc.SetFontFace(face)

	cr, cg, cb := ParseHexColor(e.Color)
	dc.SetRGBA255(int(cr), int(cg), int(cb), int(e.Opacity*255))

	tw, _ := dc.MeasureString(e.Text)

	dc.Push()
	rotateAbout(dc, e.Rotation, e.PositionX+tw/2, e.PositionY+e.FontSize/2)
	// DrawString anchors at the baseline; offset by the font size to keep
	// PositionX/PositionY the top-left corner of the run.
	dc.DrawString(e.Text, e.PositionX, e.PositionY+e.FontSize)
	dc.Pop()
}

func (r *Renderer) paintShape(dc *gg.Context, e *models.ShapeElement) {
	cr, cg, cb := ParseHexColor(e.Color)

	dc.Push()
	rotateAbout(dc, e.Rotation, e.PositionX+e.Width/2, e.PositionY+e.Height/2)
	dc.SetRGBA255(int(cr), int(cg), int(cb), int(e.Opacity*255))

	x, y, w, h := e.PositionX, e.PositionY, e.Width, e.Height
	switch e.ShapeType {
	case models.ShapeRectangle:
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	case models.ShapeCircle:
		dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
		dc.Fill()
	case models.ShapeTriangle:
		dc.MoveTo(x+w/2, y)
		dc.LineTo(x+w, y+h)
		dc.LineTo(x, y+h)
		dc.ClosePath()
		dc.Fill()
	case models.ShapeLine:
		dc.SetLineWidth(math.Max(h/5, 2))
		dc.DrawLine(x, y+h/2, x+w, y+h/2)
		dc.Stroke()
	case models.ShapeStar:
		drawStar(dc, x+w/2, y+h/2, math.Min(w, h)/2)
		dc.Fill()
	default:
		// normalization guarantees a known shape type; guarded anyway
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	}
	dc.Pop()
}

// drawStar traces a five-pointed star centered on (cx, cy).
func drawStar(dc *gg.Context, cx, cy, outer float64) {
	inner := outer * 0.4
	for i := 0; i < 10; i++ {
		radius := outer
		if i%2 == 1 {
			radius = inner
		}
		angle := float64(i)*math.Pi/5 - math.Pi/2
		px := cx + radius*math.Cos(angle)
		py := cy + radius*math.Sin(angle)
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.ClosePath()
}

func rotateAbout(dc *gg.Context, degrees, cx, cy float64) {
	if degrees != 0 {
		dc.RotateAbout(gg.Radians(degrees), cx, cy)
	}
}

// scaleImage resizes img to exactly w×h using CatmullRom interpolation.
func scaleImage(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return img
	}
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// fadeImage applies a uniform opacity to img.
func fadeImage(img image.Image, opacity float64) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	draw.DrawMask(dst, b, img, b.Min, mask, image.Point{}, draw.Over)
	return dst
}
