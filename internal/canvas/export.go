package canvas

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/postcraft-io/template-studio/internal/models"
)

// DefaultThumbnailSize caps the longest thumbnail edge in pixels.
const DefaultThumbnailSize = 512

// Exporter produces the two rasterization targets for a template: a
// full-resolution PNG and a bounded thumbnail.
type Exporter struct {
	renderer *Renderer
}

// NewExporter wraps a renderer.
func NewExporter(renderer *Renderer) *Exporter {
	return &Exporter{renderer: renderer}
}

// Export rasterizes the template at its native canvas resolution.
func (e *Exporter) Export(ctx context.Context, t *models.Template) ([]byte, error) {
	img, err := e.renderer.Render(ctx, t)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// Thumbnail rasterizes the template and scales it down so its longest edge
// is at most maxDim pixels, preserving aspect ratio. maxDim <= 0 uses the
// default cap.
func (e *Exporter) Thumbnail(ctx context.Context, t *models.Template, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultThumbnailSize
	}
	img, err := e.renderer.Render(ctx, t)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDim || h > maxDim {
		scale := float64(maxDim) / float64(w)
		if h > w {
			scale = float64(maxDim) / float64(h)
		}
		tw := int(float64(w) * scale)
		th := int(float64(h) * scale)
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
		img = dst
	}

	return encodePNG(img)
}

// ThumbnailDataURL returns the thumbnail as a data URL suitable for
// storing on Template.Thumbnail.
func (e *Exporter) ThumbnailDataURL(ctx context.Context, t *models.Template, maxDim int) (string, error) {
	raw, err := e.Thumbnail(ctx, t, maxDim)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
