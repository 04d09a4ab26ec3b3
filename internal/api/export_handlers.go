package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/services"
)

func (s *APIServer) handleExportTemplate(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	template, err := s.templates.GetTemplateByID(id)
	if err != nil {
		return fail(c, err)
	}

	raw, err := s.exporter.Export(c.UserContext(), template)
	if err != nil {
		return fail(c, err)
	}

	c.Set("Content-Type", "image/png")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, template.Name))
	return c.Send(raw)
}

func (s *APIServer) handleThumbnail(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	template, err := s.templates.GetTemplateByID(id)
	if err != nil {
		return fail(c, err)
	}

	maxDim := c.QueryInt("max", canvas.DefaultThumbnailSize)
	raw, err := s.exporter.Thumbnail(c.UserContext(), template, maxDim)
	if err != nil {
		return fail(c, err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(raw)
}

// handleRegenerateThumbnail renders a fresh thumbnail and persists it on
// the template, for host pages that attach a preview to a post record.
func (s *APIServer) handleRegenerateThumbnail(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	template, err := s.templates.GetTemplateByID(id)
	if err != nil {
		return fail(c, err)
	}

	maxDim := c.QueryInt("max", canvas.DefaultThumbnailSize)
	dataURL, err := s.exporter.ThumbnailDataURL(c.UserContext(), template, maxDim)
	if err != nil {
		return fail(c, err)
	}

	updated, err := s.templates.UpdateTemplate(id, services.TemplateUpdate{Thumbnail: &dataURL})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(updated)
}
