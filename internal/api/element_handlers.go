package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postcraft-io/template-studio/internal/models"
)

func (s *APIServer) handleAddElement(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	kind, err := models.ParseElementKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	template, err := s.elements.AddElement(id, kind, c.Body())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

func (s *APIServer) handleUpdateElement(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	kind, err := models.ParseElementKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	template, err := s.elements.UpdateElement(id, kind, c.Params("uuid"), c.Body())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(template)
}

func (s *APIServer) handleDeleteElement(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	kind, err := models.ParseElementKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	template, err := s.elements.DeleteElement(id, kind, c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(template)
}
