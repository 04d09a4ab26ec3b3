package api

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/postcraft-io/template-studio/internal/api/middleware"
	"github.com/postcraft-io/template-studio/internal/services"
)

// CreateTemplateRequest is the body of POST /api/templates.
type CreateTemplateRequest struct {
	Name            string `json:"name" validate:"required"`
	Size            string `json:"size" validate:"required"`
	BackgroundImage string `json:"background_image,omitempty"`
}

// CopyTemplateRequest is the body of POST /api/templates/:id/copy.
type CopyTemplateRequest struct {
	Name string `json:"name,omitempty"`
}

func (s *APIServer) handleCreateTemplate(c *fiber.Ctx) error {
	var req CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if err := validator.New().Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	template, err := s.templates.CreateTemplate(req.Name, req.Size, ownerID(c), req.BackgroundImage)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

func (s *APIServer) handleListTemplates(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	keyword := c.Query("keyword")
	owner := c.Query("owner")
	likedOnly := c.QueryBool("liked", false)

	templates, err := s.templates.ListTemplates(keyword, owner, likedOnly, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"templates": templates, "count": len(templates)})
}

func (s *APIServer) handleGetTemplate(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	template, err := s.templates.GetTemplateByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(template)
}

func (s *APIServer) handleUpdateTemplate(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	var update services.TemplateUpdate
	if err := c.BodyParser(&update); err != nil {
		return badRequest(c, "malformed request body")
	}

	template, err := s.templates.UpdateTemplate(id, update)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(template)
}

func (s *APIServer) handleDeleteTemplate(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	if err := s.templates.DeleteTemplate(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (s *APIServer) handleCopyTemplate(c *fiber.Ctx) error {
	id, ok := parseTemplateID(c)
	if !ok {
		return badRequest(c, "invalid template id")
	}
	var req CopyTemplateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "malformed request body")
		}
	}

	copied, err := s.templates.CopyTemplate(id, req.Name, ownerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(copied)
}

// parseTemplateID parses the :id route parameter.
func parseTemplateID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ownerID resolves the authenticated owner, nil when anonymous.
func ownerID(c *fiber.Ctx) *string {
	if user := middleware.GetAuthenticatedUser(c); user != nil && user.Sub != "" {
		sub := user.Sub
		return &sub
	}
	return nil
}
