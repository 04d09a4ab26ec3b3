package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postcraft-io/template-studio/internal/editor"
	"github.com/postcraft-io/template-studio/internal/models"
)

// OpenSessionRequest is the body of POST /api/sessions.
type OpenSessionRequest struct {
	TemplateID uint `json:"template_id" validate:"required"`
}

// SelectRequest is the body of POST /api/sessions/:id/select. An empty
// uuid clears the selection.
type SelectRequest struct {
	Kind string `json:"kind,omitempty"`
	UUID string `json:"uuid,omitempty"`
}

func (s *APIServer) handleOpenSession(c *fiber.Ctx) error {
	var req OpenSessionRequest
	if err := c.BodyParser(&req); err != nil || req.TemplateID == 0 {
		return badRequest(c, "template_id is required")
	}

	session, err := s.sessions.Open(req.TemplateID, editor.Callbacks{
		OnSaveError: func(elementID string, err error) {
			s.log.Warn("session save failed", "element", elementID, "error", err)
		},
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": session.ID,
		"template":   session.Template(),
	})
}

func (s *APIServer) handleGetSession(c *fiber.Ctx) error {
	session, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	length, index := session.HistoryState()
	return c.JSON(fiber.Map{
		"session_id":     session.ID,
		"template":       session.Template(),
		"history_length": length,
		"history_index":  index,
	})
}

func (s *APIServer) handleSessionSelect(c *fiber.Ctx) error {
	session, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	var req SelectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}

	if req.UUID == "" {
		session.Deselect()
		return c.JSON(fiber.Map{"selected": nil})
	}

	kind, err := models.ParseElementKind(req.Kind)
	if err != nil {
		return fail(c, err)
	}
	if err := session.Select(kind, req.UUID); err != nil {
		return fail(c, err)
	}
	selected, _ := session.Selected()
	return c.JSON(fiber.Map{"selected": selected})
}

func (s *APIServer) handleSessionAddElement(c *fiber.Ctx) error {
	session, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	kind, err := models.ParseElementKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	template, err := session.AddElement(kind, c.Body())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

func (s *APIServer) handleSessionUpdateElement(c *fiber.Ctx) error {
	session, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	kind, err := models.ParseElementKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	if err := session.UpdateElement(kind, c.Params("uuid"), c.Body()); err != nil {
		return fail(c, err)
	}
	return c.JSON(session.Template())
}

func (s *APIServer) handleSessionDeleteElement(c *fiber.Ctx) error {
	session, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	kind, err := models.ParseElementKind(c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}

	template, err := session.DeleteElement(kind, c.Params("uuid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(template)
}

func (s *APIServer) handleSessionUndo(c *fiber.Ctx) error {
	return s.sessionStep(c, func(session *editor.Session) (*models.Template, bool) {
		return session.Undo()
	})
}

func (s *APIServer) handleSessionRedo(c *fiber.Ctx) error {
	return s.sessionStep(c, func(session *editor.Session) (*models.Template, bool) {
		return session.Redo()
	})
}

func (s *APIServer) sessionStep(c *fiber.Ctx, move func(*editor.Session) (*models.Template, bool)) error {
	session, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	template, moved := move(session)
	if !moved {
		template = session.Template()
	}
	length, index := session.HistoryState()
	return c.JSON(fiber.Map{
		"moved":          moved,
		"template":       template,
		"history_length": length,
		"history_index":  index,
	})
}

func (s *APIServer) handleSessionFlush(c *fiber.Ctx) error {
	session, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	session.Flush()
	return c.JSON(fiber.Map{"flushed": true})
}

func (s *APIServer) handleCloseSession(c *fiber.Ctx) error {
	if err := s.sessions.Close(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"closed": true})
}
