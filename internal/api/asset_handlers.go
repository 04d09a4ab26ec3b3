package api

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/utils"
)

// UploadAssetRequest is the JSON body of POST /api/assets when the image
// arrives as a data URL instead of a multipart file.
type UploadAssetRequest struct {
	Name string `json:"name,omitempty"`
	Data string `json:"data" validate:"required"`
}

func (s *APIServer) handleUploadAsset(c *fiber.Ctx) error {
	// Multipart upload takes precedence; JSON data-URL body is the
	// fallback for canvas-originated images.
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return badRequest(c, "unreadable upload")
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return badRequest(c, "unreadable upload")
		}

		asset, err := s.assets.StoreAsset(file.Filename, file.Header.Get("Content-Type"), raw, ownerID(c))
		if err != nil {
			return fail(c, err)
		}
		return s.respondStoredAsset(c, asset)
	}

	var req UploadAssetRequest
	if err := c.BodyParser(&req); err != nil || req.Data == "" {
		return badRequest(c, "expected multipart file or data URL body")
	}
	asset, err := s.assets.StoreDataURL(req.Name, req.Data, ownerID(c))
	if err != nil {
		return fail(c, err)
	}
	return s.respondStoredAsset(c, asset)
}

// respondStoredAsset returns the stored asset with the public URL an
// element's image field can reference.
func (s *APIServer) respondStoredAsset(c *fiber.Ctx, asset *models.Asset) error {
	url, err := utils.GetAssetUrl(s.port, asset.ID)
	if err != nil {
		url = ""
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"asset": asset,
		"url":   url,
	})
}

func (s *APIServer) handleServeAsset(c *fiber.Ctx) error {
	asset, err := s.assets.GetAsset(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", asset.ContentType)
	return c.Send(asset.Data)
}
