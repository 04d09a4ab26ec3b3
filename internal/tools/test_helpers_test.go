package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
)

// setupTestServices creates an in-memory database and the service layer
// over it. The database is closed when the test finishes.
func setupTestServices(t *testing.T) (services.TemplateService, services.ElementService) {
	t.Helper()

	db, err := services.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	templateService := services.NewTemplateService(db.GetDB())
	elementService := services.NewElementService(db.GetDB(), templateService)
	return templateService, elementService
}

// setupTestExporter builds a render pipeline with no remote bases and
// the built-in fallback font.
func setupTestExporter(t *testing.T) *canvas.Exporter {
	t.Helper()

	fonts, err := canvas.NewFontLibrary("")
	require.NoError(t, err)
	resolver := canvas.NewResolver(nil, nil, logger.Nop())
	renderer := canvas.NewRenderer(resolver, fonts, logger.Nop())
	return canvas.NewExporter(renderer)
}

// createTestTemplate inserts a template and returns it.
func createTestTemplate(t *testing.T, templateService services.TemplateService, name string) *models.Template {
	t.Helper()

	template, err := templateService.CreateTemplate(name, "1080x1080", nil, "")
	require.NoError(t, err)
	return template
}

// addTestText adds a text element with the given properties and returns
// the refreshed template.
func addTestText(t *testing.T, elementService services.ElementService, templateID uint, props map[string]any) *models.Template {
	t.Helper()

	raw, err := json.Marshal(props)
	require.NoError(t, err)
	template, err := elementService.AddElement(templateID, models.ElementKindText, raw)
	require.NoError(t, err)
	return template
}
