package server

import (
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/editor"
	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/services"
)

func InitializeServices(db *gorm.DB) (services.TemplateService, services.ElementService, services.AssetService) {
	templateService := services.NewTemplateService(db)
	elementService := services.NewElementService(db, templateService)
	assetService := services.NewAssetService(db)

	return templateService, elementService, assetService
}

// InitializeCanvas builds the render pipeline: URL resolver backed by the
// asset store, font library, renderer and exporter. Base URLs for
// relative image paths come from ASSET_BASE_URLS (comma-separated);
// fonts from FONT_DIR.
func InitializeCanvas(assetService services.AssetService, log *logger.Logger) (*canvas.Exporter, error) {
	var bases []string
	if env := os.Getenv("ASSET_BASE_URLS"); env != "" {
		for _, base := range strings.Split(env, ",") {
			if base = strings.TrimSpace(base); base != "" {
				bases = append(bases, base)
			}
		}
	}

	fonts, err := canvas.NewFontLibrary(os.Getenv("FONT_DIR"))
	if err != nil {
		return nil, err
	}

	resolver := canvas.NewResolver(bases, assetService, log)
	renderer := canvas.NewRenderer(resolver, fonts, log)
	return canvas.NewExporter(renderer), nil
}

// InitializeSessionManager builds the editor session manager. The
// write-behind debounce window comes from EDITOR_DEBOUNCE_MS when set.
func InitializeSessionManager(templateService services.TemplateService, elementService services.ElementService, log *logger.Logger) *editor.Manager {
	debounce := editor.DefaultDebounce
	if env := os.Getenv("EDITOR_DEBOUNCE_MS"); env != "" {
		if d, err := time.ParseDuration(env + "ms"); err == nil && d > 0 {
			debounce = d
		}
	}
	return editor.NewManager(templateService, elementService, debounce, log)
}
