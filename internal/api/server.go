package api

import (
	"errors"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/postcraft-io/template-studio/internal/api/middleware"
	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/editor"
	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
	"github.com/postcraft-io/template-studio/internal/utils"
)

// APIServer is the HTTP surface of the template studio: template and
// element CRUD, editor sessions, export, and the asset store.
type APIServer struct {
	app      *fiber.App
	log      *logger.Logger
	port     int
	basePath string

	templates services.TemplateService
	elements  services.ElementService
	assets    services.AssetService
	exporter  *canvas.Exporter
	sessions  *editor.Manager
}

// NewAPIServer wires the Fiber app over the service layer.
func NewAPIServer(
	templates services.TemplateService,
	elements services.ElementService,
	assets services.AssetService,
	exporter *canvas.Exporter,
	sessions *editor.Manager,
	log *logger.Logger,
) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 << 20,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	return &APIServer{
		app:       app,
		log:       log.With("component", "api"),
		templates: templates,
		elements:  elements,
		assets:    assets,
		exporter:  exporter,
		sessions:  sessions,
	}
}

// EnableAuthentication installs bearer-token validation over the whole
// route table. Must be called before SetupRoutes.
func (s *APIServer) EnableAuthentication(authenticator *utils.JwtAuthenticator, resourceID string) {
	s.app.Use(middleware.AuthMiddleware(middleware.AuthConfig{
		ResourceID:       resourceID,
		JWTAuthenticator: authenticator,
		SkipWellKnown:    true,
	}))
}

// SetupRoutes registers the route table. Call after any middleware
// (auth) has been installed.
func (s *APIServer) SetupRoutes() {
	// Template CRUD
	s.app.Post("/api/templates", s.handleCreateTemplate)
	s.app.Get("/api/templates", s.handleListTemplates)
	s.app.Get("/api/templates/:id", s.handleGetTemplate)
	s.app.Patch("/api/templates/:id", s.handleUpdateTemplate)
	s.app.Delete("/api/templates/:id", s.handleDeleteTemplate)
	s.app.Post("/api/templates/:id/copy", s.handleCopyTemplate)

	// Per-kind element operations
	s.app.Post("/api/templates/:id/elements/:kind", s.handleAddElement)
	s.app.Patch("/api/templates/:id/elements/:kind/:uuid", s.handleUpdateElement)
	s.app.Delete("/api/templates/:id/elements/:kind/:uuid", s.handleDeleteElement)

	// Export targets
	s.app.Get("/api/templates/:id/export", s.handleExportTemplate)
	s.app.Get("/api/templates/:id/thumbnail", s.handleThumbnail)
	s.app.Post("/api/templates/:id/thumbnail", s.handleRegenerateThumbnail)

	// Asset store
	s.app.Post("/api/assets", s.handleUploadAsset)
	s.app.Get("/assets/:id", s.handleServeAsset)

	// Editor sessions
	s.app.Post("/api/sessions", s.handleOpenSession)
	s.app.Get("/api/sessions/:id", s.handleGetSession)
	s.app.Post("/api/sessions/:id/select", s.handleSessionSelect)
	s.app.Patch("/api/sessions/:id/elements/:kind/:uuid", s.handleSessionUpdateElement)
	s.app.Post("/api/sessions/:id/elements/:kind", s.handleSessionAddElement)
	s.app.Delete("/api/sessions/:id/elements/:kind/:uuid", s.handleSessionDeleteElement)
	s.app.Post("/api/sessions/:id/undo", s.handleSessionUndo)
	s.app.Post("/api/sessions/:id/redo", s.handleSessionRedo)
	s.app.Post("/api/sessions/:id/flush", s.handleSessionFlush)
	s.app.Delete("/api/sessions/:id", s.handleCloseSession)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on the given port; port 0 picks a random
// available port. Returns the bound port.
func (s *APIServer) Start(port int) (int, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("failed to bind port %d: %w", port, err)
	}

	bound := listener.Addr().(*net.TCPAddr).Port
	s.port = bound

	// Close the listener so Fiber can use it
	listener.Close()

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", bound)); err != nil {
			s.log.Error("api server stopped", "error", err)
		}
	}()

	return bound, nil
}

func (s *APIServer) Shutdown() error {
	s.sessions.CloseAll()
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App exposes the Fiber app for handler tests.
func (s *APIServer) App() *fiber.App {
	return s.app
}

// fail maps domain errors to HTTP status codes.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		status = fiber.StatusBadRequest
	case models.IsNotFound(err):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
