package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/services"
	"github.com/postcraft-io/template-studio/internal/tools"
)

type MCPServer struct {
	server          *server.MCPServer
	templateService services.TemplateService
}

func NewMCPServer(templateService services.TemplateService, elementService services.ElementService, exporter *canvas.Exporter) *MCPServer {
	mcpServer := &MCPServer{
		templateService: templateService,
	}
	mcpServer.InitializeTools(templateService, elementService, exporter)
	return mcpServer
}

func (s *MCPServer) InitializeTools(templateService services.TemplateService, elementService services.ElementService, exporter *canvas.Exporter) {
	srv := server.NewMCPServer(
		"Template Studio MCP Server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("template-studio-usage",
		mcp.WithPromptDescription("Instructions and guidance for using template studio MCP tools"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (template, element, export, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		instructions := getToolInstructions(category)

		return mcp.NewGetPromptResult(
			fmt.Sprintf("Template Studio MCP Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(instructions),
				),
			},
		), nil
	})

	// Template Management Tools
	createTemplateTool := tools.NewCreateTemplateTool(templateService)
	srv.AddTool(createTemplateTool.GetTool(), createTemplateTool.GetHandler())

	listTemplatesTool := tools.NewListTemplatesTool(templateService)
	srv.AddTool(listTemplatesTool.GetTool(), listTemplatesTool.GetHandler())

	viewTemplateTool := tools.NewViewTemplateTool(templateService)
	srv.AddTool(viewTemplateTool.GetTool(), viewTemplateTool.GetHandler())

	updateTemplateTool := tools.NewUpdateTemplateTool(templateService)
	srv.AddTool(updateTemplateTool.GetTool(), updateTemplateTool.GetHandler())

	deleteTemplateTool := tools.NewDeleteTemplateTool(templateService)
	srv.AddTool(deleteTemplateTool.GetTool(), deleteTemplateTool.GetHandler())

	copyTemplateTool := tools.NewCopyTemplateTool(templateService)
	srv.AddTool(copyTemplateTool.GetTool(), copyTemplateTool.GetHandler())

	// Element Tools
	addElementTool := tools.NewAddElementTool(elementService)
	srv.AddTool(addElementTool.GetTool(), addElementTool.GetHandler())

	updateElementTool := tools.NewUpdateElementTool(elementService)
	srv.AddTool(updateElementTool.GetTool(), updateElementTool.GetHandler())

	deleteElementTool := tools.NewDeleteElementTool(elementService)
	srv.AddTool(deleteElementTool.GetTool(), deleteElementTool.GetHandler())

	// Rendering Tools
	exportTemplateTool := tools.NewExportTemplateTool(templateService, exporter)
	srv.AddTool(exportTemplateTool.GetTool(), exportTemplateTool.GetHandler())

	s.server = srv
}

func getToolInstructions(category string) string {
	switch category {
	case "template":
		return `Template Management Tools:

1. create_template - Create a new design template with a fixed canvas size
   Usage: Start a new design; pick one of the supported canvas sizes

2. list_templates - List templates with keyword search
   Usage: Browse existing templates (summaries only)

3. view_template - View a template's full document
   Usage: Inspect every element and its properties

4. update_template - Update template attributes
   Usage: Rename, change canvas size or background, like/unlike

5. delete_template - Delete templates by ID(s)
   Usage: Remove one or multiple templates (supports bulk deletion)

6. copy_template - Duplicate a template with all its elements
   Usage: Fork an existing design; the copy is fully independent`

	case "element":
		return `Element Tools:

1. add_element - Add an image, text or shape element to a template
   Usage: Omitted properties get defaults; property names are camelCase

2. update_element - Change properties of an existing element
   Usage: Partial updates; out-of-range values are repaired, not rejected

3. delete_element - Remove an element from a template
   Usage: Deletion is permanent; the element leaves the canvas immediately`

	case "export":
		return `Rendering Tools:

1. export_template - Render a template to a PNG data URL
   Usage: Preview a design or persist it as the template's thumbnail
   Parameters:
   - max_size (optional): Cap the longer edge in pixels (default 512)
   - save_as_thumbnail (optional): Store the render on the template`

	case "all":
		return `Template Studio MCP Tools Overview:

This MCP server provides 10 tools for building marketing design templates:

TEMPLATE MANAGEMENT (6 tools):
- create_template: Start a new design
- list_templates: Browse templates
- view_template: Inspect a full template document
- update_template: Change template attributes
- delete_template: Delete templates by ID(s)
- copy_template: Duplicate a template

ELEMENT EDITING (3 tools):
- add_element: Add image/text/shape elements
- update_element: Partial property updates with repair
- delete_element: Remove elements

RENDERING (1 tool):
- export_template: Rasterize a template to PNG

Canvas coordinates are top-left origin with Y pointing down. Elements
paint back-to-front by zIndex. Supported canvas sizes: 1080x1080,
1080x1920, 1920x1080, 1200x628.`

	default:
		return `Invalid category. Available categories: template, element, export, all`
	}
}

func (s *MCPServer) Start() error {
	return server.ServeStdio(s.server)
}
