package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/services"
)

type exportTemplateTool struct {
	templateService services.TemplateService
	exporter        *canvas.Exporter
}

type ExportTemplateArguments struct {
	TemplateID      string `json:"template_id" validate:"required"`
	MaxSize         int    `json:"max_size,omitempty"`
	SaveAsThumbnail bool   `json:"save_as_thumbnail,omitempty"`
}

func NewExportTemplateTool(templateService services.TemplateService, exporter *canvas.Exporter) *exportTemplateTool {
	return &exportTemplateTool{
		templateService: templateService,
		exporter:        exporter,
	}
}

func (e *exportTemplateTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("export_template",
		mcp.WithDescription("Render a template to a PNG image and return it as a data URL. Elements are painted back-to-front by z-index over the background. Use max_size to cap the longer edge (default 512); the canvas aspect ratio is preserved."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template to render"),
		),
		mcp.WithNumber("max_size",
			mcp.Description("Maximum pixel size of the longer edge (default 512)"),
		),
		mcp.WithBoolean("save_as_thumbnail",
			mcp.Description("If true, also store the rendered image as the template's thumbnail"),
		),
	)

	return tool
}

func (e *exportTemplateTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ExportTemplateArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		if err := validator.New().Struct(args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		id, err := strconv.ParseUint(args.TemplateID, 10, 32)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid template_id format: %v", err)), nil
		}

		template, err := e.templateService.GetTemplateByID(uint(id))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Template not found: %v", err)), nil
		}

		maxSize := args.MaxSize
		if maxSize <= 0 {
			maxSize = canvas.DefaultThumbnailSize
		}

		dataURL, err := e.exporter.ThumbnailDataURL(ctx, template, maxSize)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error rendering template: %v", err)), nil
		}

		if args.SaveAsThumbnail {
			if _, err := e.templateService.UpdateTemplate(uint(id), services.TemplateUpdate{Thumbnail: &dataURL}); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Error saving thumbnail: %v", err)), nil
			}
		}

		result := map[string]interface{}{
			"template_id": template.ID,
			"name":        template.Name,
			"size":        template.Size,
			"image":       dataURL,
			"message":     "Template rendered successfully",
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Template rendered successfully: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
