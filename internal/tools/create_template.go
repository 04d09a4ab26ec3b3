package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
	"github.com/postcraft-io/template-studio/internal/utils"
)

type createTemplateTool struct {
	templateService services.TemplateService
}

type CreateTemplateArguments struct {
	// Required fields
	Name string `json:"name" validate:"required"`
	Size string `json:"size" validate:"required"`

	// Optional fields
	BackgroundImage string `json:"background_image,omitempty"`
}

func NewCreateTemplateTool(templateService services.TemplateService) *createTemplateTool {
	return &createTemplateTool{
		templateService: templateService,
	}
}

func (c *createTemplateTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("create_template",
		mcp.WithDescription("Create a new design template with a fixed canvas size. The template starts empty; add image, text and shape elements with the add_element tool."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the template (e.g., 'Summer Sale Post', 'Story Announcement')"),
		),
		mcp.WithString("size",
			mcp.Required(),
			mcp.Description("Canvas size, one of: 1080x1080 (square post), 1080x1920 (story), 1920x1080 (landscape), 1200x628 (link preview)"),
		),
		mcp.WithString("background_image",
			mcp.Description("Optional background image URL, asset id, or data URL"),
		),
	)

	return tool
}

func (c *createTemplateTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var ownerID *string
		if user, ok := utils.GetAuthenticatedUser(ctx); ok && user.Sub != "" {
			sub := user.Sub
			ownerID = &sub
		}

		var args CreateTemplateArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		if err := validator.New().Struct(args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		if _, err := models.ParseCanvasSize(args.Size); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid size: %v", err)), nil
		}

		template, err := c.templateService.CreateTemplate(args.Name, args.Size, ownerID, args.BackgroundImage)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error creating template: %v", err)), nil
		}

		result := map[string]interface{}{
			"id":         template.ID,
			"name":       template.Name,
			"size":       template.Size,
			"created_at": template.CreatedAt,
			"message":    "Template created successfully",
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Template created successfully: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
