package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/services"
)

type updateTemplateTool struct {
	templateService services.TemplateService
}

type UpdateTemplateArguments struct {
	TemplateID string `json:"template_id" validate:"required"`

	// Optional fields; omitted fields are left unchanged.
	Name            *string `json:"name,omitempty"`
	Size            *string `json:"size,omitempty"`
	BackgroundImage *string `json:"background_image,omitempty"`
	IsLiked         *bool   `json:"is_liked,omitempty"`
	IsAssignable    *bool   `json:"is_assignable,omitempty"`
}

func NewUpdateTemplateTool(templateService services.TemplateService) *updateTemplateTool {
	return &updateTemplateTool{
		templateService: templateService,
	}
}

func (u *updateTemplateTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("update_template",
		mcp.WithDescription("Update existing design template attributes (name, canvas size, background image, liked flag). Element edits go through update_element instead."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template to update"),
		),
		mcp.WithString("name",
			mcp.Description("New template name"),
		),
		mcp.WithString("size",
			mcp.Description("New canvas size, one of: 1080x1080, 1080x1920, 1920x1080, 1200x628"),
		),
		mcp.WithString("background_image",
			mcp.Description("New background image URL, asset id, or data URL. Pass an empty string to clear."),
		),
		mcp.WithBoolean("is_liked",
			mcp.Description("Mark or unmark the template as liked"),
		),
		mcp.WithBoolean("is_assignable",
			mcp.Description("Whether the template can be assigned to posts"),
		),
	)

	return tool
}

func (u *updateTemplateTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args UpdateTemplateArguments
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

		update := services.TemplateUpdate{
			Name:            args.Name,
			Size:            args.Size,
			BackgroundImage: args.BackgroundImage,
			IsLiked:         args.IsLiked,
			IsAssignable:    args.IsAssignable,
		}

		template, err := u.templateService.UpdateTemplate(uint(id), update)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error updating template: %v", err)), nil
		}

		result := map[string]interface{}{
			"id":         template.ID,
			"name":       template.Name,
			"size":       template.Size,
			"updated_at": template.UpdatedAt,
			"message":    "Template updated successfully",
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Template updated successfully: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
