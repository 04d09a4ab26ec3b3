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
	"github.com/postcraft-io/template-studio/internal/utils"
)

type copyTemplateTool struct {
	templateService services.TemplateService
}

type CopyTemplateArguments struct {
	TemplateID string `json:"template_id" validate:"required"`
	Name       string `json:"name,omitempty"`
}

func NewCopyTemplateTool(templateService services.TemplateService) *copyTemplateTool {
	return &copyTemplateTool{
		templateService: templateService,
	}
}

func (c *copyTemplateTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("copy_template",
		mcp.WithDescription("Duplicate a design template. Every element is copied under a fresh id, so editing the copy never touches the source. The copy either fully succeeds or nothing is created."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template to copy"),
		),
		mcp.WithString("name",
			mcp.Description("Name for the copy. Defaults to the source name with a ' (copy)' suffix."),
		),
	)

	return tool
}

func (c *copyTemplateTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var ownerID *string
		if user, ok := utils.GetAuthenticatedUser(ctx); ok && user.Sub != "" {
			sub := user.Sub
			ownerID = &sub
		}

		var args CopyTemplateArguments
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

		copied, err := c.templateService.CopyTemplate(uint(id), args.Name, ownerID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error copying template: %v", err)), nil
		}

		result := map[string]interface{}{
			"id":            copied.ID,
			"source_id":     uint(id),
			"name":          copied.Name,
			"element_count": copied.ElementCount(),
			"message":       "Template copied successfully",
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Template copied successfully: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
