package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/services"
)

type viewTemplateTool struct {
	templateService services.TemplateService
}

type ViewTemplateArguments struct {
	TemplateID string `json:"template_id" validate:"required"`
}

func NewViewTemplateTool(templateService services.TemplateService) *viewTemplateTool {
	return &viewTemplateTool{
		templateService: templateService,
	}
}

func (c *viewTemplateTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("view_template",
		mcp.WithDescription("View a template by id. The list_templates tool only returns summaries. Use this tool to get the full document including every image, text and shape element with their properties."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template to view"),
		),
	)

	return tool
}

func (c *viewTemplateTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ViewTemplateArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		if err := validator.New().Struct(args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		templateID := uint(0)
		if _, err := fmt.Sscanf(args.TemplateID, "%d", &templateID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid template_id format: %v", err)), nil
		}

		template, err := c.templateService.GetTemplateByID(templateID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Template not found: %v", err)), nil
		}

		successMessage := fmt.Sprintf("Template '%s' retrieved successfully (%d element(s))", template.Name, template.ElementCount())

		resultJSON, _ := json.Marshal(template)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(successMessage + ": "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
