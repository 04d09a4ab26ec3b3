package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
)

type deleteElementTool struct {
	elementService services.ElementService
}

type DeleteElementArguments struct {
	TemplateID string `json:"template_id" validate:"required"`
	Kind       string `json:"kind" validate:"required"`
	ElementID  string `json:"element_id" validate:"required"`
}

func NewDeleteElementTool(elementService services.ElementService) *deleteElementTool {
	return &deleteElementTool{
		elementService: elementService,
	}
}

func (d *deleteElementTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("delete_element",
		mcp.WithDescription("Remove an element from a template."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template containing the element"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Element kind: image, text, or shape"),
		),
		mcp.WithString("element_id",
			mcp.Required(),
			mcp.Description("UUID of the element to delete"),
		),
	)

	return tool
}

func (d *deleteElementTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args DeleteElementArguments
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

		kind, err := models.ParseElementKind(args.Kind)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid kind: %v", err)), nil
		}

		template, err := d.elementService.DeleteElement(uint(id), kind, args.ElementID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error deleting element: %v", err)), nil
		}

		result := map[string]interface{}{
			"template_id":   template.ID,
			"deleted_id":    args.ElementID,
			"element_count": template.ElementCount(),
			"message":       "Element deleted successfully",
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Element deleted successfully: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
