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

type updateElementTool struct {
	elementService services.ElementService
}

type UpdateElementArguments struct {
	TemplateID string         `json:"template_id" validate:"required"`
	Kind       string         `json:"kind" validate:"required"`
	ElementID  string         `json:"element_id" validate:"required"`
	Properties map[string]any `json:"properties" validate:"required"`
}

func NewUpdateElementTool(elementService services.ElementService) *updateElementTool {
	return &updateElementTool{
		elementService: elementService,
	}
}

func (u *updateElementTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("update_element",
		mcp.WithDescription("Update properties of an existing element. Only the provided properties change; out-of-range numbers are repaired (opacity clamped to [0,1], font size to [8,500], sizes kept at least 10px). Property names are camelCase as in add_element."),
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
			mcp.Description("UUID of the element to update"),
		),
		mcp.WithObject("properties",
			mcp.Required(),
			mcp.Description("Properties to change as a JSON object (e.g., {\"positionX\": 250, \"opacity\": 0.5})"),
		),
	)

	return tool
}

func (u *updateElementTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args UpdateElementArguments
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

		raw, err := json.Marshal(args.Properties)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid properties: %v", err)), nil
		}

		template, err := u.elementService.UpdateElement(uint(id), kind, args.ElementID, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error updating element: %v", err)), nil
		}

		element, _ := template.FindElement(kind, args.ElementID)
		result := map[string]interface{}{
			"template_id": template.ID,
			"element":     element,
			"message":     "Element updated successfully",
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Element updated successfully: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
