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

type addElementTool struct {
	elementService services.ElementService
}

type AddElementArguments struct {
	TemplateID string         `json:"template_id" validate:"required"`
	Kind       string         `json:"kind" validate:"required"`
	Properties map[string]any `json:"properties,omitempty"`
}

func NewAddElementTool(elementService services.ElementService) *addElementTool {
	return &addElementTool{
		elementService: elementService,
	}
}

func (a *addElementTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("add_element",
		mcp.WithDescription("Add an image, text or shape element to a template. Omitted properties get sensible defaults (full opacity, 100x100 size, 50px Arial black text). Property names are camelCase: positionX, positionY, zIndex, rotation, opacity, width, height, image, borderRadius, text, font, fontSize, color, shapeType."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template to add the element to"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Element kind: image, text, or shape"),
		),
		mcp.WithObject("properties",
			mcp.Description("Initial element properties as a JSON object (e.g., {\"text\": \"Hello\", \"fontSize\": 72, \"positionX\": 100})"),
		),
	)

	return tool
}

func (a *addElementTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AddElementArguments
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

		template, err := a.elementService.AddElement(uint(id), kind, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error adding element: %v", err)), nil
		}

		result := map[string]interface{}{
			"template_id":   template.ID,
			"kind":          kind,
			"element_count": template.ElementCount(),
			"message":       "Element added successfully",
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent("Element added successfully: "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
