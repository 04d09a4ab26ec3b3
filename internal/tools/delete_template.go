package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/services"
)

type deleteTemplateTool struct {
	templateService services.TemplateService
}

func NewDeleteTemplateTool(templateService services.TemplateService) *deleteTemplateTool {
	return &deleteTemplateTool{
		templateService: templateService,
	}
}

func (d *deleteTemplateTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("delete_template",
		mcp.WithDescription("Delete one or multiple design templates by their IDs, including every element they contain. Accepts a single ID or comma-separated list of IDs for bulk deletion."),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Template ID(s) to delete. Can be a single ID (e.g., '1') or comma-separated list (e.g., '1,2,3,4')"),
		),
	)

	return tool
}

func (d *deleteTemplateTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		idsStr, err := request.RequireString("ids")
		if err != nil {
			return nil, fmt.Errorf("ids parameter is required: %w", err)
		}

		idStrings := strings.Split(strings.TrimSpace(idsStr), ",")

		var ids []uint
		var invalidIds []string
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseUint(idStr, 10, 32)
			if err != nil {
				invalidIds = append(invalidIds, idStr)
				continue
			}
			ids = append(ids, uint(id))
		}

		if len(invalidIds) > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid ID(s): %s. IDs must be positive integers", strings.Join(invalidIds, ", "))), nil
		}
		if len(ids) == 0 {
			return mcp.NewToolResultError("No valid template IDs provided"), nil
		}

		var deletedIds []uint
		var notFoundIds []uint
		for _, id := range ids {
			if err := d.templateService.DeleteTemplate(id); err != nil {
				notFoundIds = append(notFoundIds, id)
				continue
			}
			deletedIds = append(deletedIds, id)
		}

		result := map[string]interface{}{
			"requested_ids": ids,
			"deleted_count": len(deletedIds),
			"deleted_ids":   deletedIds,
		}
		if len(notFoundIds) > 0 {
			result["not_found_ids"] = notFoundIds
		}

		var message string
		if len(ids) == 1 {
			if len(deletedIds) == 1 {
				message = "Template deleted successfully"
			} else {
				message = "Template not found"
			}
		} else {
			message = fmt.Sprintf("%d template(s) deleted successfully", len(deletedIds))
			if len(notFoundIds) > 0 {
				message += fmt.Sprintf(", %d template(s) not found", len(notFoundIds))
			}
		}
		result["message"] = message

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(message + ": "),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
