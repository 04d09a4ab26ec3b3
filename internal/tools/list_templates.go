package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
)

type listTemplatesTool struct {
	templateService services.TemplateService
}

type ListTemplatesArguments struct {
	Keyword   string `json:"keyword,omitempty"`
	Owner     string `json:"owner,omitempty"`
	LikedOnly bool   `json:"liked_only,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// TemplateSummary is the compact listing shape: element bodies are
// omitted, use view_template for the full document.
type TemplateSummary struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	Size         models.CanvasSize `json:"size"`
	ElementCount int               `json:"element_count"`
	IsLiked      bool              `json:"is_liked"`
	Thumbnail    string            `json:"thumbnail,omitempty"`
	UpdatedAt    string            `json:"updated_at"`
}

func NewListTemplatesTool(templateService services.TemplateService) *listTemplatesTool {
	return &listTemplatesTool{
		templateService: templateService,
	}
}

func (l *listTemplatesTool) GetTool() mcp.Tool {
	tool := mcp.NewTool("list_templates",
		mcp.WithDescription("List design templates with optional keyword search. Returns summaries only; use view_template to inspect a template's elements."),
		mcp.WithString("keyword",
			mcp.Description("Filter templates whose name contains this keyword"),
		),
		mcp.WithString("owner",
			mcp.Description("Filter templates by owner id"),
		),
		mcp.WithBoolean("liked_only",
			mcp.Description("Only return templates marked as liked"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of templates to return (0 for no limit)"),
		),
	)

	return tool
}

func (l *listTemplatesTool) GetHandler() server.ToolHandlerFunc {

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListTemplatesArguments
		if err := request.BindArguments(&args); err != nil {
			return nil, fmt.Errorf("failed to bind arguments: %w", err)
		}

		templates, err := l.templateService.ListTemplates(args.Keyword, args.Owner, args.LikedOnly, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error listing templates: %v", err)), nil
		}

		summaries := make([]TemplateSummary, 0, len(templates))
		for i := range templates {
			t := &templates[i]
			summaries = append(summaries, TemplateSummary{
				ID:           t.ID,
				Name:         t.Name,
				Size:         t.Size,
				ElementCount: t.ElementCount(),
				IsLiked:      t.IsLiked,
				Thumbnail:    t.Thumbnail,
				UpdatedAt:    t.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		result := map[string]interface{}{
			"templates": summaries,
			"count":     len(summaries),
		}

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("Found %d template(s): ", len(summaries))),
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}
}
