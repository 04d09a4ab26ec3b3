package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeleteElementTool(t *testing.T) {
	_, elementService := setupTestServices(t)
	deleteTool := NewDeleteElementTool(elementService)
	tool := deleteTool.GetTool()

	assert.Equal(t, "delete_element", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "template_id")
	assert.Contains(t, tool.InputSchema.Properties, "kind")
	assert.Contains(t, tool.InputSchema.Properties, "element_id")
	assert.NotNil(t, deleteTool.GetHandler())
}

func TestDeleteElementHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes_only_the_target", func(t *testing.T) {
		templateService, elementService := setupTestServices(t)
		template := createTestTemplate(t, templateService, "Post")
		addTestText(t, elementService, template.ID, map[string]any{"text": "Keep me"})
		withBoth := addTestText(t, elementService, template.ID, map[string]any{"text": "Delete me"})

		var targetID string
		for _, text := range withBoth.Texts {
			if text.Text == "Delete me" {
				targetID = text.UUID
			}
		}
		require.NotEmpty(t, targetID)

		deleteTool := NewDeleteElementTool(elementService)
		handler := deleteTool.GetHandler()

		request := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Arguments: map[string]interface{}{
					"template_id": fmt.Sprintf("%d", template.ID),
					"kind":        "text",
					"element_id":  targetID,
				},
			},
		}

		result, err := handler(ctx, request)
		require.NoError(t, err)
		assert.False(t, result.IsError)

		refreshed, err := templateService.GetTemplateByID(template.ID)
		require.NoError(t, err)
		require.Len(t, refreshed.Texts, 1)
		assert.Equal(t, "Keep me", refreshed.Texts[0].Text)
	})

	t.Run("missing_element", func(t *testing.T) {
		templateService, elementService := setupTestServices(t)
		template := createTestTemplate(t, templateService, "Post")

		deleteTool := NewDeleteElementTool(elementService)
		handler := deleteTool.GetHandler()

		request := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Arguments: map[string]interface{}{
					"template_id": fmt.Sprintf("%d", template.ID),
					"kind":        "shape",
					"element_id":  "no-such-uuid",
				},
			},
		}

		result, err := handler(ctx, request)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
