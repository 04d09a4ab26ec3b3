package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListTemplatesTool(t *testing.T) {
	templateService, _ := setupTestServices(t)
	listTool := NewListTemplatesTool(templateService)
	tool := listTool.GetTool()

	assert.Equal(t, "list_templates", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "keyword")
	assert.Contains(t, tool.InputSchema.Properties, "liked_only")
	assert.Contains(t, tool.InputSchema.Properties, "limit")
	assert.NotNil(t, listTool.GetHandler())
}

func TestListTemplatesHandler_KeywordFilter(t *testing.T) {
	ctx := context.Background()
	templateService, _ := setupTestServices(t)

	createTestTemplate(t, templateService, "Summer Sale")
	createTestTemplate(t, templateService, "Winter Promo")
	createTestTemplate(t, templateService, "Summer Story")

	listTool := NewListTemplatesTool(templateService)
	handler := listTool.GetHandler()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"keyword": "Summer",
			},
		},
	}

	result, err := handler(ctx, request)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	// Second content block carries the JSON payload
	require.Len(t, result.Content, 2)
	payload, ok := result.Content[1].(mcp.TextContent)
	require.True(t, ok)

	var parsed struct {
		Templates []TemplateSummary `json:"templates"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload.Text), &parsed))
	assert.Equal(t, 2, parsed.Count)
	for _, summary := range parsed.Templates {
		assert.Contains(t, summary.Name, "Summer")
	}
}

func TestListTemplatesHandler_Empty(t *testing.T) {
	ctx := context.Background()
	templateService, _ := setupTestServices(t)

	listTool := NewListTemplatesTool(templateService)
	handler := listTool.GetHandler()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	result, err := handler(ctx, request)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	message, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, message.Text, "Found 0 template(s)")
}
