package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postcraft-io/template-studio/internal/models"
)

func TestNewCopyTemplateTool(t *testing.T) {
	templateService, _ := setupTestServices(t)
	copyTool := NewCopyTemplateTool(templateService)
	tool := copyTool.GetTool()

	assert.Equal(t, "copy_template", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "template_id")
	assert.Contains(t, tool.InputSchema.Properties, "name")
	assert.NotNil(t, copyTool.GetHandler())
}

func TestCopyTemplateHandler(t *testing.T) {
	ctx := context.Background()
	templateService, elementService := setupTestServices(t)

	source := createTestTemplate(t, templateService, "Original")
	addTestText(t, elementService, source.ID, map[string]any{"text": "Headline"})
	addTestText(t, elementService, source.ID, map[string]any{"text": "Subtitle"})

	raw, err := json.Marshal(map[string]any{"shapeType": "circle", "color": "#FF0000"})
	require.NoError(t, err)
	_, err = elementService.AddElement(source.ID, models.ElementKindShape, raw)
	require.NoError(t, err)

	copyTool := NewCopyTemplateTool(templateService)
	handler := copyTool.GetHandler()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"template_id": fmt.Sprintf("%d", source.ID),
				"name":        "Forked",
			},
		},
	}

	result, err := handler(ctx, request)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	require.Len(t, result.Content, 2)
	payload, ok := result.Content[1].(mcp.TextContent)
	require.True(t, ok)

	var parsed struct {
		ID           uint `json:"id"`
		ElementCount int  `json:"element_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload.Text), &parsed))
	assert.NotEqual(t, source.ID, parsed.ID)
	assert.Equal(t, 3, parsed.ElementCount)

	// The copy holds the same content under fresh element ids
	copied, err := templateService.GetTemplateByID(parsed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Forked", copied.Name)
	require.Len(t, copied.Texts, 2)

	original, err := templateService.GetTemplateByID(source.ID)
	require.NoError(t, err)
	for _, copiedText := range copied.Texts {
		for _, sourceText := range original.Texts {
			assert.NotEqual(t, sourceText.UUID, copiedText.UUID)
		}
	}
}

func TestCopyTemplateHandler_SourceMissing(t *testing.T) {
	ctx := context.Background()
	templateService, _ := setupTestServices(t)

	copyTool := NewCopyTemplateTool(templateService)
	handler := copyTool.GetHandler()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"template_id": "42",
			},
		},
	}

	result, err := handler(ctx, request)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
