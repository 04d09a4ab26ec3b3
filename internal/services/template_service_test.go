package services_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
)

type TemplateServiceTestSuite struct {
	suite.Suite
	dbService       services.DBService
	templateService services.TemplateService
	elementService  services.ElementService
}

func (suite *TemplateServiceTestSuite) SetupTest() {
	dbService, err := services.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	suite.dbService = dbService
	suite.templateService = services.NewTemplateService(dbService.GetDB())
	suite.elementService = services.NewElementService(dbService.GetDB(), suite.templateService)
}

func (suite *TemplateServiceTestSuite) TearDownTest() {
	if suite.dbService != nil {
		suite.dbService.Close()
	}
}

func (suite *TemplateServiceTestSuite) addElement(templateID uint, kind models.ElementKind, props map[string]any) *models.Template {
	raw, err := json.Marshal(props)
	suite.Require().NoError(err)
	template, err := suite.elementService.AddElement(templateID, kind, raw)
	suite.Require().NoError(err)
	return template
}

func (suite *TemplateServiceTestSuite) TestCreateTemplate() {
	template, err := suite.templateService.CreateTemplate("Summer Sale", "1080x1080", nil, "")
	suite.Require().NoError(err)
	suite.NotZero(template.ID)
	suite.Equal("Summer Sale", template.Name)
	suite.Equal(models.CanvasSizeSquare, template.Size)
	suite.Empty(template.Images)
	suite.Empty(template.Texts)
	suite.Empty(template.Shapes)
}

func (suite *TemplateServiceTestSuite) TestCreateTemplateValidation() {
	_, err := suite.templateService.CreateTemplate("", "1080x1080", nil, "")
	suite.Error(err)
	suite.True(models.IsValidation(err))

	_, err = suite.templateService.CreateTemplate("Bad Size", "123x456", nil, "")
	suite.Error(err)
	suite.True(models.IsValidation(err))
}

func (suite *TemplateServiceTestSuite) TestGetTemplateByIDNotFound() {
	_, err := suite.templateService.GetTemplateByID(999)
	suite.ErrorIs(err, models.ErrTemplateNotFound)
}

func (suite *TemplateServiceTestSuite) TestListTemplatesFiltering() {
	owner := "user-1"
	_, err := suite.templateService.CreateTemplate("Summer Sale", "1080x1080", &owner, "")
	suite.Require().NoError(err)
	_, err = suite.templateService.CreateTemplate("Winter Promo", "1080x1920", nil, "")
	suite.Require().NoError(err)

	byKeyword, err := suite.templateService.ListTemplates("Summer", "", false, 0)
	suite.Require().NoError(err)
	suite.Len(byKeyword, 1)
	suite.Equal("Summer Sale", byKeyword[0].Name)

	byOwner, err := suite.templateService.ListTemplates("", owner, false, 0)
	suite.Require().NoError(err)
	suite.Len(byOwner, 1)

	all, err := suite.templateService.ListTemplates("", "", false, 0)
	suite.Require().NoError(err)
	suite.Len(all, 2)

	limited, err := suite.templateService.ListTemplates("", "", false, 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)
}

func (suite *TemplateServiceTestSuite) TestUpdateTemplatePartial() {
	template, err := suite.templateService.CreateTemplate("Old", "1080x1080", nil, "")
	suite.Require().NoError(err)

	newName := "New"
	liked := true
	updated, err := suite.templateService.UpdateTemplate(template.ID, services.TemplateUpdate{
		Name:    &newName,
		IsLiked: &liked,
	})
	suite.Require().NoError(err)
	suite.Equal("New", updated.Name)
	suite.True(updated.IsLiked)
	// Untouched fields survive
	suite.Equal(models.CanvasSizeSquare, updated.Size)
}

func (suite *TemplateServiceTestSuite) TestDeleteTemplateCascades() {
	template, err := suite.templateService.CreateTemplate("Doomed", "1080x1080", nil, "")
	suite.Require().NoError(err)
	suite.addElement(template.ID, models.ElementKindText, map[string]any{"text": "bye"})
	suite.addElement(template.ID, models.ElementKindShape, map[string]any{"shapeType": "circle"})

	suite.Require().NoError(suite.templateService.DeleteTemplate(template.ID))

	_, err = suite.templateService.GetTemplateByID(template.ID)
	suite.ErrorIs(err, models.ErrTemplateNotFound)

	// Orphaned element rows would break a future template with the same id
	var textCount int64
	suite.dbService.GetDB().Model(&models.TextElement{}).Where("template_id = ?", template.ID).Count(&textCount)
	suite.Zero(textCount)
	var shapeCount int64
	suite.dbService.GetDB().Model(&models.ShapeElement{}).Where("template_id = ?", template.ID).Count(&shapeCount)
	suite.Zero(shapeCount)
}

func (suite *TemplateServiceTestSuite) TestCopyTemplateCompleteness() {
	owner := "user-1"
	source, err := suite.templateService.CreateTemplate("Original", "1920x1080", &owner, "https://cdn.example.com/bg.png")
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		suite.addElement(source.ID, models.ElementKindText, map[string]any{
			"text":   fmt.Sprintf("text-%d", i),
			"zIndex": i,
		})
	}
	suite.addElement(source.ID, models.ElementKindImage, map[string]any{"image": "https://cdn.example.com/a.png", "width": 300.0})
	suite.addElement(source.ID, models.ElementKindShape, map[string]any{"shapeType": "star", "color": "#FFD700"})
	suite.addElement(source.ID, models.ElementKindShape, map[string]any{"shapeType": "line"})

	copied, err := suite.templateService.CopyTemplate(source.ID, "", nil)
	suite.Require().NoError(err)

	suite.NotEqual(source.ID, copied.ID)
	suite.Equal("Original (copy)", copied.Name)
	suite.Equal(source.Size, copied.Size)
	suite.Equal(source.BackgroundImage, copied.BackgroundImage)

	// Element counts match exactly
	suite.Len(copied.Texts, 3)
	suite.Len(copied.Images, 1)
	suite.Len(copied.Shapes, 2)

	// Content matches, identities differ
	sourceFresh, err := suite.templateService.GetTemplateByID(source.ID)
	suite.Require().NoError(err)
	sourceTexts := map[string]bool{}
	for _, el := range sourceFresh.Texts {
		sourceTexts[el.UUID] = true
	}
	copiedContents := map[string]bool{}
	for _, el := range copied.Texts {
		suite.False(sourceTexts[el.UUID], "copied element must not share a uuid with the source")
		suite.Equal(copied.ID, el.TemplateID)
		copiedContents[el.Text] = true
	}
	suite.True(copiedContents["text-0"])
	suite.True(copiedContents["text-1"])
	suite.True(copiedContents["text-2"])

	suite.Equal("#FFD700", findShapeColor(copied, models.ShapeStar))
}

func (suite *TemplateServiceTestSuite) TestCopyTemplateIndependence() {
	source, err := suite.templateService.CreateTemplate("Original", "1080x1080", nil, "")
	suite.Require().NoError(err)
	withText := suite.addElement(source.ID, models.ElementKindText, map[string]any{"text": "shared"})

	copied, err := suite.templateService.CopyTemplate(source.ID, "Fork", nil)
	suite.Require().NoError(err)

	// Mutating the copy leaves the source untouched
	raw, _ := json.Marshal(map[string]any{"text": "changed"})
	_, err = suite.elementService.UpdateElement(copied.ID, models.ElementKindText, copied.Texts[0].UUID, raw)
	suite.Require().NoError(err)

	sourceFresh, err := suite.templateService.GetTemplateByID(source.ID)
	suite.Require().NoError(err)
	suite.Equal("shared", sourceFresh.Texts[0].Text)
	suite.Equal(withText.Texts[0].UUID, sourceFresh.Texts[0].UUID)
}

func findShapeColor(t *models.Template, shapeType models.ShapeType) string {
	for _, shape := range t.Shapes {
		if shape.ShapeType == shapeType {
			return shape.Color
		}
	}
	return ""
}

func TestTemplateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TemplateServiceTestSuite))
}
