package canvas

import (
	"sort"

	"github.com/postcraft-io/template-studio/internal/models"
)

// BuildScene merges a template's three element collections into one
// kind-tagged paint list ordered by ascending zIndex. The sort is stable:
// elements with equal zIndex keep their relative collection order
// (images, then texts, then shapes), so rendering the same template twice
// yields the same paint order.
//
// The scene is built from persisted element state only; transient editor
// UI such as selection handles has no representation here, which keeps it
// out of exports by construction.
func BuildScene(t *models.Template) []models.DesignElement {
	scene := make([]models.DesignElement, 0, t.ElementCount())
	for i := range t.Images {
		scene = append(scene, &t.Images[i])
	}
	for i := range t.Texts {
		scene = append(scene, &t.Texts[i])
	}
	for i := range t.Shapes {
		scene = append(scene, &t.Shapes[i])
	}
	sort.SliceStable(scene, func(i, j int) bool {
		return scene[i].Base().ZIndex < scene[j].Base().ZIndex
	})
	return scene
}
