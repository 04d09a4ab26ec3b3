package editor

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
)

const testDebounce = 30 * time.Millisecond

// countingElements wraps an ElementService and counts UpdateElement calls
// per element, so tests can observe debounce coalescing.
type countingElements struct {
	services.ElementService

	mu      sync.Mutex
	updates map[string]int
}

func newCountingElements(inner services.ElementService) *countingElements {
	return &countingElements{ElementService: inner, updates: make(map[string]int)}
}

func (c *countingElements) UpdateElement(templateID uint, kind models.ElementKind, elementID string, raw json.RawMessage) (*models.Template, error) {
	c.mu.Lock()
	c.updates[elementID]++
	c.mu.Unlock()
	return c.ElementService.UpdateElement(templateID, kind, elementID, raw)
}

func (c *countingElements) updateCount(elementID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates[elementID]
}

type sessionFixture struct {
	templates services.TemplateService
	elements  *countingElements
	template  *models.Template
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	dbService, err := services.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbService.Close() })

	templates := services.NewTemplateService(dbService.GetDB())
	elements := newCountingElements(services.NewElementService(dbService.GetDB(), templates))

	template, err := templates.CreateTemplate("Session Canvas", "1080x1080", nil, "")
	require.NoError(t, err)
	return &sessionFixture{templates: templates, elements: elements, template: template}
}

func (fx *sessionFixture) addText(t *testing.T, text string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"text": text})
	require.NoError(t, err)
	updated, err := fx.elements.AddElement(fx.template.ID, models.ElementKindText, raw)
	require.NoError(t, err)
	for _, el := range updated.Texts {
		if el.Text == text {
			return el.UUID
		}
	}
	t.Fatalf("added text element %q not found", text)
	return ""
}

func (fx *sessionFixture) open(t *testing.T, callbacks Callbacks) *Session {
	t.Helper()
	loaded, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	s := NewSession("test-session", loaded, fx.elements, testDebounce, callbacks, logger.Nop())
	t.Cleanup(s.Close)
	return s
}

func patch(t *testing.T, props map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(props)
	require.NoError(t, err)
	return raw
}

func TestSessionSelect(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "hello")

	var selected []models.DesignElement
	session := fx.open(t, Callbacks{
		OnSelect: func(el models.DesignElement) { selected = append(selected, el) },
	})

	require.NoError(t, session.Select(models.ElementKindText, textID))
	el, ok := session.Selected()
	require.True(t, ok)
	assert.Equal(t, textID, el.ID())

	session.Deselect()
	_, ok = session.Selected()
	assert.False(t, ok)

	// OnSelect fired for the selection and the deselection (nil)
	require.Len(t, selected, 2)
	assert.NotNil(t, selected[0])
	assert.Nil(t, selected[1])

	assert.ErrorIs(t, session.Select(models.ElementKindText, "no-such-uuid"), models.ErrElementNotFound)
}

func TestSessionUpdateAppliesImmediately(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "hello")

	var changes int
	session := fx.open(t, Callbacks{
		OnChange: func(*models.Template) { changes++ },
	})

	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "updated"})))

	// The working copy reflects the edit before any save lands
	working := session.Template()
	require.Len(t, working.Texts, 1)
	assert.Equal(t, "updated", working.Texts[0].Text)
	assert.Equal(t, 1, changes)

	// The persisted row is still the old value until the debounce fires
	stored, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Texts[0].Text)
}

func TestSessionDebounceCoalescesSameElement(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "v0")
	session := fx.open(t, Callbacks{})

	for _, text := range []string{"v1", "v2", "v3"} {
		require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": text})))
	}

	require.Eventually(t, func() bool {
		return fx.elements.updateCount(textID) > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, fx.elements.updateCount(textID), "rapid edits to one element coalesce into one save")

	stored, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	assert.Equal(t, "v3", stored.Texts[0].Text)
}

func TestSessionDebounceIsPerElement(t *testing.T) {
	fx := newSessionFixture(t)
	firstID := fx.addText(t, "first")
	secondID := fx.addText(t, "second")
	session := fx.open(t, Callbacks{})

	// Interleaved edits to two elements must not cancel each other
	require.NoError(t, session.UpdateElement(models.ElementKindText, firstID, patch(t, map[string]any{"text": "first-edited"})))
	require.NoError(t, session.UpdateElement(models.ElementKindText, secondID, patch(t, map[string]any{"text": "second-edited"})))

	require.Eventually(t, func() bool {
		return fx.elements.updateCount(firstID) > 0 && fx.elements.updateCount(secondID) > 0
	}, time.Second, 5*time.Millisecond)

	stored, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	texts := map[string]string{}
	for _, el := range stored.Texts {
		texts[el.UUID] = el.Text
	}
	assert.Equal(t, "first-edited", texts[firstID])
	assert.Equal(t, "second-edited", texts[secondID])
}

func TestSessionFlushPersistsImmediately(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "hello")
	session := fx.open(t, Callbacks{})

	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "flushed"})))
	session.Flush()

	assert.Equal(t, 1, fx.elements.updateCount(textID))
	stored, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	assert.Equal(t, "flushed", stored.Texts[0].Text)
}

func TestSessionDeleteCancelsPendingSave(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "doomed")

	var saveErrs int
	session := fx.open(t, Callbacks{
		OnSaveError: func(string, error) { saveErrs++ },
	})

	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "edited"})))
	updated, err := session.DeleteElement(models.ElementKindText, textID)
	require.NoError(t, err)
	assert.Empty(t, updated.Texts)

	// The cancelled debounce never fires, so no failed save is reported
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, fx.elements.updateCount(textID))
	assert.Equal(t, 0, saveErrs)
}

func TestSessionDeleteClearsSelection(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "selected")
	session := fx.open(t, Callbacks{})

	require.NoError(t, session.Select(models.ElementKindText, textID))
	_, err := session.DeleteElement(models.ElementKindText, textID)
	require.NoError(t, err)

	_, ok := session.Selected()
	assert.False(t, ok)
}

func TestSessionAddElementReconciles(t *testing.T) {
	fx := newSessionFixture(t)
	session := fx.open(t, Callbacks{})

	updated, err := session.AddElement(models.ElementKindShape, patch(t, map[string]any{"shapeType": "circle"}))
	require.NoError(t, err)
	require.Len(t, updated.Shapes, 1)
	assert.NotEmpty(t, updated.Shapes[0].UUID, "server-assigned uuid lands in the working copy")

	working := session.Template()
	assert.Len(t, working.Shapes, 1)
}

func TestSessionReconcileKeepsPendingLocalEdits(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "local")
	session := fx.open(t, Callbacks{})

	// A pending debounced edit...
	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "local-edit"})))

	// ...must survive a structural operation that reloads server state
	updated, err := session.AddElement(models.ElementKindShape, patch(t, map[string]any{"shapeType": "star"}))
	require.NoError(t, err)

	require.Len(t, updated.Texts, 1)
	assert.Equal(t, "local-edit", updated.Texts[0].Text)
}

func TestSessionUndoRedo(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "v0")
	session := fx.open(t, Callbacks{})

	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "v1"})))
	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "v2"})))

	length, index := session.HistoryState()
	assert.Equal(t, 3, length)
	assert.Equal(t, 2, index)

	snap, ok := session.Undo()
	require.True(t, ok)
	assert.Equal(t, "v1", snap.Texts[0].Text)

	snap, ok = session.Undo()
	require.True(t, ok)
	assert.Equal(t, "v0", snap.Texts[0].Text)

	_, ok = session.Undo()
	assert.False(t, ok, "cannot undo past the loaded snapshot")

	snap, ok = session.Redo()
	require.True(t, ok)
	assert.Equal(t, "v1", snap.Texts[0].Text)

	// A fresh edit from here truncates the redo branch
	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "v1b"})))
	_, ok = session.Redo()
	assert.False(t, ok)
}

func TestSessionUndoIsLocalOnly(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "v0")
	session := fx.open(t, Callbacks{})

	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "v1"})))
	session.Flush()

	_, ok := session.Undo()
	require.True(t, ok)

	// Undo rewinds the working copy without issuing a save of its own
	assert.Equal(t, 1, fx.elements.updateCount(textID))
	stored, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", stored.Texts[0].Text)
}

func TestSessionClosedRejectsEdits(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "hello")
	session := fx.open(t, Callbacks{})

	session.Close()

	err := session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "late"}))
	assert.Error(t, err)
	_, err = session.AddElement(models.ElementKindText, nil)
	assert.Error(t, err)
}

// slowElements delays UpdateElement so a test can hold a background save
// in flight while other session operations run.
type slowElements struct {
	services.ElementService

	started chan struct{}
	once    sync.Once
	delay   time.Duration
}

func (s *slowElements) UpdateElement(templateID uint, kind models.ElementKind, elementID string, raw json.RawMessage) (*models.Template, error) {
	s.once.Do(func() { close(s.started) })
	time.Sleep(s.delay)
	return s.ElementService.UpdateElement(templateID, kind, elementID, raw)
}

func TestSessionCloseWaitsForInFlightSave(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "v0")

	slow := &slowElements{
		ElementService: fx.elements,
		started:        make(chan struct{}),
		delay:          100 * time.Millisecond,
	}
	loaded, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	session := NewSession("slow-session", loaded, slow, 5*time.Millisecond, Callbacks{}, logger.Nop())

	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "final"})))

	// Let the debounce fire and the save enter the persistence layer,
	// then close while it is still in flight.
	select {
	case <-slow.started:
	case <-time.After(time.Second):
		t.Fatal("debounced save never started")
	}
	session.Close()

	stored, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Texts[0].Text, "close must not return before the in-flight save lands")
}

func TestSessionSelectedReturnsCopy(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "original")

	var fromCallback models.DesignElement
	session := fx.open(t, Callbacks{
		OnSelect: func(el models.DesignElement) { fromCallback = el },
	})
	require.NoError(t, session.Select(models.ElementKindText, textID))

	selected, ok := session.Selected()
	require.True(t, ok)

	// Scribbling on the returned elements must not reach the working copy
	selected.(*models.TextElement).Text = "scribble"
	fromCallback.(*models.TextElement).Text = "scribble"

	working := session.Template()
	assert.Equal(t, "original", working.Texts[0].Text)
}

func TestSessionCloseFlushesPendingEdits(t *testing.T) {
	fx := newSessionFixture(t)
	textID := fx.addText(t, "hello")
	session := fx.open(t, Callbacks{})

	require.NoError(t, session.UpdateElement(models.ElementKindText, textID, patch(t, map[string]any{"text": "final"})))
	session.Close()

	stored, err := fx.templates.GetTemplateByID(fx.template.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Texts[0].Text)
}

func TestManagerLifecycle(t *testing.T) {
	fx := newSessionFixture(t)
	manager := NewManager(fx.templates, fx.elements, testDebounce, logger.Nop())

	session, err := manager.Open(fx.template.ID, Callbacks{})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	got, err := manager.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	require.NoError(t, manager.Close(session.ID))
	_, err = manager.Get(session.ID)
	assert.Error(t, err)
	assert.Error(t, manager.Close(session.ID))
}

func TestManagerOpenMissingTemplate(t *testing.T) {
	fx := newSessionFixture(t)
	manager := NewManager(fx.templates, fx.elements, testDebounce, logger.Nop())

	_, err := manager.Open(999, Callbacks{})
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)
}
