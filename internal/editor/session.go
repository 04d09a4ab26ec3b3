package editor

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/postcraft-io/template-studio/internal/canvas"
	"github.com/postcraft-io/template-studio/internal/logger"
	"github.com/postcraft-io/template-studio/internal/models"
	"github.com/postcraft-io/template-studio/internal/services"
)

// DefaultDebounce is the quiet period before an edited element is pushed
// to the persistence layer.
const DefaultDebounce = 300 * time.Millisecond

// Callbacks let a host page observe the session: selection changes, local
// template mutations, and failed background saves. Any field may be nil.
type Callbacks struct {
	// OnSelect fires whenever the selection changes; nil means deselected.
	OnSelect func(element models.DesignElement)
	// OnChange fires after every local mutation with the updated template.
	OnChange func(t *models.Template)
	// OnSaveError fires when a background save fails. The local working
	// copy is never rolled back; the error is surfaced so the host can
	// show a retryable notification.
	OnSaveError func(elementID string, err error)
}

// Session is one editing session over a single template. It owns the
// working copy exclusively: property edits mutate the copy immediately
// (responsive UI), push one history snapshot, and schedule a debounced
// write-behind to the element service. The debounce is keyed per element,
// so rapid edits to different elements never cancel each other's pending
// writes.
//
// Structural operations (add, delete) are persisted synchronously: the
// server assigns uuids, so there is nothing to coalesce.
type Session struct {
	ID string

	mu        sync.Mutex
	template  *models.Template
	history   *History
	elements  services.ElementService
	callbacks Callbacks
	log       *logger.Logger

	selectedKind models.ElementKind
	selectedID   string

	debounce time.Duration
	timers   map[string]*time.Timer
	inflight sync.WaitGroup
	closed   bool
}

type pendingKey struct {
	kind models.ElementKind
	id   string
}

// NewSession starts a session over a loaded template. History is seeded
// with the loaded snapshot.
func NewSession(id string, t *models.Template, elements services.ElementService, debounce time.Duration, callbacks Callbacks, log *logger.Logger) *Session {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	s := &Session{
		ID:        id,
		template:  t.Clone(),
		history:   NewHistory(),
		elements:  elements,
		callbacks: callbacks,
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
		log:       log.With("component", "session", "session", id, "template", t.ID),
	}
	s.history.Push(s.template)
	return s
}

// Template returns a copy of the current working state.
func (s *Session) Template() *models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template.Clone()
}

// Select marks an element as the current selection. Selection is derived
// state: it never pushes history.
func (s *Session) Select(kind models.ElementKind, elementID string) error {
	s.mu.Lock()
	el, ok := s.template.FindElement(kind, elementID)
	if !ok {
		s.mu.Unlock()
		return models.ErrElementNotFound
	}
	s.selectedKind = kind
	s.selectedID = elementID
	cb := s.callbacks.OnSelect
	out := cloneElement(el)
	s.mu.Unlock()

	if cb != nil {
		cb(out)
	}
	return nil
}

// Deselect clears the selection (clicking empty canvas).
func (s *Session) Deselect() {
	s.mu.Lock()
	s.selectedKind = ""
	s.selectedID = ""
	cb := s.callbacks.OnSelect
	s.mu.Unlock()

	if cb != nil {
		cb(nil)
	}
}

// Selected returns a copy of the currently selected element, if any. The
// copy keeps callers from reaching into the mutex-guarded working copy.
func (s *Session) Selected() (models.DesignElement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == "" {
		return nil, false
	}
	el, ok := s.template.FindElement(s.selectedKind, s.selectedID)
	if !ok {
		return nil, false
	}
	return cloneElement(el), true
}

// UpdateElement applies a partial edit to one element: normalize, merge
// into the working copy, snapshot history, notify, and schedule the
// debounced save.
func (s *Session) UpdateElement(kind models.ElementKind, elementID string, raw json.RawMessage) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session %s is closed", s.ID)
	}

	el, ok := s.template.FindElement(kind, elementID)
	if !ok {
		s.mu.Unlock()
		return models.ErrElementNotFound
	}

	if err := mergeRaw(el, raw); err != nil {
		s.mu.Unlock()
		return err
	}

	s.history.Push(s.template)
	s.scheduleFlushLocked(pendingKey{kind: kind, id: elementID})
	cb := s.callbacks.OnChange
	snapshot := s.template.Clone()
	s.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
	return nil
}

// AddElement creates an element through the persistence layer (the server
// assigns the uuid) and reconciles the returned template into the working
// copy.
func (s *Session) AddElement(kind models.ElementKind, raw json.RawMessage) (*models.Template, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s is closed", s.ID)
	}
	templateID := s.template.ID
	s.mu.Unlock()

	updated, err := s.elements.AddElement(templateID, kind, raw)
	if err != nil {
		return nil, err
	}
	return s.reconcile(updated), nil
}

// DeleteElement removes an element through the persistence layer and
// reconciles the result. A pending debounced write for the element is
// cancelled.
func (s *Session) DeleteElement(kind models.ElementKind, elementID string) (*models.Template, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s is closed", s.ID)
	}
	templateID := s.template.ID
	key := pendingKey{kind: kind, id: elementID}
	if timer, ok := s.timers[key.String()]; ok {
		timer.Stop()
		delete(s.timers, key.String())
	}
	if s.selectedID == elementID {
		s.selectedKind = ""
		s.selectedID = ""
	}
	s.mu.Unlock()

	updated, err := s.elements.DeleteElement(templateID, kind, elementID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(updated), nil
}

// Undo steps the working copy back one snapshot.
func (s *Session) Undo() (*models.Template, bool) {
	return s.step(func(h *History) (*models.Template, bool) { return h.Undo() })
}

// Redo steps the working copy forward one snapshot.
func (s *Session) Redo() (*models.Template, bool) {
	return s.step(func(h *History) (*models.Template, bool) { return h.Redo() })
}

func (s *Session) step(move func(*History) (*models.Template, bool)) (*models.Template, bool) {
	s.mu.Lock()
	snapshot, ok := move(s.history)
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	s.template = snapshot
	cb := s.callbacks.OnChange
	out := snapshot.Clone()
	s.mu.Unlock()

	if cb != nil {
		cb(out)
	}
	return out, true
}

// HistoryState returns the history length and current index.
func (s *Session) HistoryState() (length, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len(), s.history.Index()
}

// Flush synchronously persists every pending element write.
func (s *Session) Flush() {
	s.mu.Lock()
	keys := make([]pendingKey, 0, len(s.timers))
	for k, timer := range s.timers {
		timer.Stop()
		keys = append(keys, parsePendingKey(k))
		s.inflight.Add(1)
	}
	s.timers = make(map[string]*time.Timer)
	s.mu.Unlock()

	for _, key := range keys {
		s.persistElement(key)
	}
}

// Close flushes pending writes, cancels timers, and waits for in-flight
// saves. A save already handed to the persistence layer completes; only
// not-yet-fired debounce timers are cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Flush()
	s.inflight.Wait()
}

// scheduleFlushLocked resets the element's debounce timer. Caller holds
// s.mu.
func (s *Session) scheduleFlushLocked(key pendingKey) {
	k := key.String()
	if timer, ok := s.timers[k]; ok {
		timer.Stop()
	}
	s.timers[k] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		if _, ok := s.timers[k]; !ok {
			// already flushed or cancelled
			s.mu.Unlock()
			return
		}
		delete(s.timers, k)
		// Claim the in-flight slot before releasing the lock, so a
		// concurrent Close cannot observe an empty wait group while
		// this save is still on its way out.
		s.inflight.Add(1)
		s.mu.Unlock()
		s.persistElement(key)
	})
}

// persistElement pushes the element's current working-copy state to the
// persistence layer. The caller has already claimed the in-flight slot;
// failures never roll back the working copy.
func (s *Session) persistElement(key pendingKey) {
	defer s.inflight.Done()

	s.mu.Lock()
	el, ok := s.template.FindElement(key.kind, key.id)
	if !ok {
		// deleted since the edit; nothing to save
		s.mu.Unlock()
		return
	}
	templateID := s.template.ID
	raw, err := json.Marshal(el)
	onError := s.callbacks.OnSaveError
	s.mu.Unlock()

	if err != nil {
		s.log.Error("marshal element for save", "element", key.id, "error", err)
		return
	}

	if _, err := s.elements.UpdateElement(templateID, key.kind, key.id, raw); err != nil {
		s.log.Warn("background save failed", "element", key.id, "error", err)
		if onError != nil {
			onError(key.id, err)
		}
	}
}

// reconcile merges a server-returned template into the working copy:
// server state wins (ids, timestamps, server-assigned fields) except for
// elements with a pending debounced edit, which stay local until their
// write lands. The merged state is snapshotted and announced.
func (s *Session) reconcile(server *models.Template) *models.Template {
	s.mu.Lock()
	merged := server.Clone()
	for k := range s.timers {
		key := parsePendingKey(k)
		local, okLocal := s.template.FindElement(key.kind, key.id)
		if !okLocal {
			continue
		}
		overwriteElement(merged, key.kind, local)
	}
	s.template = merged
	s.history.Push(s.template)
	cb := s.callbacks.OnChange
	out := merged.Clone()
	s.mu.Unlock()

	if cb != nil {
		cb(out)
	}
	return out
}

func (k pendingKey) String() string {
	return string(k.kind) + ":" + k.id
}

func parsePendingKey(s string) pendingKey {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return pendingKey{kind: models.ElementKind(s[:i]), id: s[i+1:]}
		}
	}
	return pendingKey{id: s}
}

// mergeRaw decodes a raw patch for the element's kind and merges it in
// place, running normalization.
func mergeRaw(el models.DesignElement, raw json.RawMessage) error {
	switch e := el.(type) {
	case *models.ImageElement:
		var patch canvas.ImagePatch
		if err := json.Unmarshal(raw, &patch); err != nil {
			return &models.ValidationError{Field: "fields", Reason: err.Error()}
		}
		canvas.MergeImage(e, patch)
	case *models.TextElement:
		var patch canvas.TextPatch
		if err := json.Unmarshal(raw, &patch); err != nil {
			return &models.ValidationError{Field: "fields", Reason: err.Error()}
		}
		canvas.MergeText(e, patch)
	case *models.ShapeElement:
		var patch canvas.ShapePatch
		if err := json.Unmarshal(raw, &patch); err != nil {
			return &models.ValidationError{Field: "fields", Reason: err.Error()}
		}
		canvas.MergeShape(e, patch)
	default:
		return &models.ValidationError{Field: "kind", Reason: "unhandled element kind"}
	}
	return nil
}

// cloneElement returns an independent copy of the element, detached from
// any template's slices.
func cloneElement(el models.DesignElement) models.DesignElement {
	switch e := el.(type) {
	case *models.ImageElement:
		c := e.Clone()
		return &c
	case *models.TextElement:
		c := e.Clone()
		return &c
	case *models.ShapeElement:
		c := e.Clone()
		return &c
	default:
		return el
	}
}

// overwriteElement replaces the matching element in t with local's state.
func overwriteElement(t *models.Template, kind models.ElementKind, local models.DesignElement) {
	switch kind {
	case models.ElementKindImage:
		src, ok := local.(*models.ImageElement)
		if !ok {
			return
		}
		for i := range t.Images {
			if t.Images[i].UUID == src.UUID {
				t.Images[i] = src.Clone()
				return
			}
		}
	case models.ElementKindText:
		src, ok := local.(*models.TextElement)
		if !ok {
			return
		}
		for i := range t.Texts {
			if t.Texts[i].UUID == src.UUID {
				t.Texts[i] = src.Clone()
				return
			}
		}
	case models.ElementKindShape:
		src, ok := local.(*models.ShapeElement)
		if !ok {
			return
		}
		for i := range t.Shapes {
			if t.Shapes[i].UUID == src.UUID {
				t.Shapes[i] = src.Clone()
				return
			}
		}
	}
}
