package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/shopfloor/pkg/buildinfo"
	"github.com/matzehuels/shopfloor/pkg/catalog"
	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/gesture"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/snapshot"
)

// maxBodyBytes bounds request bodies; pointer events are tiny.
const maxBodyBytes = 64 << 10

type liveResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type layoutResponse struct {
	Layout   layout.Snapshot `json:"layout"`
	Gesture  gesture.State   `json:"gesture"`
	EditMode bool            `json:"edit_mode"`
	Digest   string          `json:"digest"`
}

func (s *Server) layoutResponse() layoutResponse {
	snap := s.editor.Snapshot()
	return layoutResponse{
		Layout:   snap,
		Gesture:  s.editor.GestureState(),
		EditMode: s.editor.EditMode(),
		Digest:   snapshot.Digest(&snap),
	}
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, liveResponse{Status: "ok", Build: buildinfo.Current()})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Ping(r.Context()); err != nil {
		s.logger.Warn("snapshot store not ready", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := s.layoutResponse()
	s.mu.Unlock()

	etag := `"` + resp.Digest + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type touchRequest struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func (t touchRequest) pointer() gesture.Pointer {
	return gesture.Pointer{ID: t.ID, Source: gesture.SourceTouch, Pos: geom.V(t.X, t.Y)}
}

type pointerRequest struct {
	Phase   string         `json:"phase"`
	Source  string         `json:"source"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Touches []touchRequest `json:"touches"`
	// ChangedTouches names the contacts lifted by a touch up or cancel.
	ChangedTouches []touchRequest `json:"changed_touches,omitempty"`
	Item           string         `json:"item"`
}

func (p pointerRequest) touchRelease() bool {
	return p.Source == "touch" && (p.Phase == "up" || p.Phase == "cancel")
}

// pointer converts the request into the unified pointer shape. Touch events
// use the first contact; extra fingers are dropped. Touch releases are
// resolved by releasedTouch instead.
func (p pointerRequest) pointer() (gesture.Pointer, error) {
	switch p.Source {
	case "", "mouse":
		return gesture.Mouse(p.X, p.Y), nil
	case "touch":
		if len(p.Touches) == 0 {
			return gesture.Pointer{}, errors.New(errors.ErrCodeInvalidInput, "touch event without touches")
		}
		return p.Touches[0].pointer(), nil
	default:
		return gesture.Pointer{}, errors.New(errors.ErrCodeInvalidInput, "unknown pointer source %q", p.Source)
	}
}

// releasedTouch picks the contact a touch up or cancel refers to. When
// changed_touches is sent it names the lifted fingers. Otherwise touches is
// taken as the lifted contact if it lists the active finger; when it does not,
// or is empty, the active finger is gone and its gesture ends.
func (p pointerRequest) releasedTouch(active gesture.Pointer, ok bool) gesture.Pointer {
	ok = ok && active.Source == gesture.SourceTouch
	if len(p.ChangedTouches) > 0 {
		if t, found := findTouch(p.ChangedTouches, active.ID); ok && found {
			return t.pointer()
		}
		return p.ChangedTouches[0].pointer()
	}
	if t, found := findTouch(p.Touches, active.ID); ok && found {
		return t.pointer()
	}
	if ok {
		return active
	}
	if len(p.Touches) > 0 {
		return p.Touches[0].pointer()
	}
	// No touch gesture is active; this matches none.
	return gesture.Pointer{Source: gesture.SourceTouch}
}

func findTouch(ts []touchRequest, id int) (touchRequest, bool) {
	for _, t := range ts {
		if t.ID == id {
			return t, true
		}
	}
	return touchRequest{}, false
}

type pointerResponse struct {
	Outcome string        `json:"outcome,omitempty"`
	Gesture gesture.State `json:"gesture"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch req.Phase {
	case "down", "move", "up", "cancel":
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown pointer phase %q", req.Phase))
		return
	}
	var ptr gesture.Pointer
	if !req.touchRelease() {
		var err error
		if ptr, err = req.pointer(); err != nil {
			writeError(w, err)
			return
		}
	}

	s.mu.Lock()
	if req.touchRelease() {
		ptr = req.releasedTouch(s.editor.ActivePointer())
	}
	var (
		resp    pointerResponse
		pending *pendingSave
	)
	switch req.Phase {
	case "down":
		out := s.editor.OnPointerDown(gesture.Event{Pointer: ptr, Item: req.Item}, s.editor.EditMode())
		resp.Outcome = out.String()
	case "move":
		s.editor.OnPointerMove(ptr)
	case "up":
		s.editor.OnPointerUp(ptr)
		pending = s.mutated()
	case "cancel":
		s.editor.OnPointerCancel(ptr)
		pending = s.mutated()
	}
	resp.Gesture = s.editor.GestureState()
	s.mu.Unlock()

	s.autosave(r.Context(), pending)
	writeJSON(w, http.StatusOK, resp)
}

type zoomResponse struct {
	Applied  bool            `json:"applied"`
	Viewport layout.Viewport `json:"viewport"`
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var zoom func() bool
	switch chi.URLParam(r, "action") {
	case "in":
		zoom = s.editor.ZoomIn
	case "out":
		zoom = s.editor.ZoomOut
	case "reset":
		zoom = s.editor.ResetView
	default:
		writeError(w, errors.New(errors.ErrCodeNotFound, "unknown zoom action %q", chi.URLParam(r, "action")))
		return
	}

	var pending *pendingSave
	s.mu.Lock()
	applied := zoom()
	if applied {
		pending = s.mutated()
	}
	vp := s.editor.Snapshot().Viewport
	s.mu.Unlock()

	s.autosave(r.Context(), pending)
	writeJSON(w, http.StatusOK, zoomResponse{Applied: applied, Viewport: vp})
}

type editModeRequest struct {
	Enabled bool `json:"enabled"`
}

// handleEditMode toggles edit mode. It is session state, not part of the
// snapshot, so it never autosaves.
func (s *Server) handleEditMode(w http.ResponseWriter, r *http.Request) {
	var req editModeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	s.editor.SetEditMode(req.Enabled)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"edit_mode": req.Enabled})
}

type addItemRequest struct {
	MachineID string `json:"machine_id"`
}

type itemResponse struct {
	UID  string      `json:"uid"`
	Item layout.Item `json:"item"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateMachineID(req.MachineID); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	uid, it, pending, err := s.addItem(req.MachineID)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	s.autosave(r.Context(), pending)
	w.Header().Set("Location", "/api/v1/layout/items/"+uid)
	writeJSON(w, http.StatusCreated, itemResponse{UID: uid, Item: it})
}

// addItem places a catalog machine. Callers hold s.mu.
func (s *Server) addItem(id string) (string, layout.Item, *pendingSave, error) {
	m, err := s.catalog.Lookup(id)
	if err != nil {
		return "", layout.Item{}, nil, err
	}
	uid, err := s.editor.AddBackingEntity(m.Entity())
	if err != nil {
		return "", layout.Item{}, nil, err
	}
	it, _ := s.editor.Item(uid)
	return uid, it, s.mutated(), nil
}

type relabelRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleRelabel(w http.ResponseWriter, r *http.Request) {
	var req relabelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	uid := chi.URLParam(r, "uid")

	s.mu.Lock()
	it, pending, err := s.relabel(uid, req.Text)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	s.autosave(r.Context(), pending)
	writeJSON(w, http.StatusOK, itemResponse{UID: uid, Item: it})
}

// relabel replaces an item's display text. Callers hold s.mu.
func (s *Server) relabel(uid, text string) (layout.Item, *pendingSave, error) {
	if !s.editor.EditMode() {
		return layout.Item{}, nil, errEditModeOff
	}
	if !s.editor.Relabel(uid, text) {
		return layout.Item{}, nil, errors.New(errors.ErrCodeNotFound, "item %q not found", uid)
	}
	it, _ := s.editor.Item(uid)
	return it, s.mutated(), nil
}

// handleRemoveItem deletes an item. Unknown uids are a silent no-op, as in
// the editor, so DELETE is idempotent.
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var pending *pendingSave
	s.mu.Lock()
	editMode := s.editor.EditMode()
	if editMode && s.editor.RemoveItem(uid) {
		pending = s.mutated()
	}
	s.mu.Unlock()
	if !editMode {
		writeError(w, errEditModeOff)
		return
	}

	s.autosave(r.Context(), pending)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pending := s.capture()
	s.mu.Unlock()

	digest, err := s.persist(r.Context(), pending)
	if err != nil {
		s.logger.Error("save failed", "name", s.cfg.Name, "err", err)
		writeError(w, errors.Wrap(errors.ErrCodeNetwork, err, "save layout"))
		return
	}
	s.logger.Info("layout saved", "name", s.cfg.Name, "digest", shortDigest(digest))
	writeJSON(w, http.StatusOK, map[string]string{"name": s.cfg.Name, "digest": digest})
}

func (s *Server) handleMachines(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := s.catalog.List(s.editor.PlacedReferenceIDs())
	s.mu.Unlock()

	if list == nil {
		list = []catalog.Listing{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"machines": list})
}

var errEditModeOff = errors.New(errors.ErrCodeInvalidInput, "edit mode is off")

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
