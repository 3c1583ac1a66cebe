package gesture

// Listener receives document-level pointer events for an active gesture.
type Listener interface {
	PointerMove(p Pointer)
	PointerUp(p Pointer)
	PointerCancel(p Pointer)
}

// Handle detaches a listener. Remove is idempotent.
type Handle interface {
	Remove()
}

// Attacher registers document-level listeners.
type Attacher interface {
	Add(l Listener) Handle
}

// Registry is the document/window-level listener table. The router attaches a
// listener when a gesture starts and removes it when the gesture ends, so
// dispatching to an idle registry is a no-op.
type Registry struct {
	entries []registration
	nextID  uint64
}

type registration struct {
	id uint64
	l  Listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers l until the returned handle is removed.
func (r *Registry) Add(l Listener) Handle {
	r.nextID++
	r.entries = append(r.entries, registration{id: r.nextID, l: l})
	return &registryHandle{reg: r, id: r.nextID}
}

// Len returns the number of attached listeners.
func (r *Registry) Len() int { return len(r.entries) }

// DispatchMove delivers a pointer move to all attached listeners.
func (r *Registry) DispatchMove(p Pointer) {
	for _, e := range r.snapshot() {
		e.l.PointerMove(p)
	}
}

// DispatchUp delivers a pointer release to all attached listeners.
func (r *Registry) DispatchUp(p Pointer) {
	for _, e := range r.snapshot() {
		e.l.PointerUp(p)
	}
}

// DispatchCancel delivers a pointer cancel to all attached listeners.
func (r *Registry) DispatchCancel(p Pointer) {
	for _, e := range r.snapshot() {
		e.l.PointerCancel(p)
	}
}

// snapshot copies the entries so listeners may remove themselves mid-dispatch.
func (r *Registry) snapshot() []registration {
	if len(r.entries) == 0 {
		return nil
	}
	return append([]registration(nil), r.entries...)
}

func (r *Registry) remove(id uint64) {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

type registryHandle struct {
	reg *Registry
	id  uint64
}

func (h *registryHandle) Remove() {
	if h.reg == nil {
		return
	}
	h.reg.remove(h.id)
	h.reg = nil
}
