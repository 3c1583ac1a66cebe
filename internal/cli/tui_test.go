package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/shopfloor/pkg/catalog"
	"github.com/matzehuels/shopfloor/pkg/config"
	"github.com/matzehuels/shopfloor/pkg/editor"
	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/snapshot"
)

func newTestSession(t *testing.T) (*session, *snapshot.MemoryStore) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Name = "test"
	n := 0
	store := snapshot.NewMemoryStore()
	sess := &session{
		cfg:     cfg,
		catalog: catalog.Default(),
		store:   store,
		editor: editor.New(
			editor.WithLogger(log.New(io.Discard)),
			editor.WithIDGenerator(func() string { n++; return fmt.Sprintf("uid-%d", n) }),
		),
	}
	return sess, store
}

func key(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func mouse(action tea.MouseAction, col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: action, Button: tea.MouseButtonLeft}
}

func send(m *editorModel, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestEditorModelAddAndDrag(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newEditorModel(context.Background(), sess)

	send(m, key("a"))
	if len(sess.editor.Snapshot().Items) != 0 {
		t.Fatal("added a machine outside edit mode")
	}
	if !strings.Contains(m.status, "edit mode") {
		t.Errorf("status = %q", m.status)
	}

	send(m, key("e"), key("a"))
	it, ok := sess.editor.Item("uid-1")
	if !ok || it.ReferenceID != "1081579" || it.Position != geom.V(425, 275) {
		t.Fatalf("placed item = %+v, %v", it, ok)
	}
	if m.selected != "uid-1" {
		t.Errorf("selected = %q, want uid-1", m.selected)
	}

	// Cell (45, 15) is canvas point (455, 310), inside the new 80x64 item.
	send(m,
		mouse(tea.MouseActionPress, 45, 15+headerRows),
		mouse(tea.MouseActionMotion, 55, 16+headerRows),
		mouse(tea.MouseActionRelease, 55, 16+headerRows),
	)
	it, _ = sess.editor.Item("uid-1")
	if it.Position != geom.V(525, 295) {
		t.Errorf("position after drag = %v, want (525, 295)", it.Position)
	}
}

func TestEditorModelSelectOutsideEditMode(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newEditorModel(context.Background(), sess)
	send(m, key("e"), key("a"), key("e"))

	send(m, mouse(tea.MouseActionPress, 45, 15+headerRows), mouse(tea.MouseActionRelease, 45, 15+headerRows))
	if m.selected != "uid-1" {
		t.Errorf("selected = %q, want uid-1", m.selected)
	}
	if !strings.Contains(m.status, "Furadeira de Bancada") {
		t.Errorf("status %q lacks machine details", m.status)
	}
	if it, _ := sess.editor.Item("uid-1"); it.Position != geom.V(425, 275) {
		t.Error("item moved outside edit mode")
	}
}

func TestEditorModelZoom(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newEditorModel(context.Background(), sess)

	send(m, mouse(tea.MouseActionPress, 1, 1+headerRows), key("+"))
	if got := sess.editor.Snapshot().Viewport.Scale; got != 1 {
		t.Errorf("scale during pan = %v, want 1", got)
	}
	if !strings.Contains(m.status, "Release") {
		t.Errorf("status = %q", m.status)
	}

	send(m, mouse(tea.MouseActionRelease, 1, 1+headerRows), key("+"), key("+"))
	if got := sess.editor.Snapshot().Viewport.Scale; got < 1.19 || got > 1.21 {
		t.Errorf("scale = %v, want 1.2", got)
	}
	send(m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	send(m, key("0"))
	if vp := sess.editor.Snapshot().Viewport; vp.Scale != 1 || vp.Pan != (geom.Vec{}) {
		t.Errorf("viewport after reset = %+v", vp)
	}
}

func TestEditorModelDelete(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newEditorModel(context.Background(), sess)

	send(m, key("e"), key("x"))
	if m.status != "Nothing selected" {
		t.Errorf("status = %q", m.status)
	}
	send(m, key("a"), key("x"))
	if sess.editor.IsPlaced("1081579") || m.selected != "" {
		t.Error("selected machine not removed")
	}

	// The next add picks the lowest unplaced catalog entry again.
	send(m, key("a"))
	if !sess.editor.IsPlaced("1081579") {
		t.Error("removed machine not offered again")
	}
}

func TestEditorModelSave(t *testing.T) {
	sess, store := newTestSession(t)
	m := newEditorModel(context.Background(), sess)
	send(m, key("e"), key("a"))

	cmd := send(m, key("s"))
	if cmd == nil {
		t.Fatal("save returned no command")
	}
	send(m, cmd())
	if !strings.HasPrefix(m.status, `Saved "test"`) {
		t.Errorf("status = %q", m.status)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d snapshots, want 1", store.Len())
	}
}

func TestEditorModelResize(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newEditorModel(context.Background(), sess)
	send(m, tea.WindowSizeMsg{Width: 120, Height: 40}, key("e"), key("a"))

	// 120 cols x 37 canvas rows = 1200 x 740 world units at 100%.
	if it, _ := sess.editor.Item("uid-1"); it.Position != geom.V(600, 370) {
		t.Errorf("placed at %v, want (600, 370)", it.Position)
	}
}

func TestEditorModelView(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newEditorModel(context.Background(), sess)
	if !strings.Contains(m.View(), "VIEW") {
		t.Error("view mode badge missing")
	}

	send(m, key("e"), key("a"))
	view := m.View()
	for _, want := range []string{appName, "test", "EDIT", "100%", "1/19 placed", "FURADE", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines != m.height {
		t.Errorf("view has %d lines, want %d", lines, m.height)
	}
}

func TestEditorModelQuit(t *testing.T) {
	sess, _ := newTestSession(t)
	m := newEditorModel(context.Background(), sess)
	send(m, mouse(tea.MouseActionPress, 1, 1+headerRows))

	cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
	if sess.editor.GestureState().Kind.String() != "idle" {
		t.Error("gesture still active after quit")
	}
}
