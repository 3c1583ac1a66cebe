package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/gesture"
	"github.com/matzehuels/shopfloor/pkg/layout"
)

// Screen rows reserved outside the canvas.
const (
	headerRows = 1
	footerRows = 2
)

const saveTimeout = 10 * time.Second

var (
	styleBadgeEdit = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(colorYellow).Padding(0, 1)
	styleBadgeView = lipgloss.NewStyle().Foreground(colorGray).Background(lipgloss.Color("236")).Padding(0, 1)
	styleLabelItem = lipgloss.NewStyle().Foreground(colorDim)
	styleSelected  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHelp      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EditorModel - Interactive floor plan
// =============================================================================

type savedMsg struct {
	digest string
	err    error
}

// editorModel is the bubbletea host of an editing session. Mouse presses,
// motion and releases are converted to pointer events at the center of the
// cell under the cursor.
type editorModel struct {
	ctx  context.Context
	sess *session

	width, height int
	selected      string
	status        string
	statusStyle   lipgloss.Style
}

func newEditorModel(ctx context.Context, sess *session) *editorModel {
	m := &editorModel{
		ctx:         ctx,
		sess:        sess,
		width:       int(sess.cfg.Viewport.Width / cellW),
		height:      int(sess.cfg.Viewport.Height/cellH) + headerRows + footerRows,
		statusStyle: StyleDim,
	}
	sess.editor.OnItemSelected(m.selectItem)
	return m
}

func (m *editorModel) Init() tea.Cmd {
	return nil
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.sess.editor.SetViewportSize(geom.Size{
			W: float64(m.width) * cellW,
			H: float64(m.canvasRows()) * cellH,
		})
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case savedMsg:
		if msg.err != nil {
			m.setStatus(StyleWarning, "Save failed: %v", msg.err)
		} else {
			m.setStatus(StyleSuccess, "Saved %q (%s)", m.sess.cfg.Store.Name, shortDigest(msg.digest))
		}
	}
	return m, nil
}

func (m *editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.sess.editor
	switch msg.String() {
	case "q", "ctrl+c":
		ed.Close()
		return m, tea.Quit
	case "e":
		ed.SetEditMode(!ed.EditMode())
		if ed.EditMode() {
			m.setStatus(StyleDim, "Edit mode: drag machines, a to add, x to delete, s to save")
		} else {
			m.setStatus(StyleDim, "View mode: click a machine for details")
		}
	case "+", "=":
		m.zoom(ed.ZoomIn)
	case "-":
		m.zoom(ed.ZoomOut)
	case "0":
		m.zoom(ed.ResetView)
	case "a":
		m.addNext()
	case "x":
		m.deleteSelected()
	case "s":
		return m, m.save()
	case "esc":
		m.selected = ""
		m.status = ""
	}
	return m, nil
}

func (m *editorModel) handleMouse(msg tea.MouseMsg) {
	ed := m.sess.editor
	p := m.pointer(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.zoom(ed.ZoomIn)
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.zoom(ed.ZoomOut)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if msg.Y < headerRows || msg.Y >= headerRows+m.canvasRows() {
			return
		}
		if ed.OnPointerDown(gesture.Event{Pointer: p}, ed.EditMode()) == gesture.Dragging {
			m.selected = ed.GestureState().UID
			m.status = ""
		}
	case msg.Action == tea.MouseActionMotion:
		ed.OnPointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		ed.OnPointerUp(p)
	}
}

// pointer maps a terminal cell to a canvas-space mouse pointer.
func (m *editorModel) pointer(col, row int) gesture.Pointer {
	c := cellCenter(col, row-headerRows)
	return gesture.Mouse(c.X, c.Y)
}

func (m *editorModel) zoom(fn func() bool) {
	if !fn() {
		m.setStatus(StyleWarning, "Release the mouse before zooming")
	}
}

// selectItem is the editor's selection callback outside edit mode.
func (m *editorModel) selectItem(uid string) {
	m.selected = uid
	m.setStatus(StyleValue, "%s", m.describe(uid))
}

func (m *editorModel) describe(uid string) string {
	it, ok := m.sess.editor.Item(uid)
	if !ok {
		return ""
	}
	if it.Kind != layout.KindMachine {
		return fmt.Sprintf("%s %s", it.DisplayText, StyleDim.Render("("+string(it.Kind)+")"))
	}
	mc, ok := m.sess.catalog.Get(it.ReferenceID)
	if !ok {
		return fmt.Sprintf("%s %s", it.DisplayText, StyleDim.Render(it.ReferenceID+" (not in catalog)"))
	}
	parts := []string{
		lipgloss.NewStyle().Bold(true).Render(it.DisplayText),
		mc.Name,
		mc.Type,
	}
	if mc.Model != "" {
		parts = append(parts, StyleDim.Render(mc.Model))
	}
	parts = append(parts, statusStyle(mc.Status).Render(mc.Status.Label()))
	return strings.Join(parts, StyleDim.Render(" · "))
}

// addNext places the first catalog machine not yet on the layout.
func (m *editorModel) addNext() {
	ed := m.sess.editor
	if !ed.EditMode() {
		m.setStatus(StyleWarning, "Press e to enter edit mode first")
		return
	}
	avail := m.sess.catalog.Available(ed.PlacedReferenceIDs())
	if len(avail) == 0 {
		m.setStatus(StyleDim, "Every machine is already on the layout")
		return
	}
	uid, err := ed.AddBackingEntity(avail[0].Entity())
	if err != nil {
		m.setStatus(StyleWarning, "Cannot place %s: %v", avail[0].ID, err)
		return
	}
	m.selected = uid
	m.setStatus(StyleSuccess, "Placed %s (%d left)", avail[0].DisplayLabel(), len(avail)-1)
}

func (m *editorModel) deleteSelected() {
	ed := m.sess.editor
	switch {
	case !ed.EditMode():
		m.setStatus(StyleWarning, "Press e to enter edit mode first")
	case m.selected == "":
		m.setStatus(StyleDim, "Nothing selected")
	default:
		it, _ := ed.Item(m.selected)
		if ed.RemoveItem(m.selected) {
			m.setStatus(StyleSuccess, "Removed %s", it.DisplayText)
		}
		m.selected = ""
	}
}

// save persists in the background; the result arrives as savedMsg.
func (m *editorModel) save() tea.Cmd {
	sess := m.sess
	snap := sess.editor.Snapshot()
	m.setStatus(StyleDim, "Saving...")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, saveTimeout)
		defer cancel()
		digest, err := sess.saveSnapshot(ctx, &snap)
		return savedMsg{digest: digest, err: err}
	}
}

func (m *editorModel) setStatus(style lipgloss.Style, format string, args ...any) {
	m.statusStyle = style
	m.status = fmt.Sprintf(format, args...)
}

func (m *editorModel) canvasRows() int {
	if r := m.height - headerRows - footerRows; r > 0 {
		return r
	}
	return 1
}

func (m *editorModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.renderFloor())
	b.WriteString("\n")
	b.WriteString(m.statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("drag pan/move · e edit · +/- zoom · 0 reset · a add · x delete · s save · q quit"))
	return b.String()
}

func (m *editorModel) header() string {
	ed := m.sess.editor
	badge := styleBadgeView.Render("VIEW")
	if ed.EditMode() {
		badge = styleBadgeEdit.Render("EDIT")
	}
	vp := ed.Snapshot().Viewport
	parts := []string{
		StyleTitle.Render(appName),
		StyleValue.Render(m.sess.cfg.Store.Name),
		badge,
		StyleDim.Render(fmt.Sprintf("%.0f%%", vp.Scale*100)),
	}
	if st := ed.GestureState(); st.Kind != gesture.Idle {
		parts = append(parts, StyleDim.Render(st.Kind.String()))
	}
	placed := len(ed.PlacedReferenceIDs())
	parts = append(parts, StyleDim.Render(fmt.Sprintf("%d/%d placed", placed, m.sess.catalog.Len())))
	return strings.Join(parts, " ")
}

// renderFloor draws items in z-order so the topmost item wins overlapping
// cells, matching hit testing.
func (m *editorModel) renderFloor() string {
	ed := m.sess.editor
	snap := ed.Snapshot()
	c := newCanvas(m.width, m.canvasRows())
	dragging := ed.GestureState().UID

	for _, it := range snap.Items {
		var s lipgloss.Style
		switch {
		case it.UID == m.selected || it.UID == dragging:
			s = styleSelected
		case it.Kind != layout.KindMachine:
			s = styleLabelItem
		default:
			s = lipgloss.NewStyle().Foreground(colorGray)
			if mc, ok := m.sess.catalog.Get(it.ReferenceID); ok {
				s = statusStyle(mc.Status)
			}
		}
		x0, y0, x1, y1 := cellRect(it.Bounds(), snap.Viewport.Pan, snap.Viewport.Scale)
		c.box(x0, y0, x1, y1, it.DisplayText, c.style(s))
	}
	return c.render()
}
