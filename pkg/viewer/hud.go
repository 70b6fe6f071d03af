package viewer

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Button labels.
const (
	LabelDelete = "Delete Geometry"
	LabelScale  = "Scale Geometry"
)

type action int

const (
	actionDelete action = iota
	actionScale
)

var (
	barStyle        = lipgloss.NewStyle().Background(lipgloss.Color("#1E1E2A"))
	buttonStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3D3D63")).Bold(true).Padding(0, 1)
	idleButtonStyle = buttonStyle.Foreground(lipgloss.Color("#8A8AA3")).Bold(false)
	statusStyle     = barStyle.Foreground(lipgloss.Color("#A0A0B8"))
	hudStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#000000"))
	selectedStyle   = hudStyle.Foreground(lipgloss.Color("#FF4040")).Bold(true)
	fpsStyle        = hudStyle.Foreground(lipgloss.Color("#50E050"))
)

// button is a clickable label in the bottom bar.
type button struct {
	label  string
	action action
	x      int // first column
	width  int
}

func (b button) contains(col int) bool {
	return col >= b.x && col < b.x+b.width
}

// layoutButtons places the buttons left to right from column 1 with a
// one-column gap.
func layoutButtons() []button {
	buttons := []button{
		{label: LabelDelete, action: actionDelete},
		{label: LabelScale, action: actionScale},
	}
	x := 1
	for i := range buttons {
		buttons[i].x = x
		buttons[i].width = lipgloss.Width(buttonStyle.Render(buttons[i].label))
		x += buttons[i].width + 1
	}
	return buttons
}

// hitButton returns the button under column col of the bar.
func hitButton(buttons []button, col int) (button, bool) {
	for _, b := range buttons {
		if b.contains(col) {
			return b, true
		}
	}
	return button{}, false
}

// renderBar draws the button bar with the status text flush right. Buttons
// are dimmed while nothing is selected.
func renderBar(buttons []button, width int, active bool, status string) string {
	style := idleButtonStyle
	if active {
		style = buttonStyle
	}

	var b strings.Builder
	b.WriteString(barStyle.Render(" "))
	for _, btn := range buttons {
		b.WriteString(style.Render(btn.label))
		b.WriteString(barStyle.Render(" "))
	}
	left := b.String()

	room := width - lipgloss.Width(left) - 1
	if room <= 0 {
		return left
	}
	status = ansi.Truncate(status, room, "")
	gap := width - lipgloss.Width(left) - lipgloss.Width(status)
	return left + barStyle.Render(strings.Repeat(" ", max(0, gap))) + statusStyle.Render(status)
}

// hud is the top overlay: model name, mesh count, selection and FPS.
type hud struct {
	title     string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(title string) *hud {
	return &hud{title: title, fpsTime: time.Now()}
}

// tick counts a frame; call once per frame.
func (h *hud) tick() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *hud) render(width, meshes int, selected string) string {
	sel := hudStyle.Render("nothing selected")
	if selected != "" {
		sel = selectedStyle.Render(selected)
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top,
		hudStyle.Render(fmt.Sprintf(" %s │ %d meshes │ ", h.title, meshes)),
		sel,
		hudStyle.Render(" "),
	)
	fps := fpsStyle.Render(fmt.Sprintf(" %.0f FPS ", h.fps))

	gap := width - lipgloss.Width(left) - lipgloss.Width(fps)
	if gap < 0 {
		return left
	}
	return left + strings.Repeat(" ", gap) + fps
}
