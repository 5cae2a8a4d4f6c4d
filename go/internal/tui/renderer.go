package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mcdev12/timerball/go/internal/round"
	"github.com/mcdev12/timerball/go/internal/scene"
)

const (
	ballGlyph   = '●'
	restartHint = "[r] Restart"
	startHint   = "[s] Start"
	quitHint    = "[q] Quit"
	pausedText  = "Paused"
)

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBall    = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Renderer draws snapshots onto a terminal screen. The arena is scaled to
// whatever space is left below the header and above the status lines.
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw renders one snapshot and shows it
func (r *Renderer) Draw(snap scene.Snapshot, footer string) {
	s := r.screen
	s.Clear()
	w, h := s.Size()
	if w < 12 || h < 6 {
		r.text(0, 0, snap.CounterLabel, styleDefault)
		s.Show()
		return
	}

	r.text(0, 0, snap.CounterLabel, styleDefault)
	if footer != "" {
		r.text(w-len(footer), 0, footer, styleBorder)
	}

	// arena occupies rows 1..h-3
	top, bottom := 1, h-3
	r.box(0, top, w-1, bottom)
	if snap.Body != nil {
		x, y := cell(snap.Body.Pos, snap.Bounds, 1, top+1, w-2, bottom-1)
		s.SetContent(x, y, ballGlyph, nil, styleBall)
	}

	status := snap.StatusLabel
	if snap.Phase == round.PhasePaused {
		status = pausedText
	}
	r.text((w-len(status))/2, h-2, status, styleStatus)

	x := 0
	for _, hint := range hints(snap) {
		r.text(x, h-1, hint, styleHint)
		x += len(hint) + 2
	}
	s.Show()
}

func hints(snap scene.Snapshot) []string {
	var out []string
	if snap.StartEnabled && !snap.RestartVisible {
		out = append(out, startHint)
	}
	if snap.RestartVisible {
		out = append(out, restartHint)
	}
	return append(out, quitHint)
}

// cell maps an arena position onto the inclusive cell rectangle
// [x0,x1] x [y0,y1]
func cell(pos scene.Vec, bounds scene.Bounds, x0, y0, x1, y1 int) (int, int) {
	x := x0 + int(pos.X/bounds.Width*float64(x1-x0+1))
	y := y0 + int(pos.Y/bounds.Height*float64(y1-y0+1))
	return clamp(x, x0, x1), clamp(y, y0, y1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (r *Renderer) box(x0, y0, x1, y1 int) {
	s := r.screen
	for x := x0 + 1; x < x1; x++ {
		s.SetContent(x, y0, tcell.RuneHLine, nil, styleBorder)
		s.SetContent(x, y1, tcell.RuneHLine, nil, styleBorder)
	}
	for y := y0 + 1; y < y1; y++ {
		s.SetContent(x0, y, tcell.RuneVLine, nil, styleBorder)
		s.SetContent(x1, y, tcell.RuneVLine, nil, styleBorder)
	}
	s.SetContent(x0, y0, tcell.RuneULCorner, nil, styleBorder)
	s.SetContent(x1, y0, tcell.RuneURCorner, nil, styleBorder)
	s.SetContent(x0, y1, tcell.RuneLLCorner, nil, styleBorder)
	s.SetContent(x1, y1, tcell.RuneLRCorner, nil, styleBorder)
}

func (r *Renderer) text(x, y int, str string, style tcell.Style) {
	for _, ch := range str {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
