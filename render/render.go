// Package render draws warehouse frames on a terminal screen.
package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/inference-sim/warehouse-sim/sim"
)

// Glyphs for the cells of a frame. Each grid cell is two terminal columns
// wide so the grid keeps a square-ish aspect.
const (
	GlyphEmpty       = '.'
	GlyphBoundary    = '+'
	GlyphItem        = '#'
	GlyphRobot       = '@'
	GlyphRobotOnItem = '%'
)

var (
	styleEmpty    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBoundary = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleItem     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleRobot    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Renderer paints RenderImage frames and domain outlines on a tcell screen.
// Draw and Wait are called from the simulation loop; key events are read on
// a background goroutine.
type Renderer struct {
	screen tcell.Screen

	quit     chan struct{}
	quitOnce sync.Once
}

// NewTerminal opens and initializes the process terminal.
func NewTerminal() (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return New(screen), nil
}

// New wraps an initialized screen and starts listening for quit keys
// (Esc, q, Ctrl-C).
func New(screen tcell.Screen) *Renderer {
	r := &Renderer{screen: screen, quit: make(chan struct{})}
	go r.listen()
	return r
}

func (r *Renderer) listen() {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			// Screen finalized.
			return
		}
		if key, ok := ev.(*tcell.EventKey); ok {
			if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC ||
				(key.Key() == tcell.KeyRune && key.Rune() == 'q') {
				r.quitOnce.Do(func() { close(r.quit) })
				return
			}
		}
	}
}

// Quit is closed once the user asks to stop.
func (r *Renderer) Quit() <-chan struct{} { return r.quit }

// Screen returns the underlying screen.
func (r *Renderer) Screen() tcell.Screen { return r.screen }

// Draw paints the current frame of w and a status line below it, then shows
// the screen.
func (r *Renderer) Draw(w *sim.Warehouse, episode int) {
	img := w.RenderImage()
	rows, cols := img.Dims()
	boundary := boundaryCells(w.Domains())

	r.screen.Clear()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			glyph, style := CellGlyph(img.At(row, col), boundary[sim.Cell{Row: row, Col: col}])
			r.screen.SetContent(2*col, row, glyph, nil, style)
		}
	}
	status := fmt.Sprintf("episode %d  step %d/%d  collected %d  live %d",
		episode, w.EpisodeStep(), w.Config().NStepsEpisode, w.ItemsCollected(), len(w.Items()))
	drawText(r.screen, 0, rows+1, status, styleStatus)
	r.screen.Show()
}

// Wait sleeps for d, returning false early if the user quit.
func (r *Renderer) Wait(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-r.quit:
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-r.quit:
		return false
	case <-t.C:
		return true
	}
}

// Close restores the terminal.
func (r *Renderer) Close() {
	r.screen.Fini()
}

// CellGlyph maps a RenderImage value to its glyph: positive values are items,
// negative values carry at least one robot (odd when it stands on an item).
// Empty cells on a domain edge show the outline glyph.
func CellGlyph(v float64, boundary bool) (rune, tcell.Style) {
	switch {
	case v > 0:
		return GlyphItem, styleItem
	case v < 0 && int(-v)%2 == 1:
		return GlyphRobotOnItem, styleRobot
	case v < 0:
		return GlyphRobot, styleRobot
	case boundary:
		return GlyphBoundary, styleBoundary
	default:
		return GlyphEmpty, styleEmpty
	}
}

// boundaryCells collects the cells on the edge of any domain.
func boundaryCells(domains []sim.Domain) map[sim.Cell]bool {
	cells := make(map[sim.Cell]bool)
	for _, d := range domains {
		for c := d.ColMin; c <= d.ColMax; c++ {
			cells[sim.Cell{Row: d.RowMin, Col: c}] = true
			cells[sim.Cell{Row: d.RowMax, Col: c}] = true
		}
		for r := d.RowMin; r <= d.RowMax; r++ {
			cells[sim.Cell{Row: r, Col: d.ColMin}] = true
			cells[sim.Cell{Row: r, Col: d.ColMax}] = true
		}
	}
	return cells
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range text {
		s.SetContent(x+i, y, ch, nil, style)
	}
}
