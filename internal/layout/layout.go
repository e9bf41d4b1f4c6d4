// Package layout holds the widths of the three messaging panes and the
// splitter drag state machine that redistributes them.
//
// Widths are integer hundredths of a percent so they always sum to exactly
// Whole.
package layout

import "fmt"

// Share is a width in hundredths of a percent.
type Share int

// Whole is 100%.
const Whole Share = 10000

// Percent renders s as a percentage.
func (s Share) Percent() float64 { return float64(s) / 100 }

func (s Share) String() string { return fmt.Sprintf("%.2f%%", s.Percent()) }

// Pane indexes the three columns left to right.
type Pane int

const (
	PaneHistory Pane = iota
	PaneComposer
	PaneAssistant
)

func (p Pane) String() string {
	switch p {
	case PaneHistory:
		return "history"
	case PaneComposer:
		return "composer"
	case PaneAssistant:
		return "assistant"
	}
	return "unknown"
}

// Splitter is the divider being dragged.
type Splitter int

const (
	SplitterNone Splitter = iota
	// SplitterLeft sits between history and composer.
	SplitterLeft
	// SplitterRight sits between composer and assistant.
	SplitterRight
)

func (s Splitter) String() string {
	switch s {
	case SplitterLeft:
		return "left"
	case SplitterRight:
		return "right"
	}
	return "none"
}

// panes returns the two columns a splitter redistributes.
func (s Splitter) panes() (Pane, Pane, bool) {
	switch s {
	case SplitterLeft:
		return PaneHistory, PaneComposer, true
	case SplitterRight:
		return PaneComposer, PaneAssistant, true
	}
	return 0, 0, false
}

// Bounds is the allowed range of one pane.
type Bounds struct {
	Min, Max Share
}

// PaneBounds are the clamp ranges, indexed by Pane.
var PaneBounds = [3]Bounds{
	PaneHistory:   {Min: 1500, Max: 5000},
	PaneComposer:  {Min: 2000, Max: 6000},
	PaneAssistant: {Min: 1500, Max: 5000},
}

// Widths are the three pane widths, indexed by Pane.
type Widths [3]Share

// DefaultWidths is the initial 25/45/30 split.
func DefaultWidths() Widths {
	return Widths{2500, 4500, 3000}
}

func (w Widths) Sum() Share { return w[0] + w[1] + w[2] }

// Valid reports whether w sums to Whole and every pane is within bounds.
func (w Widths) Valid() bool {
	if w.Sum() != Whole {
		return false
	}
	for p, b := range PaneBounds {
		if w[p] < b.Min || w[p] > b.Max {
			return false
		}
	}
	return true
}

// shift moves delta from pane b to pane a, reduced as needed so both stay
// within bounds. The third pane keeps its width, so the sum is unchanged.
func (w Widths) shift(a, b Pane, delta Share) Widths {
	lo := max(PaneBounds[a].Min-w[a], w[b]-PaneBounds[b].Max)
	hi := min(PaneBounds[a].Max-w[a], w[b]-PaneBounds[b].Min)
	if lo > hi {
		return w
	}
	delta = min(max(delta, lo), hi)
	w[a] += delta
	w[b] -= delta
	third := PaneAssistant
	if a != PaneHistory && b != PaneHistory {
		third = PaneHistory
	}
	w[third] = Whole - w[a] - w[b]
	return w
}

// Columns converts w to terminal columns summing exactly to total.
func (w Widths) Columns(total int) [3]int {
	if total <= 0 {
		return [3]int{}
	}
	left := total * int(w[0]) / int(Whole)
	mid := total*int(w[0]+w[1])/int(Whole) - left
	return [3]int{left, mid, total - left - mid}
}

// HitTest returns the splitter under column x for a container total columns
// wide. A splitter covers the border cell on each side of the boundary.
func (w Widths) HitTest(x, total int) Splitter {
	cols := w.Columns(total)
	first := cols[0]
	second := cols[0] + cols[1]
	switch {
	case x == first-1 || x == first:
		return SplitterLeft
	case x == second-1 || x == second:
		return SplitterRight
	}
	return SplitterNone
}

// Controller is the idle/dragging state machine. While dragging it holds
// the pointer capture; OnAttach and OnDetach fire on entering and leaving
// that state, and nowhere else.
type Controller struct {
	OnAttach func(Splitter)
	OnDetach func(Splitter)

	widths   Widths
	dragging Splitter
	startX   int
	width    int
	snapshot Widths
}

// NewController starts idle with w, or DefaultWidths if w is invalid.
func NewController(w Widths) *Controller {
	if !w.Valid() {
		w = DefaultWidths()
	}
	return &Controller{widths: w}
}

// Begin enters dragging for s at pointer column x within a container
// containerWidth columns wide. It reports whether a drag started.
func (c *Controller) Begin(s Splitter, x, containerWidth int) bool {
	if c.dragging != SplitterNone || containerWidth <= 0 {
		return false
	}
	if _, _, ok := s.panes(); !ok {
		return false
	}
	c.dragging = s
	c.startX = x
	c.width = containerWidth
	c.snapshot = c.widths
	if c.OnAttach != nil {
		c.OnAttach(s)
	}
	return true
}

// Move redistributes the dragged splitter's two panes from the snapshot
// taken at Begin. It reports whether the widths changed.
func (c *Controller) Move(x int) bool {
	a, b, ok := c.dragging.panes()
	if !ok {
		return false
	}
	delta := Share((x - c.startX) * int(Whole) / c.width)
	next := c.snapshot.shift(a, b, delta)
	if next == c.widths {
		return false
	}
	c.widths = next
	return true
}

// End leaves dragging. Calling it while idle does nothing.
func (c *Controller) End() {
	s := c.dragging
	if s == SplitterNone {
		return
	}
	c.dragging = SplitterNone
	if c.OnDetach != nil {
		c.OnDetach(s)
	}
}

// Nudge moves splitter s by delta without a drag, e.g. from the keyboard.
// It is ignored while dragging.
func (c *Controller) Nudge(s Splitter, delta Share) bool {
	a, b, ok := s.panes()
	if !ok || c.dragging != SplitterNone {
		return false
	}
	next := c.widths.shift(a, b, delta)
	changed := next != c.widths
	c.widths = next
	return changed
}

// Reset restores the default split and abandons any drag.
func (c *Controller) Reset() {
	c.End()
	c.widths = DefaultWidths()
}

func (c *Controller) Widths() Widths     { return c.widths }
func (c *Controller) Dragging() Splitter { return c.dragging }
