// Package chrome models the draggable window frame of the embedded form
// presentation: a three-state mode machine with viewport-aware clamping.
package chrome

// Mode is the presentation mode of the embedded dialog.
type Mode string

const (
	ModeNormal     Mode = "NORMAL"
	ModeFullscreen Mode = "FULLSCREEN"
	ModeMinimized  Mode = "MINIMIZED"
)

// Layout constants, in CSS pixels of the hosting surface.
const (
	// NormalMinY permits dragging slightly above the viewport top.
	NormalMinY = -160.0
	// MinimizedMinY keeps a minimized dialog reachable below the top chrome.
	MinimizedMinY = 64.0
	// MinimizedSnapY is where a minimized dialog docks when it kept its X.
	MinimizedSnapY = 70.0

	DialogWidth     = 900.0
	DialogHeight    = 600.0
	MinimizedWidth  = 380.0
	MinimizedHeight = 48.0
)

// Point is a position on the hosting surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// State is the chrome state machine. The mode enum plus restore target make
// the illegal flag combinations of a boolean encoding unrepresentable.
type State struct {
	mode          Mode
	restoreTarget Mode
	position      Point
	viewport      Size
	dragging      bool
	dragOffset    Point
}

// New returns a dialog in normal mode at the default position.
func New(viewport Size) State {
	return State{
		mode:          ModeNormal,
		restoreTarget: ModeNormal,
		position:      Point{X: 50, Y: 64},
		viewport:      viewport,
	}
}

// Mode reports the current presentation mode.
func (s *State) Mode() Mode { return s.mode }

// Position reports the dialog origin. Meaningless while fullscreen.
func (s *State) Position() Point { return s.position }

// Dragging reports whether a drag is in progress.
func (s *State) Dragging() bool { return s.dragging }

// SetViewport records the hosting surface size used for centering.
func (s *State) SetViewport(v Size) {
	if v.Width > 0 && v.Height > 0 {
		s.viewport = v
	}
}

// Size returns the rendered dialog size for the current mode.
func (s *State) Size() Size {
	switch s.mode {
	case ModeFullscreen:
		return s.viewport
	case ModeMinimized:
		return Size{Width: MinimizedWidth, Height: MinimizedHeight}
	default:
		return Size{Width: DialogWidth, Height: DialogHeight}
	}
}

func (s *State) minY() float64 {
	if s.mode == ModeMinimized {
		return MinimizedMinY
	}
	return NormalMinY
}

// BeginDrag starts a drag from a pointer-down inside the header region.
// Callers exclude pointer-downs on interactive header controls. Fullscreen
// dialogs have no position and cannot be dragged.
func (s *State) BeginDrag(pointer Point) {
	if s.mode == ModeFullscreen {
		return
	}
	s.dragging = true
	s.dragOffset = Point{X: pointer.X - s.position.X, Y: pointer.Y - s.position.Y}
}

// Drag moves the dialog with the pointer, clamping the vertical position to
// the minimum of the current mode.
func (s *State) Drag(pointer Point) {
	if !s.dragging {
		return
	}
	s.position.X = pointer.X - s.dragOffset.X
	s.position.Y = max(s.minY(), pointer.Y-s.dragOffset.Y)
}

// EndDrag finishes an in-progress drag.
func (s *State) EndDrag() {
	s.dragging = false
}

// Minimize collapses the dialog, remembering the mode to restore to. Coming
// from fullscreen it centers on the viewport; coming from normal it keeps X
// and snaps just below the top chrome.
func (s *State) Minimize() {
	if s.mode == ModeMinimized {
		return
	}
	s.restoreTarget = s.mode
	if s.mode == ModeFullscreen {
		s.position = Point{
			X: max(50, (s.viewport.Width-MinimizedWidth)/2),
			Y: max(MinimizedSnapY, (s.viewport.Height-MinimizedHeight)/2),
		}
	} else {
		s.position.Y = MinimizedSnapY
	}
	s.mode = ModeMinimized
}

// Restore returns a minimized dialog to its restore target, re-clamping the
// vertical position when the target is normal mode.
func (s *State) Restore() {
	if s.mode != ModeMinimized {
		return
	}
	if s.restoreTarget == ModeFullscreen {
		s.mode = ModeFullscreen
		return
	}
	s.position.Y = max(NormalMinY, s.position.Y)
	s.mode = ModeNormal
}

// ToggleMinimize minimizes or restores depending on the current mode.
func (s *State) ToggleMinimize() {
	if s.mode == ModeMinimized {
		s.Restore()
		return
	}
	s.Minimize()
}

// ToggleFullscreen clears a minimized state first, then flips between normal
// and fullscreen.
func (s *State) ToggleFullscreen() {
	switch s.mode {
	case ModeMinimized:
		s.mode = ModeFullscreen
	case ModeFullscreen:
		s.mode = ModeNormal
	default:
		s.mode = ModeFullscreen
	}
	s.restoreTarget = ModeNormal
}

// Frame is the serializable view of the chrome state.
type Frame struct {
	Mode     Mode  `json:"mode"`
	Position Point `json:"position"`
	Size     Size  `json:"size"`
}

// Frame returns the current frame for rendering.
func (s *State) Frame() Frame {
	return Frame{Mode: s.mode, Position: s.position, Size: s.Size()}
}
