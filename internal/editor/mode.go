package editor

// Mode is the active interaction mode. Exactly one is active at a time.
type Mode int

const (
	Normal Mode = iota
	Inspecting
	TextEditing
	DivEditing
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Inspecting:
		return "inspecting"
	case TextEditing:
		return "text-editing"
	case DivEditing:
		return "div-editing"
	default:
		return "unknown"
	}
}

// Wire values of the host's switch-mode message.
const (
	WireNormal     = 0
	WireEdit       = 1
	WireInspecting = 2
)

// ModeFromWire maps a switch-mode value to the mode to enter. The edit value
// lands in Inspecting, from which every editing mode is reached by clicking.
func ModeFromWire(v int) (Mode, bool) {
	switch v {
	case WireNormal:
		return Normal, true
	case WireEdit, WireInspecting:
		return Inspecting, true
	}
	return Normal, false
}
