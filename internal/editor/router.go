package editor

import (
	"golang.org/x/net/html"

	"github.com/standardbeagle/pagedit/internal/overlay"
)

// Action is what a click resolves to.
type Action int

const (
	ActionNone Action = iota
	ActionEditText
	ActionPickImage
	ActionSelectContainer
)

func (a Action) String() string {
	switch a {
	case ActionEditText:
		return "edit-text"
	case ActionPickImage:
		return "pick-image"
	case ActionSelectContainer:
		return "select-container"
	default:
		return "none"
	}
}

// Route classifies a click on target in mode. Clicks only act while
// Inspecting; editor elements never act.
func Route(mode Mode, target *html.Node) Action {
	if mode != Inspecting || target == nil {
		return ActionNone
	}
	switch overlay.Classify(target) {
	case overlay.CategoryEditableText:
		if isEditable(target) {
			return ActionNone
		}
		return ActionEditText
	case overlay.CategoryImage:
		return ActionPickImage
	case overlay.CategoryContainer:
		return ActionSelectContainer
	}
	return ActionNone
}

// HandleClick routes a click and runs the resulting transition.
func (e *Editor) HandleClick(target *html.Node) {
	action := Route(e.mode, target)
	e.tracef("click %s -> %s", describe(target), action)

	switch action {
	case ActionEditText:
		e.EnterTextEditing(target)
	case ActionPickImage:
		e.pickImage(target)
	case ActionSelectContainer:
		e.EnterDivEditing(target)
	}
}

func describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	return overlay.Describe(n)
}
