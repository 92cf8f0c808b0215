package widget

// Drop zone classes toggled by the controller.
const (
	ClassDragOver     = "drag-over"
	ClassFileSelected = "file-selected"
)

type Icon string

const (
	IconPDF   Icon = "pdf"
	IconImage Icon = "image"
)

type SubmitState string

const (
	SubmitEnabled    SubmitState = "enabled"
	SubmitDisabled   SubmitState = "disabled"
	SubmitProcessing SubmitState = "processing"
)

// Preview is what the drop zone shows in place of the idle prompt.
type Preview struct {
	Name string `json:"name"`
	Size string `json:"size"`
	Icon Icon   `json:"icon"`
}

// View is the rendering surface the controller mutates.
type View interface {
	// SetClass toggles a class on the drop zone.
	SetClass(class string, on bool)
	// ShowPreview replaces the idle prompt with p.
	ShowPreview(p Preview)
	// ShowPrompt restores the idle prompt.
	ShowPrompt()
	// SetInputFiles sets the native file input contents. Nil resets it.
	SetInputFiles(files []File)
	SetSubmit(state SubmitState)
	Alert(message string)
}

type EventKind string

const (
	EventDragOver  EventKind = "dragover"
	EventDragLeave EventKind = "dragleave"
	EventDrop      EventKind = "drop"
	EventChange    EventKind = "change"
	EventSubmit    EventKind = "submit"
	EventClear     EventKind = "clear"
)

// Event is a UI event delivered by an EventSource.
type Event struct {
	Kind  EventKind
	Files []File
	// RelatedInside reports, for dragleave, whether the pointer moved to a
	// node still inside the drop zone.
	RelatedInside bool

	prevented bool
}

func (e *Event) PreventDefault() {
	e.prevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

type HandlerFunc func(ev *Event)

// EventSource delivers UI events to registered handlers, one at a time.
type EventSource interface {
	On(kind EventKind, h HandlerFunc)
}
