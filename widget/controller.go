package widget

import (
	"errors"
	"log/slog"
)

// State is the drop zone's visual state.
type State string

const (
	StateIdle       State = "idle"
	StateSelected   State = "selected"
	StateSubmitting State = "submitting"
)

type Option func(*Controller)

func WithPolicy(p Policy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// OnReject is called for every candidate that fails a gate.
func OnReject(fn func(f File, err error)) Option {
	return func(c *Controller) {
		c.onReject = fn
	}
}

// OnAccept is called for every candidate that becomes the selection.
func OnAccept(fn func(f File)) Option {
	return func(c *Controller) {
		c.onAccept = fn
	}
}

// OnSubmit is called once for every submit attempt with its outcome.
func OnSubmit(fn func(err error)) Option {
	return func(c *Controller) {
		c.onSubmit = fn
	}
}

// Controller owns the single selected file of one page view and keeps the
// View in sync with it. It is not safe for concurrent use; an EventSource
// must deliver events one at a time.
type Controller struct {
	view     View
	policy   Policy
	log      *slog.Logger
	onReject func(File, error)
	onAccept func(File)
	onSubmit func(error)

	state    State
	selected *File
	closed   bool
}

func New(view View, opts ...Option) *Controller {
	c := &Controller{
		view:   view,
		policy: DefaultPolicy(),
		log:    slog.Default(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind registers the controller's handlers on src.
func (c *Controller) Bind(src EventSource) {
	src.On(EventDragOver, c.OnDragOver)
	src.On(EventDragLeave, c.OnDragLeave)
	src.On(EventDrop, c.OnDrop)
	src.On(EventChange, c.OnFilePick)
	src.On(EventSubmit, c.OnSubmit)
	src.On(EventClear, func(*Event) { c.Clear() })
}

// Close ends the page view. Later events are ignored.
func (c *Controller) Close() {
	c.closed = true
	c.selected = nil
}

func (c *Controller) State() State {
	return c.state
}

// Selected returns the current selection, if any.
func (c *Controller) Selected() (File, bool) {
	if c.selected == nil {
		return File{}, false
	}
	return *c.selected, true
}

func (c *Controller) inactive() bool {
	return c.closed || c.state == StateSubmitting
}

func (c *Controller) OnDragOver(ev *Event) {
	if c.inactive() {
		return
	}
	ev.PreventDefault()
	c.view.SetClass(ClassDragOver, true)
}

func (c *Controller) OnDragLeave(ev *Event) {
	if c.inactive() {
		return
	}
	ev.PreventDefault()
	if !ev.RelatedInside {
		c.view.SetClass(ClassDragOver, false)
	}
}

// OnDrop selects the first dropped file. Any further files are ignored.
func (c *Controller) OnDrop(ev *Event) {
	if c.inactive() {
		return
	}
	ev.PreventDefault()
	c.view.SetClass(ClassDragOver, false)

	if len(ev.Files) > 0 {
		if len(ev.Files) > 1 {
			c.log.Debug("ignoring extra dropped files", "dropped", len(ev.Files))
		}
		c.handleSelection(ev.Files[0])
	}
}

func (c *Controller) OnFilePick(ev *Event) {
	if c.inactive() {
		return
	}
	if len(ev.Files) > 0 {
		c.handleSelection(ev.Files[0])
	}
}

// OnSubmit blocks submission without a selection. Otherwise it lets the
// submission through and locks the submit control in the processing state.
func (c *Controller) OnSubmit(ev *Event) {
	if c.inactive() {
		ev.PreventDefault()
		return
	}

	if c.selected == nil {
		ev.PreventDefault()
		c.view.Alert(ErrNoFileSelected.Error())
		c.reportSubmit(ErrNoFileSelected)
		return
	}

	c.state = StateSubmitting
	c.view.SetSubmit(SubmitProcessing)
	c.log.Info("submitting selection", "name", c.selected.Name, "size", c.selected.Size)
	c.reportSubmit(nil)
}

// Clear drops the selection and restores the idle prompt.
func (c *Controller) Clear() {
	if c.inactive() {
		return
	}

	c.selected = nil
	c.state = StateIdle
	c.view.SetInputFiles(nil)
	c.view.ShowPrompt()
	c.view.SetClass(ClassFileSelected, false)
	c.view.SetSubmit(SubmitDisabled)
}

func (c *Controller) handleSelection(f File) {
	if err := c.policy.Validate(f); err != nil {
		if errors.Is(err, ErrMalformedFile) {
			c.log.Warn("malformed candidate", "name", f.Name, "type", f.Type, "size", f.Size, "error", err)
		} else {
			c.log.Info("file rejected", "name", f.Name, "type", f.Type, "size", f.Size, "error", err)
		}
		c.view.Alert(c.policy.Message(err))
		if c.onReject != nil {
			c.onReject(f, err)
		}
		return
	}

	c.selected = &f
	c.state = StateSelected
	c.view.SetInputFiles([]File{f})
	c.renderPreview(f)
	c.view.SetSubmit(SubmitEnabled)
	if c.onAccept != nil {
		c.onAccept(f)
	}
}

func (c *Controller) renderPreview(f File) {
	icon := IconImage
	if f.IsPDF() {
		icon = IconPDF
	}

	c.view.ShowPreview(Preview{
		Name: f.Name,
		Size: FormatSize(f.Size),
		Icon: icon,
	})
	c.view.SetClass(ClassFileSelected, true)
}

func (c *Controller) reportSubmit(err error) {
	if c.onSubmit != nil {
		c.onSubmit(err)
	}
}
