package live

import "dropzone/widget"

// ClientMessage is one DOM event forwarded by the page script.
type ClientMessage struct {
	Seq    uint64           `json:"seq"`
	Type   widget.EventKind `json:"type"`
	Files  []widget.File    `json:"files,omitempty"`
	Inside bool             `json:"inside,omitempty"`
}

// Command ops applied by the page script, in order.
const (
	OpClass   = "class"
	OpPreview = "preview"
	OpPrompt  = "prompt"
	OpInput   = "input"
	OpSubmit  = "submit"
	OpAlert   = "alert"
)

type Command struct {
	Op      string             `json:"op"`
	Class   string             `json:"class,omitempty"`
	On      bool               `json:"on,omitempty"`
	Preview *widget.Preview    `json:"preview,omitempty"`
	Files   []widget.File      `json:"files,omitempty"`
	Submit  widget.SubmitState `json:"submit,omitempty"`
	Message string             `json:"message,omitempty"`
}

// Reply answers a ClientMessage with the same Seq. Prevent tells the script
// whether the default browser action must be cancelled.
type Reply struct {
	Seq      uint64    `json:"seq"`
	Prevent  bool      `json:"prevent"`
	Commands []Command `json:"commands"`
}
