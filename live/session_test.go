package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropzone/metrics"
	"dropzone/widget"
)

var scan = widget.File{Name: "scan.png", Size: 1536, Type: "image/png"}

func TestSession_DispatchDrop(t *testing.T) {
	s := newSession(nil, DefaultConfig())

	reply := s.Dispatch(ClientMessage{Seq: 7, Type: widget.EventDrop, Files: []widget.File{scan}})

	assert.Equal(t, uint64(7), reply.Seq)
	assert.True(t, reply.Prevent)
	assert.Equal(t, []Command{
		{Op: OpClass, Class: widget.ClassDragOver, On: false},
		{Op: OpInput, Files: []widget.File{scan}},
		{Op: OpPreview, Preview: &widget.Preview{Name: "scan.png", Size: "1.5 KB", Icon: widget.IconImage}},
		{Op: OpClass, Class: widget.ClassFileSelected, On: true},
		{Op: OpSubmit, Submit: widget.SubmitEnabled},
	}, reply.Commands)
}

func TestSession_DispatchSubmitFlow(t *testing.T) {
	s := newSession(nil, DefaultConfig())

	blocked := s.Dispatch(ClientMessage{Seq: 1, Type: widget.EventSubmit})
	assert.True(t, blocked.Prevent)
	assert.Equal(t, []Command{{Op: OpAlert, Message: widget.ErrNoFileSelected.Error()}}, blocked.Commands)

	s.Dispatch(ClientMessage{Seq: 2, Type: widget.EventChange, Files: []widget.File{scan}})

	allowed := s.Dispatch(ClientMessage{Seq: 3, Type: widget.EventSubmit})
	assert.False(t, allowed.Prevent)
	assert.Equal(t, []Command{{Op: OpSubmit, Submit: widget.SubmitProcessing}}, allowed.Commands)
}

func TestSession_DispatchUnknownType(t *testing.T) {
	s := newSession(nil, DefaultConfig())

	reply := s.Dispatch(ClientMessage{Seq: 4, Type: "paste"})

	assert.Equal(t, uint64(4), reply.Seq)
	assert.False(t, reply.Prevent)
	assert.Empty(t, reply.Commands)
}

func TestSession_MetricsHooks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics = metrics.New(prometheus.NewRegistry())
	s := newSession(nil, cfg)

	s.Dispatch(ClientMessage{Type: widget.EventDrop, Files: []widget.File{{Name: "a.gif", Type: "image/gif"}}})
	s.Dispatch(ClientMessage{Type: widget.EventDrop, Files: []widget.File{scan}})
	s.Dispatch(ClientMessage{Type: widget.EventSubmit})

	assert.Equal(t, 1.0, testutil.ToFloat64(cfg.Metrics.Selections.WithLabelValues("invalid_type")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cfg.Metrics.Selections.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cfg.Metrics.Submissions.WithLabelValues("accepted")))
}

func dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(Handler(ctx, DefaultConfig()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg ClientMessage) Reply {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var reply Reply
	require.NoError(t, json.Unmarshal(raw, &reply))
	return reply
}

func TestHandler_WebsocketSession(t *testing.T) {
	conn := dial(t, context.Background())

	over := roundTrip(t, conn, ClientMessage{Seq: 1, Type: widget.EventDragOver})
	assert.True(t, over.Prevent)
	assert.Equal(t, []Command{{Op: OpClass, Class: widget.ClassDragOver, On: true}}, over.Commands)

	tooBig := widget.File{Name: "big.pdf", Size: widget.MaxFileSize + 1, Type: "application/pdf"}
	rejected := roundTrip(t, conn, ClientMessage{Seq: 2, Type: widget.EventDrop, Files: []widget.File{tooBig}})
	assert.Equal(t, uint64(2), rejected.Seq)
	assert.Contains(t, rejected.Commands, Command{Op: OpAlert, Message: widget.ErrFileTooLarge.Error()})

	cleared := roundTrip(t, conn, ClientMessage{Seq: 3, Type: widget.EventClear})
	assert.Contains(t, cleared.Commands, Command{Op: OpSubmit, Submit: widget.SubmitDisabled})
	assert.Contains(t, cleared.Commands, Command{Op: OpInput})
}

func TestHandler_MalformedMessageIsSkipped(t *testing.T) {
	conn := dial(t, context.Background())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	reply := roundTrip(t, conn, ClientMessage{Seq: 9, Type: widget.EventSubmit})
	assert.Equal(t, uint64(9), reply.Seq)
	assert.True(t, reply.Prevent)
}

func TestHandler_ContextCancelClosesSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := dial(t, ctx)

	roundTrip(t, conn, ClientMessage{Seq: 1, Type: widget.EventDragOver})
	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
