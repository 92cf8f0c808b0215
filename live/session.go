package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dropzone/metrics"
	"dropzone/widget"
)

const maxMessageSize = 64 * 1024

type Config struct {
	Policy       widget.Policy
	Metrics      *metrics.Metrics
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Policy:       widget.DefaultPolicy(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		PingInterval: 25 * time.Second,
	}
}

// Session is one page view: a websocket connection driving a single
// widget.Controller. It is both the controller's View and its EventSource.
type Session struct {
	id         string
	cfg        Config
	conn       *websocket.Conn
	log        *slog.Logger
	controller *widget.Controller
	handlers   map[widget.EventKind]widget.HandlerFunc
	pending    []Command

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func newSession(conn *websocket.Conn, cfg Config) *Session {
	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		conn:     conn,
		handlers: make(map[widget.EventKind]widget.HandlerFunc),
		done:     make(chan struct{}),
	}
	s.log = slog.Default().With("session_id", s.id)

	opts := []widget.Option{
		widget.WithPolicy(cfg.Policy),
		widget.WithLogger(s.log),
	}
	if m := cfg.Metrics; m != nil {
		opts = append(opts,
			widget.OnAccept(func(widget.File) { m.Selections.WithLabelValues(metrics.Result(nil)).Inc() }),
			widget.OnReject(func(_ widget.File, err error) { m.Selections.WithLabelValues(metrics.Result(err)).Inc() }),
			widget.OnSubmit(func(err error) { m.Submissions.WithLabelValues(metrics.Result(err)).Inc() }),
		)
	}

	s.controller = widget.New(s, opts...)
	s.controller.Bind(s)
	return s
}

func (s *Session) On(kind widget.EventKind, h widget.HandlerFunc) {
	s.handlers[kind] = h
}

func (s *Session) SetClass(class string, on bool) {
	s.pending = append(s.pending, Command{Op: OpClass, Class: class, On: on})
}

func (s *Session) ShowPreview(p widget.Preview) {
	s.pending = append(s.pending, Command{Op: OpPreview, Preview: &p})
}

func (s *Session) ShowPrompt() {
	s.pending = append(s.pending, Command{Op: OpPrompt})
}

func (s *Session) SetInputFiles(files []widget.File) {
	s.pending = append(s.pending, Command{Op: OpInput, Files: files})
}

func (s *Session) SetSubmit(state widget.SubmitState) {
	s.pending = append(s.pending, Command{Op: OpSubmit, Submit: state})
}

func (s *Session) Alert(message string) {
	s.pending = append(s.pending, Command{Op: OpAlert, Message: message})
}

// Dispatch runs the handler for msg and collects the resulting commands.
func (s *Session) Dispatch(msg ClientMessage) Reply {
	reply := Reply{Seq: msg.Seq, Commands: []Command{}}

	h, ok := s.handlers[msg.Type]
	if !ok {
		s.log.Warn("unknown event type", "type", msg.Type, "seq", msg.Seq)
		return reply
	}

	ev := &widget.Event{
		Kind:          msg.Type,
		Files:         msg.Files,
		RelatedInside: msg.Inside,
	}
	h(ev)

	reply.Prevent = ev.DefaultPrevented()
	if len(s.pending) > 0 {
		reply.Commands = s.pending
		s.pending = nil
	}
	return reply
}

// Run reads events until the connection closes or ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	defer s.close()

	if m := s.cfg.Metrics; m != nil {
		m.LiveSessions.Inc()
		defer m.LiveSessions.Dec()
	}

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	go s.keepAlive(ctx)

	s.log.Debug("live session started")
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Error("read error", "error", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("malformed client message", "error", err)
			continue
		}

		if err := s.write(s.Dispatch(msg)); err != nil {
			s.log.Error("write error", "error", err)
			return
		}
	}
}

func (s *Session) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.log.Debug("ping failed", "error", err)
				_ = s.conn.Close()
				return
			}
		}
	}
}

func (s *Session) write(reply Reply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// close tears down the page view. The read loop is its only caller, so the
// controller is never touched from two goroutines.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.controller.Close()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.log.Debug("live session closed")
	})
}

// Handler upgrades requests to websocket live sessions. Sessions end when
// ctx is cancelled.
func Handler(ctx context.Context, cfg Config) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}
		newSession(conn, cfg).Run(ctx)
	}
}
