package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/gorilla/websocket"
)

// StreamEvent is one update on the event stream. The first event of a
// stream carries a full diff; later ones only the elements that changed.
type StreamEvent struct {
	Type  string            `json:"type"`
	State domain.RunState   `json:"state"`
	Stats domain.Stats      `json:"stats"`
	Label string            `json:"label,omitempty"`
	Diff  *domain.FrameDiff `json:"diff,omitempty"`
	Frame *domain.Frame     `json:"frame,omitempty"`
	Error string            `json:"error,omitempty"`
}

// differ turns updates into stream events, tracking the last frame sent.
type differ struct {
	prev *domain.Frame
	full bool
}

func (d *differ) event(typ string, u runner.Update) StreamEvent {
	ev := StreamEvent{Type: typ, State: u.State, Stats: u.Stats, Label: u.Label}
	if u.Frame == nil {
		return ev
	}
	if d.full {
		ev.Frame = u.Frame
	} else if diff := domain.DiffFrames(d.prev, u.Frame); !diff.Empty() {
		ev.Diff = diff
	}
	d.prev = u.Frame
	return ev
}

func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, fmt.Errorf("streaming not supported"))
		return
	}
	full, _ := strconv.ParseBool(r.URL.Query().Get("full"))

	sub := ws.Runner().Subscribe(runner.DefaultSubscriptionBuffer)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	s.logger.Info("sse subscribed", "workspace_id", ws.ID)

	d := &differ{full: full}
	send := func(ev StreamEvent) bool {
		data, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("sse encode failed", "err", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(d.event("snapshot", snapshot(ws))) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "workspace_id", ws.ID)
			return
		case u := <-sub.C:
			if !send(d.event("update", u)) {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 64 * 1024,
}

// SocketMessage is a client request on the websocket. Command is a runner
// command name, "start" (Kind, Params), "play" (Cell) or "edit" (Edit).
type SocketMessage struct {
	Command string         `json:"command"`
	Speed   int            `json:"speed_ms,omitempty"`
	Kind    domain.Kind    `json:"kind,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Cell    int            `json:"cell,omitempty"`
	Edit    *session.Edit  `json:"edit,omitempty"`
}

// socket serializes writes to one websocket connection.
type socket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *socket) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade the websocket", "err", err)
		return
	}
	defer conn.Close()
	sock := &socket{conn: conn}
	s.logger.Info("websocket client connected", "workspace_id", ws.ID)

	sub := ws.Runner().Subscribe(runner.DefaultSubscriptionBuffer)
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	d := &differ{}
	if err := sock.send(d.event("snapshot", snapshot(ws))); err != nil {
		return
	}
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-sub.C:
				if err := sock.send(d.event("update", u)); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg SocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.logger.Info("websocket client disconnected", "workspace_id", ws.ID, "err", err)
			return
		}
		if err := s.handleSocket(ctx, ws, msg); err != nil {
			ev := StreamEvent{Type: "error", State: ws.Runner().State(), Error: err.Error()}
			if sock.send(ev) != nil {
				return
			}
		}
	}
}

func (s *Server) handleSocket(ctx context.Context, ws *session.Workspace, msg SocketMessage) error {
	switch msg.Command {
	case "start":
		_, err := s.Manager.Start(ctx, ws.ID, msg.Kind, msg.Params)
		return err
	case "play":
		_, err := s.Manager.Play(ctx, ws.ID, msg.Cell)
		return err
	case "edit":
		if msg.Edit == nil {
			return fmt.Errorf("%w: edit command without an edit", domain.ErrInvalidParams)
		}
		_, err := s.Manager.Edit(ctx, ws.ID, *msg.Edit)
		return err
	default:
		cmd := runner.Command{Name: msg.Command, Speed: msg.Speed}
		if err := s.validate.Struct(cmd); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
		}
		return runner.Dispatch(ctx, ws.Runner(), cmd)
	}
}
