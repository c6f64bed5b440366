// Package server exposes a viewer to remote clients over a websocket:
// clients send input events and receive the camera state after each frame.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"volumeviewer/core"
)

const (
	// EventBuffer is how many remote events may wait for the render thread.
	EventBuffer = 64
	clientQueue = 8
)

// State is the message broadcast after every drawn frame.
type State struct {
	Frame uint64 `json:"frame"`
	Mode  string `json:"mode"`
	core.CameraState
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server accepts websocket clients on /ws and serves the last state on
// /state. It never touches viewer state: input is handed to the render
// thread through Events and the wake function.
type Server struct {
	events   chan core.InputEvent
	wake     func()
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte

	httpServer *http.Server
	closing    chan struct{}
	closeOnce  sync.Once
}

// New creates a server. wake is called after each queued event so a host
// blocked waiting for window events notices it; it may be nil.
func New(wake func()) *Server {
	if wake == nil {
		wake = func() {}
	}
	return &Server{
		events: make(chan core.InputEvent, EventBuffer),
		wake:   wake,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, any page may drive it
			},
		},
		clients: make(map[*client]struct{}),
		closing: make(chan struct{}),
	}
}

// Events is drained by the render thread and applied with Viewer.Apply.
func (s *Server) Events() <-chan core.InputEvent {
	return s.events
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/state", s.handleState)
	return mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.httpServer = &http.Server{Handler: s.Handler()}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.Logger().Error("server stopped", "err", err)
		}
	}()
	core.Logger().Info("remote input server listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Shutdown stops accepting requests and disconnects every client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()
	return err
}

// Publish broadcasts the state of a drawn frame. It is called on the
// render thread and never blocks: clients whose queue is full miss the
// message.
func (s *Server) Publish(st core.FrameState) {
	msg, err := json.Marshal(State{Frame: st.Frame, Mode: st.Mode.String(), CameraState: st.Camera})
	if err != nil {
		core.Logger().Error("encode state", "err", err)
		return
	}
	s.mu.Lock()
	s.last = msg
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			core.Logger().Debug("slow client, state dropped", "remote", c.conn.RemoteAddr().String())
		}
	}
	s.mu.Unlock()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last == nil {
		http.Error(w, "no frame drawn yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(last)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.Logger().Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientQueue)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.last != nil {
		c.send <- s.last
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go s.writeLoop(c, done)

	s.readLoop(c)

	s.mu.Lock()
	delete(s.clients, c)
	close(c.send)
	s.mu.Unlock()
	<-done
	conn.Close()
}

func (s *Server) readLoop(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				core.Logger().Warn("websocket read failed", "err", err)
			}
			return
		}
		var ev core.InputEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			core.Logger().Warn("malformed input event", "err", err)
			continue
		}
		if !s.enqueue(ev) {
			return
		}
	}
}

// droppable reports whether ev may be lost under load. Button and reset
// events change the drag state, so losing one would leave the camera
// orbiting on later moves.
func droppable(ev core.InputEvent) bool {
	return ev.Type == core.EventPointerMove || ev.Type == core.EventWheel
}

// enqueue hands ev to the render thread. Moves and wheel steps are dropped
// when the queue is full; other events wait for room. It returns false once
// the server is shutting down.
func (s *Server) enqueue(ev core.InputEvent) bool {
	if droppable(ev) {
		select {
		case s.events <- ev:
			s.wake()
		default:
			core.Logger().Warn("input queue full, event dropped", "type", ev.Type)
		}
		return true
	}
	select {
	case s.events <- ev:
		s.wake()
		return true
	case <-s.closing:
		return false
	}
}

func (s *Server) writeLoop(c *client, done chan<- struct{}) {
	defer close(done)
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// Unblock the read loop; remaining messages are discarded.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}
