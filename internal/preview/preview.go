// Package preview streams the state of an emulated chain to WebSocket
// clients, so the demo can be watched without hardware.
package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/flavioheleno/ledcontrol/sim"
)

// Frame is one message sent to clients.
type Frame struct {
	ID      uint64       `json:"id"`
	Devices []sim.Device `json:"devices"`
}

// writeWait bounds every write to a client.
const writeWait = 200 * time.Millisecond

// Server fans latched chain states out to WebSocket clients.
type Server struct {
	// writeMu serializes writes to the connections. It is taken before mu.
	writeMu sync.Mutex

	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	last      Frame
	startTime time.Time
	upgrader  websocket.Upgrader
}

// NewServer returns a Server with no clients and an empty frame.
func NewServer() *Server {
	return &Server{
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Attach publishes every latch of c.
func (s *Server) Attach(c *sim.Chain) {
	c.OnLatch(s.Publish)
	s.Publish(c.Snapshot())
}

// Publish records devs as the latest frame and sends it to every client.
// Clients that fail to receive it within writeWait are dropped.
func (s *Server) Publish(devs []sim.Device) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.last = Frame{ID: s.last.ID + 1, Devices: devs}
	f := s.last
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		if err := s.write(conn, f); err != nil {
			log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("preview client dropped")
			s.drop(conn)
		}
	}
}

// Last returns the most recent frame.
func (s *Server) Last() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) write(conn *websocket.Conn, f Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(f)
}

// drop forgets conn and closes it, once.
func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[conn] {
		delete(s.clients, conn)
		conn.Close()
	}
}

// HandleWS upgrades the request and streams frames until the client goes
// away. The latest frame is sent immediately.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("preview upgrade failed")
		return
	}

	s.writeMu.Lock()
	s.mu.Lock()
	f := s.last
	s.clients[conn] = true
	s.mu.Unlock()
	err = s.write(conn, f)
	s.writeMu.Unlock()
	if err != nil {
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("preview client dropped")
		s.drop(conn)
		return
	}

	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports the frame counter and client count as JSON.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := map[string]any{
		"frame_id": s.last.ID,
		"clients":  len(s.clients),
		"uptime_s": time.Since(s.startTime).Seconds(),
		"devices":  len(s.last.Devices),
	}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Debug().Err(err).Msg("preview health write failed")
	}
}

// Handler returns a mux serving /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}
