// Package debugview exposes read-only simulation state to an external
// renderer: navmesh nodes and agent positions as JSON, served over HTTP
// and streamed over websocket. The AI core never draws anything itself.
//
// Snapshots are built on the simulation goroutine and published to the
// server, so handlers never touch live simulation state.
package debugview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"aicore/internal/geom"
	"aicore/internal/system"
)

// NodeView is one navmesh cell as the renderer sees it.
type NodeView struct {
	Center    geom.Vec3 `json:"center"`
	Radius    float64   `json:"radius"`
	Walkable  bool      `json:"walkable"`
	Neighbors []int     `json:"neighbors"`
}

// AgentView is one agent's renderable state.
type AgentView struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Position geom.Vec3   `json:"position"`
	Velocity geom.Vec3   `json:"velocity"`
	Forward  geom.Vec3   `json:"forward"`
	Target   *geom.Vec3  `json:"target,omitempty"`
	Path     []geom.Vec3 `json:"path,omitempty"`
	Sees     []string    `json:"sees,omitempty"`
}

// Snapshot is a consistent view of the world at one tick.
type Snapshot struct {
	Time   time.Time   `json:"time"`
	Agents []AgentView `json:"agents"`
	Nodes  []NodeView  `json:"nodes,omitempty"`
}

// BuildSnapshot captures the system state. Must be called on the
// simulation goroutine, between ticks. Mesh nodes are included only when
// withMesh is set; the mesh rarely changes and is large.
func BuildSnapshot(s *system.System, withMesh bool) Snapshot {
	snap := Snapshot{Time: time.Now()}

	for _, a := range s.Agents() {
		view := AgentView{
			ID:       a.ID().String(),
			Name:     a.Name(),
			Position: a.Position,
			Velocity: a.Velocity,
			Forward:  a.Forward(),
			Target:   a.TargetPosition,
			Path:     a.Path,
		}
		for _, seen := range a.VisibleAgents() {
			view.Sees = append(view.Sees, seen.Name())
		}
		snap.Agents = append(snap.Agents, view)
	}

	if withMesh && s.Mesh() != nil {
		nodes := s.Mesh().Nodes()
		snap.Nodes = make([]NodeView, len(nodes))
		for i := range nodes {
			snap.Nodes[i] = NodeView{
				Center:    nodes[i].Center,
				Radius:    nodes[i].Radius,
				Walkable:  nodes[i].Walkable,
				Neighbors: nodes[i].Neighbors(),
			}
		}
	}
	return snap
}

// Server fans published snapshots out to websocket subscribers and serves
// the latest one over plain HTTP.
type Server struct {
	upgrader websocket.Upgrader

	mu     sync.Mutex
	latest *Snapshot
	subs   map[chan Snapshot]struct{}
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 32 * 1024,
			// Local debug tooling; the renderer may be served from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[chan Snapshot]struct{}),
	}
}

// Publish hands a fresh snapshot to the server. Slow subscribers drop
// frames rather than stalling the caller.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &snap
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Server) subscribe() chan Snapshot {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	if s.latest != nil {
		ch <- *s.latest
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan Snapshot) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

// Handler returns the HTTP routes: GET /state for the latest snapshot,
// GET /ws for the websocket stream.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()

	if latest == nil {
		http.Error(w, "no snapshot yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(latest); err != nil {
		slog.Warn("debugview state encode failed", "err", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("debugview upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	slog.Debug("debugview subscriber connected", "remote", conn.RemoteAddr())

	// Discard inbound frames; the stream is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for snap := range ch {
		if err := conn.WriteJSON(snap); err != nil {
			slog.Debug("debugview subscriber dropped", "remote", conn.RemoteAddr(), "err", err)
			return
		}
	}
}

// Run serves the debug endpoints until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("debug visualization server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
