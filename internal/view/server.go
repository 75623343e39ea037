// Package view serves the render projection of a diagram over HTTP: the
// current model as JSON or Mermaid, and a server-sent event feed with one
// frame per committed transaction.
package view

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/export"
	"github.com/dusk-indust/umlcanvas/internal/registry"
)

// Source yields the render model to serve.
type Source interface {
	Render() registry.RenderModel
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// Server is the viewer endpoint.
type Server struct {
	src Source
	hub *Hub
	mux *http.ServeMux
	log *slog.Logger
}

// NewServer creates a Server over src with the render routes registered.
func NewServer(src Source, opts ...Option) *Server {
	s := &Server{
		src: src,
		hub: NewHub(),
		mux: http.NewServeMux(),
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /render", s.handleRender)
	s.mux.HandleFunc("GET /render.mmd", s.handleMermaid)
	s.mux.HandleFunc("GET /events", s.handleEvents)
	return s
}

// Attach publishes a frame to the event feed after every commit on m.
func (s *Server) Attach(m *diagram.Model) {
	m.OnCommit(func(ch diagram.Change) {
		s.hub.Publish(EventOf(ch, registry.Project(m.Snapshot())))
	})
}

// Handle mounts an extra handler, such as the MCP endpoint.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Hub returns the event hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled, then closes the
// event feed and shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("view server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("view server stopped")
	return nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, s.src.Render()); err != nil {
		s.log.Warn("render write failed", "err", err)
	}
}

func (s *Server) handleMermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(export.GenerateMermaid(s.src.Render()))); err != nil {
		s.log.Warn("mermaid write failed", "err", err)
	}
}

// handleEvents streams the feed. A viewer sending Last-Event-ID gets the
// frames it missed; any other viewer starts from a snapshot.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, cancel := s.hub.Subscribe()
	defer cancel()

	fw := NewFeedWriter(w)
	if err := fw.Start(); err != nil {
		return
	}
	last, backlog, resumed := s.replay(r)
	if !resumed {
		last = s.hub.Head()
		rm := s.src.Render()
		backlog = []Event{{ID: last, Render: &rm}}
	}
	for _, ev := range backlog {
		if err := fw.Write(ev); err != nil {
			return
		}
		last = max(last, ev.Seq)
	}
	s.log.Debug("viewer connected", "remote", r.RemoteAddr, "resumed", resumed, "seq", last)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			// Already covered by the backlog or the snapshot.
			if ev.Seq <= last {
				continue
			}
			if err := fw.Write(ev); err != nil {
				s.log.Debug("viewer write failed", "err", err)
				return
			}
			last = ev.Seq
		}
	}
}

// replay resolves the Last-Event-ID header against the hub history.
func (s *Server) replay(r *http.Request) (uint64, []Event, bool) {
	raw := r.Header.Get("Last-Event-ID")
	if raw == "" {
		return 0, nil, false
	}
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.log.Debug("bad Last-Event-ID", "value", raw)
		return 0, nil, false
	}
	backlog, ok := s.hub.Replay(seq)
	if !ok {
		s.log.Debug("resume point not kept", "seq", seq)
	}
	return seq, backlog, ok
}
