// Package service exposes the request composer over MCP so agents can send
// requests and manage sessions programmatically.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gcnwokike/API-Commander/apicmd/config"
	"github.com/gcnwokike/API-Commander/apicmd/request"
	"github.com/gcnwokike/API-Commander/apicmd/session"
	"github.com/gcnwokike/API-Commander/apicmd/transport"
)

// Server wraps the MCP server and its dependencies.
type Server struct {
	cfg      *config.Config
	sessions *session.Store
	sender   *transport.Sender

	mcpServer        *server.MCPServer
	sseServer        *server.SSEServer
	streamableServer *server.StreamableHTTPServer
	httpServer       *http.Server
	listener         net.Listener

	// Session writes ride the debouncer so a burst of tool calls against
	// the same session collapses into one storage write.
	saver   *session.Debouncer
	saveMu  sync.Mutex
	pending *request.Spec
}

// NewServer creates an MCP server around an opened session store.
func NewServer(cfg *config.Config, sessions *session.Store) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		sender:   &transport.Sender{Timeout: cfg.SendTimeout()},
	}
	s.saver = session.NewDebouncer(cfg.DebounceWindow(), s.flushSave)

	s.mcpServer = server.NewMCPServer("apicmd", config.Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	s.registerTools()

	return s
}

// Start listens on the port and serves MCP over both transports.
// Port 0 picks a free port; the bound address is available via Addr.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// SSE server for legacy clients
	s.sseServer = server.NewSSEServer(s.mcpServer,
		server.WithBaseURL("http://"+listener.Addr().String()),
	)

	// Streamable HTTP server for modern clients
	s.streamableServer = server.NewStreamableHTTPServer(s.mcpServer,
		server.WithStateLess(true),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", s.streamableServer)
	mux.Handle("/sse", s.sseServer)
	mux.Handle("/sse/", s.sseServer)

	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("MCP server error: %v", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Close flushes any pending session write and stops the MCP server.
func (s *Server) Close(ctx context.Context) error {
	s.saver.Flush()

	var errs []error

	// Streaming connections never become idle, so Shutdown blocks; use a
	// short timeout then force close.
	if s.httpServer != nil {
		shortCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		err := s.httpServer.Shutdown(shortCtx)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				errs = append(errs, closeErr)
			}
		} else if err != nil {
			errs = append(errs, err)
		}
	}

	if s.sseServer != nil {
		if err := s.sseServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.streamableServer != nil {
		if err := s.streamableServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// scheduleSave queues the active session's state for a debounced write.
func (s *Server) scheduleSave(state *request.Spec) {
	s.saveMu.Lock()
	s.pending = state
	s.saveMu.Unlock()

	s.saver.Trigger()
}

func (s *Server) flushSave() {
	s.saveMu.Lock()
	state := s.pending
	s.pending = nil
	s.saveMu.Unlock()

	if state == nil {
		return
	}
	if err := s.sessions.SaveActive(state, time.Now()); err != nil {
		log.Printf("session save error: %v", err)
	}
}
