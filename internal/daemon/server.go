package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/executor"
	"github.com/ahnlich/ahnlich-go/internal/logging"
	"github.com/ahnlich/ahnlich-go/internal/session"
)

// Server accepts connections on a Unix socket and/or a TCP address and
// runs pipeline requests against an Executor, one request at a time per
// connection — concurrency across connections is bounded by
// MaximumClients via a buffered semaphore, matching spec.md §5's
// per-session backpressure rule.
type Server struct {
	SocketPath      string
	TCPAddress      string
	MaximumClients  int
	RequestTimeout  time.Duration

	Executor *executor.Executor
	Sessions *session.Manager

	listeners []net.Listener
	sem       chan struct{}

	mu       sync.Mutex
	shutdown bool
	wg       sync.WaitGroup
}

// ListenAndServe binds every configured listener and blocks, serving
// connections until ctx is cancelled. Returns ctx.Err() on clean
// shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.MaximumClients <= 0 {
		s.MaximumClients = 100
	}
	s.sem = make(chan struct{}, s.MaximumClients)
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 30 * time.Second
	}

	if s.SocketPath != "" {
		_ = os.Remove(s.SocketPath)
		ln, err := net.Listen("unix", s.SocketPath)
		if err != nil {
			return fmt.Errorf("daemon: listen on unix socket %s: %w", s.SocketPath, err)
		}
		s.listeners = append(s.listeners, ln)
	}
	if s.TCPAddress != "" {
		ln, err := net.Listen("tcp", s.TCPAddress)
		if err != nil {
			return fmt.Errorf("daemon: listen on tcp %s: %w", s.TCPAddress, err)
		}
		s.listeners = append(s.listeners, ln)
	}
	if len(s.listeners) == 0 {
		return fmt.Errorf("daemon: no listener configured")
	}

	defer func() {
		for _, ln := range s.listeners {
			_ = ln.Close()
		}
		if s.SocketPath != "" {
			_ = os.Remove(s.SocketPath)
		}
	}()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		for _, ln := range s.listeners {
			_ = ln.Close()
		}
	}()

	for _, ln := range s.listeners {
		slog.Info("daemon: listening", "address", ln.Addr().String())
		s.wg.Add(1)
		go s.acceptLoop(ctx, ln)
	}

	s.wg.Wait()
	return ctx.Err()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			shutdown := s.shutdown
			s.mu.Unlock()
			if shutdown {
				return
			}
			slog.Error("daemon: accept error", "error", err, "address", ln.Addr().String())
			continue
		}

		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			_ = conn.Close()
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-s.sem }()
			s.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection serves pipeline requests from one connection until
// it closes or a frame fails to decode. Panics during a pipeline's
// execution are recovered and reported as an Internal error rather than
// crashing the daemon, per spec.md §7's per-connection recovery rule.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sess := session.NewSession(conn.RemoteAddr().String())
	s.Sessions.Register(sess)
	defer s.Sessions.Unregister(sess.ID)

	for {
		if err := conn.SetDeadline(time.Now().Add(s.RequestTimeout)); err != nil {
			slog.Warn("daemon: set connection deadline failed", "error", err)
		}

		var req PipelineRequest
		if err := readFrame(conn, &req); err != nil {
			return
		}

		slog.Debug("daemon: pipeline received", logging.PipelineAttrs(sess.ID, len(req.Queries))...)
		resp := s.handlePipeline(ctx, req)
		if err := writeFrame(conn, resp); err != nil {
			slog.Warn("daemon: write response failed", "error", err)
			return
		}
	}
}

func (s *Server) handlePipeline(ctx context.Context, req PipelineRequest) (resp PipelineResponse) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("daemon: recovered panic handling pipeline", "panic", r)
			err := apierr.New(apierr.CodeInternal, fmt.Sprintf("internal error: %v", r), nil)
			results := make([]WireResult, len(req.Queries))
			for i := range results {
				results[i] = FromResult(executor.Result{Ok: false, Err: err})
			}
			resp = PipelineResponse{Results: results}
		}
	}()

	queries := make([]executor.Query, len(req.Queries))
	for i, wq := range req.Queries {
		q, err := wq.ToQuery()
		if err != nil {
			results := make([]WireResult, len(req.Queries))
			for j := range results {
				results[j] = FromResult(executor.Result{
					Ok:  false,
					Err: apierr.New(apierr.CodeInvalidQuery, err.Error(), nil),
				})
			}
			return PipelineResponse{Results: results}
		}
		queries[i] = q
	}

	results := s.Executor.RunPipeline(ctx, queries)
	wireResults := make([]WireResult, len(results))
	for i, r := range results {
		wireResults[i] = FromResult(r)
	}
	return PipelineResponse{Results: wireResults}
}

// Close signals shutdown and closes every listener.
func (s *Server) Close() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	var firstErr error
	for _, ln := range s.listeners {
		if err := ln.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
