// Package server exposes the normalization engine over a JSON-lines TCP
// protocol, with an optional HTTP admin surface. One request per line;
// responses carry the request id and may arrive out of order.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"

	"github.com/oklog/ulid/v2"
	"golang.org/x/net/netutil"
)

// Options tunes the TCP listener.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:8888".
	Addr string
	// MaxConnections caps concurrently served clients; 0 means unlimited.
	MaxConnections int
	// Workers is the number of request workers per connection.
	Workers int
}

// Server accepts JSON-lines connections and delegates to a Service.
type Server struct {
	svc  Service
	opts Options

	mu     sync.Mutex
	ln     net.Listener
	active map[net.Conn]struct{}
	closed bool
	conns  sync.WaitGroup
}

// New creates an unstarted server.
func New(svc Service, opts Options) *Server {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Server{svc: svc, opts: opts, active: make(map[net.Conn]struct{})}
}

// maximum accepted request line, 1 MiB
const maxLineBytes = 1 << 20

// Serve listens on the configured address and blocks until ctx is
// cancelled or Close is called, then waits for open connections to drain.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	if s.opts.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConnections)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return net.ErrClosed
	}
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	log.Printf("server: listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.conns.Wait()
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if !s.track(conn) {
			conn.Close()
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			defer s.untrack(conn)
			s.handleConn(ctx, conn)
		}()
	}
}

// Addr returns the bound address, nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops the listener and closes open connections so idle clients
// cannot hold up shutdown.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for conn := range s.active {
		conn.Close()
	}
	return err
}

// track registers a connection for shutdown, refusing it when the server
// is already closed.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.active[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, conn)
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connID := ulid.Make().String()
	log.Printf("server: conn %s accepted from %s", connID, conn.RemoteAddr())

	var writeMu sync.Mutex
	enc := json.NewEncoder(conn)
	send := func(v any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := enc.Encode(v); err != nil {
			log.Printf("server: conn %s write: %v", connID, err)
		}
	}

	pool := newWorkerPool(s.opts.Workers, 0)
	pool.start(ctx)
	defer pool.close()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			send(&ErrorResponse{Req: req.Req, Error: "malformed request: " + err.Error()})
			continue
		}

		if err := pool.submit(func(ctx context.Context) error {
			send(s.process(ctx, &req))
			return nil
		}); err != nil {
			send(&ErrorResponse{Req: req.Req, Error: err.Error()})
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Printf("server: conn %s read: %v", connID, err)
	}
	log.Printf("server: conn %s closed", connID)
}

// process runs one request and always yields something to send back.
func (s *Server) process(ctx context.Context, req *Request) any {
	ex, err := toExample(req)
	if err != nil {
		return &ErrorResponse{Req: req.Req, Error: err.Error()}
	}
	res, err := s.svc.Tokenize(ctx, req.LanguageTag, ex)
	if err != nil {
		return &ErrorResponse{Req: req.Req, Error: err.Error()}
	}
	return toResponse(req, res)
}
