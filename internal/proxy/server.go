// Package proxy serves pages with the editor client injected, either from a
// local HTML file or by reverse-proxying a running site, and hosts the
// websocket sessions the injected client opens.
package proxy

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/standardbeagle/pagedit/internal/bridge"
	"github.com/standardbeagle/pagedit/internal/debug"
)

// UploadsPath is where files kept by a directory uploader are served.
const UploadsPath = "/uploads"

var (
	// ErrNoSource is returned when neither a file nor a target is configured.
	ErrNoSource = errors.New("either a file or a target URL is required")
	// ErrBothSources is returned when both a file and a target are configured.
	ErrBothSources = errors.New("file and target URL are mutually exclusive")
)

// Config configures a Server.
type Config struct {
	Host string
	Port int

	// File is an HTML page served with the client injected.
	File string
	// Target is a site reverse-proxied with the client injected into its
	// HTML responses.
	Target string

	// UploadDir, when set, is served under UploadsPath.
	UploadDir string

	// AllowAll allows any CORS origin.
	AllowAll bool

	Deps Deps
}

// Server is the HTTP front of the editor.
type Server struct {
	cfg      Config
	target   *url.URL
	proxy    *httputil.ReverseProxy
	sessions *SessionManager
	router   chi.Router
	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
	running    atomic.Bool
}

// NewServer validates cfg and builds the router.
func NewServer(cfg Config) (*Server, error) {
	switch {
	case cfg.File == "" && cfg.Target == "":
		return nil, ErrNoSource
	case cfg.File != "" && cfg.Target != "":
		return nil, ErrBothSources
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}

	s := &Server{
		cfg:      cfg,
		sessions: NewSessionManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	if cfg.Target != "" {
		target, err := url.Parse(cfg.Target)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid target URL %q", cfg.Target)
		}
		s.target = target
		s.proxy = httputil.NewSingleHostReverseProxy(target)
		s.proxy.ModifyResponse = s.modifyResponse
		s.proxy.ErrorHandler = s.errorHandler
	} else if _, err := os.Stat(cfg.File); err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if debug.IsEnabled() {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/__pagedit/sessions", s.handleSessions)
	r.HandleFunc(WebSocketPath, s.handleWebSocket)

	if s.cfg.UploadDir != "" {
		fs := http.StripPrefix(UploadsPath+"/", http.FileServer(http.Dir(s.cfg.UploadDir)))
		r.Handle(UploadsPath+"/*", fs)
	}

	if s.proxy != nil {
		r.Handle("/*", s.proxy)
	} else {
		r.Handle("/*", http.HandlerFunc(s.handleFile))
	}
	return r
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the live session registry.
func (s *Server) Sessions() *SessionManager { return s.sessions }

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL returns the address a browser should open.
func (s *Server) URL() string {
	return "http://" + s.Addr() + "/"
}

// Start binds the listener and serves in the background. If the port is in
// use another free port is chosen.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if !isAddressInUse(err) {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		debug.Warn(component, "%s in use, picking a free port", addr)
		listener, err = net.Listen("tcp", net.JoinHostPort(s.cfg.Host, "0"))
		if err != nil {
			return fmt.Errorf("failed to find available port: %w", err)
		}
	}
	s.addr = listener.Addr().String()

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.running.Store(true)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			debug.Error(component, "server stopped: %v", err)
		}
		s.running.Store(false)
	}()

	debug.Info(component, "listening on %s", s.addr)
	return nil
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	err := s.sessions.Shutdown(ctx)
	if srv != nil {
		err = errors.Join(err, srv.Shutdown(ctx))
	}
	return err
}

func isAddressInUse(err error) bool {
	return strings.Contains(err.Error(), "address already in use") ||
		strings.Contains(err.Error(), "Only one usage of each socket address")
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Warn(component, "websocket upgrade failed: %v", err)
		return
	}
	conn := bridge.NewConn(ws)

	sess, err := openSession(r.Context(), conn, s.cfg.Deps)
	if err != nil {
		debug.Warn(component, "rejecting page: %v", err)
		conn.SendError(err)
		conn.Close()
		return
	}
	if err := s.sessions.Add(sess); err != nil {
		conn.SendError(err)
		sess.Close()
		return
	}
	defer s.sessions.Remove(sess.ID)

	debug.Info(component, "session %s opened for %s", sess.ID, sess.BaseURI)
	sess.serve()
	debug.Info(component, "session %s closed", sess.ID)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sessions": s.sessions.List(),
		"active":   s.sessions.ActiveCount(),
		"total":    s.sessions.TotalStarted(),
	})
}

// handleFile serves the configured page with the client injected at "/" and
// at its own name, and its sibling assets as they are.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(s.cfg.File)
	if r.URL.Path != "/" && r.URL.Path != "/"+name {
		http.FileServer(http.Dir(filepath.Dir(s.cfg.File))).ServeHTTP(w, r)
		return
	}

	page, err := os.ReadFile(s.cfg.File)
	if err != nil {
		debug.Error(component, "failed to read %s: %v", s.cfg.File, err)
		http.Error(w, "failed to read page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(Inject(page, WebSocketPath))
}

// modifyResponse injects the client into HTML responses from the target.
func (s *Server) modifyResponse(resp *http.Response) error {
	if !ShouldInject(resp.Header.Get("Content-Type")) {
		return nil
	}

	encoding := strings.ToLower(resp.Header.Get("Content-Encoding"))
	var bodyReader io.ReadCloser = resp.Body

	if strings.Contains(encoding, "gzip") {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			// Pass the response through untouched.
			return nil
		}
		defer gzReader.Close()
		bodyReader = gzReader
	} else if strings.Contains(encoding, "deflate") {
		bodyReader = flate.NewReader(resp.Body)
		defer bodyReader.Close()
	}

	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return err
	}
	resp.Body.Close()

	modified := Inject(body, WebSocketPath)
	resp.Body = io.NopCloser(bytes.NewReader(modified))
	resp.ContentLength = int64(len(modified))
	resp.Header.Set("Content-Length", strconv.Itoa(len(modified)))
	resp.Header.Del("Content-Encoding")
	// An inline script would be refused by most page policies.
	resp.Header.Del("Content-Security-Policy")
	return nil
}

func (s *Server) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	debug.Warn(component, "proxy %s %s: %v", r.Method, r.URL.Path, err)

	var msg string
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		msg = fmt.Sprintf("Cannot connect to %s. Make sure the server is running.", s.target)
	case strings.Contains(errStr, "no such host"):
		msg = fmt.Sprintf("Cannot resolve %s. Check the target URL.", s.target)
	default:
		msg = fmt.Sprintf("Proxy error: %s (target: %s)", errStr, s.target)
	}
	http.Error(w, msg, http.StatusBadGateway)
}
