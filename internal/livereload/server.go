package livereload

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

const (
	maxInjectBuffer = 512 * 1024
	shutdownTimeout = 5 * time.Second
)

// ServerOptions configures the dev preview server.
type ServerOptions struct {
	// Dir is the output tree being served.
	Dir string
	// Hub serves /livereload; nil disables live reload and script injection.
	Hub *Hub
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// Server serves the output tree during development.
type Server struct {
	opts ServerOptions
	srv  *http.Server
}

// NewServer creates a dev server.
func NewServer(opts ServerOptions) *Server {
	return &Server{opts: opts}
}

// Handler returns the server's routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	files := http.FileServer(http.Dir(s.opts.Dir))
	if s.opts.Hub != nil {
		mux.Handle("/livereload", s.opts.Hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			if _, err := w.Write([]byte(Script)); err != nil {
				slog.Debug("failed to write livereload script", logfields.Error(err))
			}
		})
		mux.Handle("/", InjectScript(files))
	} else {
		mux.Handle("/", files)
	}
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics)
	}
	return withLogging(mux)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// No write timeout: SSE connections are long lived.
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 300 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()
	slog.Info("Dev server listening", logfields.Addr("http://"+ln.Addr().String()), logfields.Path(s.opts.Dir))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if s.opts.Hub != nil {
		s.opts.Hub.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// InjectScript inserts ScriptTag before the last </body> of HTML responses.
func InjectScript(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
			next.ServeHTTP(w, r)
			return
		}
		inj := &injector{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(inj, r)
		inj.finalize()
	})
}

// injector buffers an HTML response so the script tag can be inserted. Non
// HTML and oversized responses are passed through untouched.
type injector struct {
	http.ResponseWriter
	status      int
	buf         []byte
	wroteHeader bool
	passthrough bool
}

func (l *injector) WriteHeader(code int) {
	l.status = code
	if l.passthrough {
		l.ResponseWriter.WriteHeader(code)
		l.wroteHeader = true
	}
}

func (l *injector) Write(data []byte) (int, error) {
	if !l.passthrough && l.buf == nil {
		ct := l.Header().Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "text/html") {
			l.startPassthrough()
			return l.ResponseWriter.Write(data)
		}
		l.buf = make([]byte, 0, 64*1024)
	}
	if l.passthrough {
		return l.ResponseWriter.Write(data)
	}
	if len(l.buf)+len(data) > maxInjectBuffer {
		l.startPassthrough()
		if _, err := l.ResponseWriter.Write(l.buf); err != nil {
			return 0, err
		}
		l.buf = nil
		return l.ResponseWriter.Write(data)
	}
	l.buf = append(l.buf, data...)
	return len(data), nil
}

func (l *injector) startPassthrough() {
	l.passthrough = true
	l.Header().Del("Content-Length")
	l.ResponseWriter.WriteHeader(l.status)
	l.wroteHeader = true
}

func (l *injector) finalize() {
	if l.passthrough {
		return
	}
	if len(l.buf) == 0 {
		if !l.wroteHeader {
			l.ResponseWriter.WriteHeader(l.status)
		}
		return
	}
	page := string(l.buf)
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		page = page[:i] + ScriptTag + page[i:]
	}
	l.Header().Del("Content-Length")
	l.ResponseWriter.WriteHeader(l.status)
	_, _ = l.ResponseWriter.Write([]byte(page))
}

// logResponseWriter captures the status code for request logging.
type logResponseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *logResponseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the logging wrapper.
func (rw *logResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &logResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Debug("HTTP request",
			logfields.Method(r.Method),
			logfields.URL(r.URL.Path),
			logfields.Status(rw.status),
			logfields.RemoteAddr(r.RemoteAddr),
			logfields.Since(start))
	})
}
