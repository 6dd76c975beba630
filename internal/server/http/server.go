package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rzbill/bytelog/internal/runtime"
	"github.com/rzbill/bytelog/internal/server/http/controllers"
	idpkg "github.com/rzbill/bytelog/pkg/id"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

// Server is the HTTP front end for a bytelog runtime.
type Server struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
	srv    *http.Server
	lis    net.Listener
	ids    *idpkg.Generator
}

// New builds a Server with all routes registered.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.With(logpkg.Component("http"))
	s := &Server{rt: rt, logger: logger, ids: idpkg.NewGenerator()}
	mux := http.NewServeMux()
	controllers.NewControllerRegistry(rt, rt.Log(), logger).RegisterAllRoutes(mux)
	s.srv = &http.Server{Handler: cors(s.withRequestID(mux))}
	return s
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http server listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRequestID tags every request with a sortable ID, exposed on the
// response and threaded through the context for log correlation.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-Id")
		if rid == "" {
			rid = s.ids.Next().String()
		}
		w.Header().Set("X-Request-Id", rid)
		ctx := context.WithValue(r.Context(), logpkg.RequestIDKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
