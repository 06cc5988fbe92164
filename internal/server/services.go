package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// HealthCheck reports whether a dependency answers within timeout.
type HealthCheck func(ctx context.Context, timeout time.Duration) error

// ReadinessHandler answers 200 while check passes and 503 otherwise.
//
// Precondition: check and logger must be non-nil.
func ReadinessHandler(check HealthCheck, timeout time.Duration, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context(), timeout); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
}

// GRPCService serves srv on lis.
//
// Precondition: srv and lis must be non-nil.
func GRPCService(srv *grpc.Server, lis net.Listener) Service {
	return &FuncService{
		StartFn: func() error {
			return ignoreClosed(srv.Serve(lis), grpc.ErrServerStopped)
		},
		StopFn: srv.GracefulStop,
	}
}

// HTTPService serves handler on addr, shutting down within timeout.
//
// Precondition: handler must be non-nil.
func HTTPService(addr string, handler http.Handler, timeout time.Duration) Service {
	hs := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &FuncService{
		StartFn: func() error {
			return ignoreClosed(hs.ListenAndServe(), http.ErrServerClosed)
		},
		StopFn: func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_ = hs.Shutdown(ctx)
		},
	}
}
