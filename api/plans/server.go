package plans

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/railplan/core/history"
	"github.com/kilianp07/railplan/infra/logger"
)

// NewMux routes the plan endpoints. Requests must carry
// "Authorization: Bearer <token>" when token is non-empty.
func NewMux(src Source, store history.Store, token string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /api/plans/current", requireToken(token, NewCurrentHandler(src)))
	mux.Handle("GET /api/plans/current/devices", requireToken(token, NewDevicesHandler(src)))
	mux.Handle("GET /api/plans/history", requireToken(token, NewHistoryHandler(store)))
	return mux
}

func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Serve runs h on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("api").Errorf("api server shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
