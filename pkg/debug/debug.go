// Package debug implements the inspector, an HTTP server exposing a running
// update loop in debug mode.
//
// Routes:
//
//	GET  /state     the root state as JSON
//	GET  /stats     loop statistics
//	POST /navigate  navigate to the url form value
//	GET  /metrics   Prometheus metrics
//	GET  /rpc       JSON-RPC 2.0 over websocket, with methods state, stats
//	                and navigate
//
// The inspector only reads state and dispatches ordinary messages; it never
// changes how messages are processed.
package debug

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsstream "github.com/sourcegraph/jsonrpc2/websocket"
	"loam.dev/pkg/logutil"
	"loam.dev/pkg/loop"
	"loam.dev/pkg/metrics"
)

var logger = logutil.GetLogger("[debug] ")

// Target is what the inspector inspects.
type Target interface {
	StateJSON() ([]byte, error)
	Stats() loop.Stats
	Navigate(url string)
}

// Inspect returns a Target for a Manager. The navigate function builds the
// message that navigates to a URL.
func Inspect[S, M any](m *loop.Manager[S, M], navigate func(url string) M) Target {
	return managerTarget[S, M]{m, navigate}
}

type managerTarget[S, M any] struct {
	m        *loop.Manager[S, M]
	navigate func(string) M
}

func (t managerTarget[S, M]) StateJSON() ([]byte, error) { return json.Marshal(t.m.State()) }
func (t managerTarget[S, M]) Stats() loop.Stats          { return t.m.Snapshot() }
func (t managerTarget[S, M]) Navigate(url string)        { t.m.Dispatch(t.navigate(url)) }

// NewHandler returns the HTTP handler of the inspector.
func NewHandler(t Target) http.Handler {
	s := &server{t, websocket.Upgrader{}}
	r := mux.NewRouter()
	r.HandleFunc("/state", s.state).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	r.HandleFunc("/navigate", s.navigate).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/rpc", s.rpc)
	return r
}

// Serve serves h on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, h)
}

// ServeListener is like Serve, with an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("inspector listening")
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type server struct {
	target   Target
	upgrader websocket.Upgrader
}

func (s *server) state(w http.ResponseWriter, _ *http.Request) {
	data, err := s.target.StateJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.target.Stats())
}

func (s *server) navigate(w http.ResponseWriter, r *http.Request) {
	url := r.FormValue("url")
	if url == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	s.target.Navigate(url)
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) rpc(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	rpcConn := jsonrpc2.NewConn(r.Context(), wsstream.NewObjectStream(conn), s.handler())
	<-rpcConn.DisconnectNotify()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("write response")
	}
}
