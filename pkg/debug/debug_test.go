package debug

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsstream "github.com/sourcegraph/jsonrpc2/websocket"
	"loam.dev/pkg/cmd"
	"loam.dev/pkg/immutable"
	"loam.dev/pkg/loop"
	"loam.dev/pkg/testutil"
)

type fakeTarget struct {
	mu   sync.Mutex
	urls []string
}

func (*fakeTarget) StateJSON() ([]byte, error) { return []byte(`{"url":"/"}`), nil }
func (*fakeTarget) Stats() loop.Stats          { return loop.Stats{Processed: 3} }

func (t *fakeTarget) Navigate(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.urls = append(t.urls, url)
}

func (t *fakeTarget) navigated() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.urls...)
}

func TestHTTP(t *testing.T) {
	target := &fakeTarget{}
	srv := httptest.NewServer(NewHandler(target))
	defer srv.Close()

	body := get(t, srv.URL+"/state")
	if body != `{"url":"/"}` {
		t.Errorf("/state = %q", body)
	}
	var stats loop.Stats
	if err := json.Unmarshal([]byte(get(t, srv.URL+"/stats")), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Processed != 3 {
		t.Errorf("/stats = %+v", stats)
	}
	if body := get(t, srv.URL+"/metrics"); !strings.Contains(body, "loam_loop_messages_total") &&
		!strings.Contains(body, "# HELP") {
		t.Errorf("/metrics does not look like Prometheus output: %q", body)
	}

	resp, err := http.PostForm(srv.URL+"/navigate", url.Values{"url": {"/hello/Ada"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("/navigate status %d", resp.StatusCode)
	}
	resp, err = http.PostForm(srv.URL+"/navigate", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("/navigate without url: status %d", resp.StatusCode)
	}
	if diff := cmp.Diff([]string{"/hello/Ada"}, target.navigated()); diff != "" {
		t.Errorf("navigations (-want +got):\n%s", diff)
	}
}

func get(t *testing.T, u string) string {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(data))
}

func TestRPC(t *testing.T) {
	target := &fakeTarget{}
	srv := httptest.NewServer(NewHandler(target))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testutil.Scaled(5*time.Second))
	defer cancel()
	wsConn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/rpc", nil)
	if err != nil {
		t.Fatal(err)
	}
	conn := jsonrpc2.NewConn(ctx, wsstream.NewObjectStream(wsConn),
		jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
			return nil, nil
		}))
	defer conn.Close()

	var state map[string]string
	if err := conn.Call(ctx, "state", nil, &state); err != nil {
		t.Fatal(err)
	}
	if state["url"] != "/" {
		t.Errorf("state = %v", state)
	}
	var stats loop.Stats
	if err := conn.Call(ctx, "stats", nil, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Processed != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if err := conn.Call(ctx, "navigate", NavigateParams{"/flag"}, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"/flag"}, target.navigated()); diff != "" {
		t.Errorf("navigations (-want +got):\n%s", diff)
	}

	var rpcErr *jsonrpc2.Error
	err = conn.Call(ctx, "navigate", map[string]int{"url": 1}, nil)
	if !asRPCError(err, &rpcErr) || rpcErr.Code != jsonrpc2.CodeInvalidParams {
		t.Errorf("navigate with bad params: %v", err)
	}
	err = conn.Call(ctx, "nope", nil, nil)
	if !asRPCError(err, &rpcErr) || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("unknown method: %v", err)
	}
}

func asRPCError(err error, target **jsonrpc2.Error) bool {
	e, ok := err.(*jsonrpc2.Error)
	*target = e
	return ok
}

func TestInspectManager(t *testing.T) {
	p := loop.Program[[]string, string]{
		Init: func() (immutable.Value[[]string], []cmd.Cmd[string]) {
			return immutable.Of([]string{"/"}), nil
		},
		Update: func(v immutable.Value[[]string], m string) (immutable.Value[[]string], []cmd.Cmd[string]) {
			return immutable.Of(append(v.Get()[:len(v.Get()):len(v.Get())], m)), nil
		},
		View: func([]string, func(string)) {},
	}
	m, err := loop.Start(context.Background(), p, loop.Options{Debug: true})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	target := Inspect(m, func(url string) string { return url })
	target.Navigate("/x")
	if err := m.WaitIdle(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := target.StateJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["/","/x"]` {
		t.Errorf("StateJSON() = %s", data)
	}
	if target.Stats().Processed != 1 {
		t.Errorf("Stats() = %+v", target.Stats())
	}
}

func TestServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, ln, NewHandler(&fakeTarget{})) }()

	if body := get(t, "http://"+ln.Addr().String()+"/stats"); !strings.Contains(body, "Processed") {
		t.Errorf("/stats = %q", body)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeListener returned %v", err)
		}
	case <-time.After(testutil.Scaled(5 * time.Second)):
		t.Fatal("ServeListener did not return after cancel")
	}
}
