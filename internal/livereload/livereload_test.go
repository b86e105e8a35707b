package livereload

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/retry"
)

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify() { c.n++ }

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	n := Multi(a, nil, b)
	n.Notify()
	n.Notify()
	require.Equal(t, 2, a.n)
	require.Equal(t, 2, b.n)

	calls := 0
	Multi(NotifierFunc(func() { calls++ }), Nop{}).Notify()
	require.Equal(t, 1, calls)
}

// readEvent returns the payload of the next data line, skipping comments.
func readEvent(t *testing.T, r *bufio.Reader) event {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(strings.TrimRight(line, "\n"), "data: "); ok {
			var ev event
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			return ev
		}
	}
}

func TestHub_BroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	first := readEvent(t, r)
	require.True(t, first.Initial)
	require.Empty(t, first.ID)
	require.Equal(t, 1, hub.Clients())

	hub.Notify()
	ev := readEvent(t, r)
	require.False(t, ev.Initial)
	require.NotEmpty(t, ev.ID)

	hub.Broadcast("fixed")
	require.Equal(t, "fixed", readEvent(t, r).ID)
}

func TestHub_NewClientSeesLastID(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast("abc")
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	ev := readEvent(t, bufio.NewReader(resp.Body))
	require.True(t, ev.Initial)
	require.Equal(t, "abc", ev.ID)
}

func TestHub_ShutdownRejectsClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Shutdown()
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livereload", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInjectScript(t *testing.T) {
	page := "<html><body><p>x</p></body></html>"
	h := InjectScript(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".css") {
			w.Header().Set("Content-Type", "text/css")
			_, _ = io.WriteString(w, "body{}</body>")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog/post.html", nil))
	require.Equal(t, "<html><body><p>x</p>"+ScriptTag+"</body></html>", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/style.css", nil))
	require.Equal(t, "body{}</body>", rec.Body.String())
}

func TestServer_ServesTreeWithScriptAndMetrics(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><body>home</body></html>\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("p{}"), 0o644))

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "ok") })
	srv := httptest.NewServer(NewServer(ServerOptions{Dir: dir, Hub: NewHub(nil), Metrics: metrics}).Handler())
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "<html><body>home"+ScriptTag+"</body></html>\n", body)

	_, body = get("/style.css")
	require.Equal(t, "p{}", body)

	_, body = get("/livereload.js")
	require.Equal(t, Script, body)

	_, body = get("/metrics")
	require.Equal(t, "ok", body)

	code, _ = get("/missing.html")
	require.Equal(t, http.StatusNotFound, code)
}

func TestServer_WithoutHubServesPlainFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<body>x</body>"), 0o644))
	srv := httptest.NewServer(NewServer(ServerOptions{Dir: dir}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "<body>x</body>", string(body))

	resp2, err := http.Get(srv.URL + "/livereload.js")
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(ServerOptions{Dir: t.TempDir(), Hub: NewHub(nil)}).Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/livereload.js")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestNATSNotifier_PublishesReloadEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := &NATSNotifier{pub: pub, subject: "sitegen.reload"}
	n.Notify()

	require.Equal(t, "sitegen.reload", pub.subject)
	var ev ReloadEvent
	require.NoError(t, json.Unmarshal(pub.data, &ev))
	require.NotEmpty(t, ev.ID)
	require.False(t, ev.Time.IsZero())

	pub.err = errors.New("down")
	n.Notify()
	require.NoError(t, n.Close())
}

func TestDialNATS_UnreachableIsRetryableNetworkError(t *testing.T) {
	p := retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 1)
	_, err := DialNATS(context.Background(), "nats://127.0.0.1:1", "sitegen.reload", p)
	require.Error(t, err)
	require.True(t, serrors.IsCategory(err, serrors.CategoryNetwork))
	require.True(t, serrors.IsRetryable(err))
}
