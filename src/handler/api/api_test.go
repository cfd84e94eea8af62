package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolplayer/src/library"
	"lolplayer/src/player"
	"lolplayer/src/sink"
)

type testServer struct {
	*httptest.Server
	ctrl *player.Controller
	sink *sink.DummySink
	dir  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	library.WriteTestTree(t, dir, "b.mp3", "a.mp3", "c.ogg")
	ds := sink.NewDummySink()
	ctrl := player.NewController(ds, nil)

	r := chi.NewRouter()
	InitRouter(r, ctrl)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, ctrl: ctrl, sink: ds, dir: dir}
}

func (ts *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) getJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (ts *testServer) load(t *testing.T) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"directory": ts.dir})
	require.NoError(t, err)
	resp := ts.post(t, "/player/library", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoadAndPlay(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)

	var playlist struct {
		Directory string          `json:"directory"`
		Index     int             `json:"index"`
		Tracks    []library.Track `json:"tracks"`
	}
	ts.getJSON(t, "/player/playlist", &playlist)
	assert.Equal(t, ts.dir, playlist.Directory)
	assert.Equal(t, -1, playlist.Index)
	require.Len(t, playlist.Tracks, 3)
	assert.Equal(t, "a.mp3", playlist.Tracks[0].Name())
	assert.Equal(t, "c.ogg", playlist.Tracks[2].Name())

	resp := ts.post(t, "/player/current", `{"index": 2}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, filepath.Join(ts.dir, "c.ogg"), ts.sink.Loaded())

	resp = ts.post(t, "/player/next", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.post(t, "/player/toggle", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status player.Status
	ts.getJSON(t, "/player/status", &status)
	assert.Equal(t, player.Status{Index: 0, Playing: false, Paused: true, Length: 3, Directory: ts.dir}, status)

	resp = ts.post(t, "/player/previous", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.post(t, "/player/stop", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ts.getJSON(t, "/player/status", &status)
	assert.Equal(t, player.Status{Index: 2, Length: 3, Directory: ts.dir}, status)
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)
	ts.sink.Broken[filepath.Join(ts.dir, "a.mp3")] = true

	for _, tc := range []struct{ path, body string }{
		{"/player/library", `{}`},
		{"/player/library", `not json`},
		{"/player/current", `{}`},
		{"/player/current", `{"index": "one"}`},
		{"/player/current", `{"index": 0}`},
	} {
		resp := ts.post(t, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s %s", tc.path, tc.body)
	}

	resp := ts.post(t, "/player/current", `{"index": 42}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerSentEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/player/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	nextEvent := func() (string, string) {
		var name, data string
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && name != "":
				return name, data
			}
		}
		t.Fatalf("Event stream ended: %v", lines.Err())
		return "", ""
	}

	name, data := nextEvent()
	assert.Equal(t, "status", name)
	assert.JSONEq(t, `{"index": -1, "playing": false, "paused": false, "length": 3, "directory": `+jsonString(t, ts.dir)+`}`, data)

	require.NoError(t, ts.ctrl.PlayIndex(1))
	name, data = nextEvent()
	assert.Equal(t, "track", name)
	assert.JSONEq(t, `{"index": 1}`, data)
	name, data = nextEvent()
	assert.Equal(t, "playstate", name)
	assert.JSONEq(t, `{"playing": true}`, data)
}

func TestWebSocketEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/player/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "status", msg.Event)

	ts.sink.Broken[filepath.Join(ts.dir, "b.mp3")] = true
	assert.Error(t, ts.ctrl.PlayIndex(1))

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Event)
	var ev player.ErrorEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, 1, ev.Index)
	assert.Equal(t, filepath.Join(ts.dir, "b.mp3"), ev.Path)
	assert.Contains(t, ev.Error, sink.ErrDecode.Error())
}

func jsonString(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestServerSentEventsClientGone(t *testing.T) {
	ctrl := player.NewController(sink.NewDummySink(), nil)
	r := chi.NewRouter()
	InitRouter(r, ctrl)

	returned := make(chan struct{}, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.ServeHTTP(w, req)
		if req.URL.Path == "/player/events" {
			returned <- struct{}{}
		}
	}))
	defer srv.Close()

	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/player/events")
		require.NoError(t, err)
		line, err := bufio.NewReader(resp.Body).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "id: 1\n", line)
		resp.Body.Close()

		// No events are emitted, the handler must notice the disconnect on
		// its own.
		select {
		case <-returned:
		case <-time.After(time.Second):
			t.Fatalf("Handler %d did not return after the client disconnected", i)
		}
	}
}
