package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/scratchcard/internal/input"
	"github.com/rook-computer/scratchcard/internal/state"
)

type fakeService struct {
	mu     sync.Mutex
	ready  bool
	events []input.Event
	resets int
	url    string
}

func (f *fakeService) Snapshot() state.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := state.State{Phase: state.LOADING, Network: state.NetworkInfo{URL: f.url}}
	if f.ready {
		s.Phase = state.READY
		s.Card = state.CardInfo{Width: 4, Height: 3, Strokes: len(f.events)}
	}
	return s
}

func (f *fakeService) Frame() image.Image {
	if !f.ready {
		return nil
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 3))
}

func (f *fakeService) RenderPage() image.Image { return image.NewRGBA(image.Rect(0, 0, 8, 6)) }

func (f *fakeService) HandlePointer(ctx context.Context, ev input.Event) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return false, ErrNotReady
	}
	f.events = append(f.events, ev)
	return ev.Cancelable, nil
}

func (f *fakeService) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return ErrNotReady
	}
	f.resets++
	return nil
}

func (f *fakeService) recorded() []input.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]input.Event(nil), f.events...)
}

func (f *fakeService) resetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func newTestServer(t *testing.T, svc CardService) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(svc, "", false, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestStateEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeService{ready: true})

	resp, err := http.Get(srv.URL + "/api/v1/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body stateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ready", body.Phase)
	assert.Equal(t, 4, body.Card.Width)
}

func TestPointerEndpoint(t *testing.T) {
	svc := &fakeService{ready: true}
	srv := newTestServer(t, svc)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"mouse down", `{"type":"mousedown","cancelable":true,"pageX":10,"pageY":12}`, http.StatusOK},
		{"touch move", `{"type":"touchmove","cancelable":true,"changedTouches":[{"pageX":3,"pageY":4}]}`, http.StatusOK},
		{"unknown type", `{"type":"click"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/pointer", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	events := svc.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, input.Down, events[0].Type)
	require.NotNil(t, events[0].Page)
	assert.Equal(t, input.Point{X: 10, Y: 12}, *events[0].Page)
	assert.Equal(t, input.Touch, events[1].Source)
	assert.Equal(t, []input.Point{{X: 3, Y: 4}}, events[1].ChangedTouches)
}

func TestPointerWithoutCoordinatesKeepsPageNil(t *testing.T) {
	svc := &fakeService{ready: true}
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/api/v1/pointer", "application/json", strings.NewReader(`{"type":"mousedown","pageX":1}`))
	require.NoError(t, err)
	resp.Body.Close()

	events := svc.recorded()
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Page)
}

func TestNotReadyErrors(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	resp, err := http.Post(srv.URL+"/api/v1/reset", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body apiError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_ready", body.Error)

	resp2, err := http.Get(srv.URL + "/api/v1/card.png")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestResetEndpoint(t *testing.T) {
	svc := &fakeService{ready: true}
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/api/v1/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, svc.resetCount())
}

func TestPNGEndpoints(t *testing.T) {
	srv := newTestServer(t, &fakeService{ready: true, url: "http://10.0.0.2:8080/"})

	for _, path := range []string{"/api/v1/card.png", "/api/v1/page.png", "/api/v1/qr.png"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		var buf bytes.Buffer
		_, err = buf.ReadFrom(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		_, err = png.Decode(&buf)
		assert.NoError(t, err, path)
	}
}

func TestQRWithoutURL(t *testing.T) {
	srv := newTestServer(t, &fakeService{ready: true})
	resp, err := http.Get(srv.URL + "/api/v1/qr.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketPointerStream(t *testing.T) {
	svc := &fakeService{ready: true}
	srv := newTestServer(t, svc)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"mousedown","cancelable":true,"pageX":1,"pageY":2}`)))
	var res pointerResponse
	require.NoError(t, conn.ReadJSON(&res))
	assert.True(t, res.Suppressed)
	assert.Equal(t, "ready", res.Phase)
	assert.Equal(t, 1, res.Strokes)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"nope"}`)))
	var apiErr apiError
	require.NoError(t, conn.ReadJSON(&apiErr))
	assert.Equal(t, "bad_event", apiErr.Error)
}

func TestEmbeddedUI(t *testing.T) {
	srv := newTestServer(t, &fakeService{})
	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEmbeddedUISuppressesPointerDefaults(t *testing.T) {
	srv := newTestServer(t, &fakeService{})
	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, handler := range []string{"function down(e)", "function move(e)", "function up(e)"} {
		i := strings.Index(string(body), handler)
		require.GreaterOrEqual(t, i, 0, handler)
		line := string(body[i:])
		line = line[:strings.IndexByte(line, '\n')]
		assert.Contains(t, line, "e.preventDefault()", handler)
	}
}

func TestDevCORS(t *testing.T) {
	h := NewRouter(&fakeService{}, "", true, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPServerLifecycle(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", NewRouter(&fakeService{}, "", false, nil), nil)
	require.NoError(t, s.Start(context.Background()))
	addr := s.ListenAddr()
	require.NotNil(t, addr)

	resp, err := http.Get("http://" + addr.String() + "/api/v1/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
	assert.Error(t, s.Start(context.Background()))
}
