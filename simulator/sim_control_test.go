package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/scratchcard/internal/card"
	"github.com/rook-computer/scratchcard/internal/loader"
)

type stringOpener struct{}

func (stringOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(location)), nil
}

type bytesOpener []byte

func (b bytesOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

type countingReloader struct{ calls chan struct{} }

func (c countingReloader) Load(ctx context.Context) error {
	c.calls <- struct{}{}
	return nil
}

func TestFaultOpener(t *testing.T) {
	control := NewSimControl(context.Background())
	opener := control.Opener(stringOpener{})
	back := loader.WithRole(context.Background(), card.Background)
	front := loader.WithRole(context.Background(), card.Foreground)

	rc, err := opener.Open(front, "front.png")
	require.NoError(t, err)
	rc.Close()

	control.SetFaults(SimFaults{ForegroundFail: true})
	_, err = opener.Open(front, "front.png")
	assert.ErrorContains(t, err, "simulated foreground load failure")
	_, err = opener.Open(back, "back.png")
	assert.NoError(t, err)
	_, err = opener.Open(context.Background(), "front.png")
	assert.NoError(t, err, "opens without a role pass through")

	control.SetFaults(SimFaults{BackgroundDelayMs: 10_000})
	ctx, cancel := context.WithTimeout(back, 20*time.Millisecond)
	defer cancel()
	_, err = opener.Open(ctx, "back.png")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFaultsFollowRoleWhenLocationsMatch(t *testing.T) {
	control := NewSimControl(context.Background())
	control.SetFaults(SimFaults{ForegroundFail: true})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	l := &loader.Loader{Opener: control.Opener(bytesOpener(buf.Bytes())), Timeout: 5 * time.Second}

	_, err := l.Load(context.Background(), "same.png", "same.png")
	require.Error(t, err)
	assert.ErrorContains(t, err, "simulated foreground load failure")

	control.SetFaults(SimFaults{})
	layers, err := l.Load(context.Background(), "same.png", "same.png")
	require.NoError(t, err)
	assert.Equal(t, card.Background, layers.Background.Role)
	assert.Equal(t, card.Foreground, layers.Foreground.Role)
}

func TestSimEndpoints(t *testing.T) {
	control := NewSimControl(context.Background())
	reloads := countingReloader{calls: make(chan struct{}, 4)}
	control.app = reloads

	r := chi.NewRouter()
	registerSimEndpoints(r, control)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sim/faults", "application/json", strings.NewReader(`{"backgroundFail":true}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, control.Faults().BackgroundFail)

	resp, err = http.Post(srv.URL+"/sim/reload", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/sim/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, SimFaults{}, control.Faults())

	for i := 0; i < 2; i++ {
		select {
		case <-reloads.calls:
		case <-time.After(time.Second):
			t.Fatal("reload not triggered")
		}
	}

	resp, err = http.Post(srv.URL+"/sim/faults", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
