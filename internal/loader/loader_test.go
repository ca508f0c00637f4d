package loader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/scratchcard/internal/card"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// gatedOpener serves fixed payloads, each released by closing its gate.
type gatedOpener struct {
	data  map[string][]byte
	errs  map[string]error
	gates map[string]chan struct{}
}

func (o *gatedOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if gate, ok := o.gates[location]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := o.errs[location]; err != nil {
		return nil, err
	}
	data, ok := o.data[location]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestJoinFiresOnceRegardlessOfOrder(t *testing.T) {
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		j := NewJoin(2)
		var mu sync.Mutex
		var progress []int
		j.OnProgress = func(loaded, total int) {
			mu.Lock()
			progress = append(progress, loaded)
			mu.Unlock()
		}
		assert.Equal(t, Pending, j.State())

		assert.False(t, j.Done(nil), "order %v", order)
		assert.Equal(t, Partial, j.State())
		select {
		case <-j.Settled():
			t.Fatal("settled after one load")
		default:
		}

		assert.True(t, j.Done(nil))
		assert.Equal(t, Ready, j.State())
		assert.False(t, j.Done(nil))
		<-j.Settled()
		assert.Equal(t, []int{1, 2}, progress)
	}
}

func TestJoinFailure(t *testing.T) {
	j := NewJoin(2)
	boom := errors.New("boom")
	assert.True(t, j.Done(boom))
	assert.False(t, j.Done(nil))
	assert.Equal(t, Failed, j.State())
	assert.ErrorIs(t, j.Err(), boom)
}

func TestJoinProgressPrecedesSettle(t *testing.T) {
	j := NewJoin(2)
	var seen []bool
	j.OnProgress = func(loaded, _ int) {
		select {
		case <-j.done:
			seen = append(seen, true)
		default:
			seen = append(seen, false)
		}
	}
	j.Done(nil)
	j.Done(nil)
	<-j.Settled()
	assert.Equal(t, []bool{false, false}, seen, "no progress after settle")

	failed := NewJoin(2)
	calls := 0
	failed.OnProgress = func(int, int) { calls++ }
	failed.Done(errors.New("boom"))
	failed.Done(nil)
	assert.Zero(t, calls)
}

type roleOpener struct {
	data  []byte
	mu    sync.Mutex
	roles []card.Role
}

func (o *roleOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	role, ok := RoleFrom(ctx)
	if !ok {
		return nil, errors.New("no role")
	}
	o.mu.Lock()
	o.roles = append(o.roles, role)
	o.mu.Unlock()
	return io.NopCloser(bytes.NewReader(o.data)), nil
}

func TestLoadTagsOpensWithRole(t *testing.T) {
	o := &roleOpener{data: pngBytes(t, 2, 2, color.Black)}
	l := &Loader{Opener: o, Timeout: 5 * time.Second}

	_, err := l.Load(context.Background(), "same.png", "same.png")
	require.NoError(t, err)
	assert.ElementsMatch(t, []card.Role{card.Background, card.Foreground}, o.roles)

	_, ok := RoleFrom(context.Background())
	assert.False(t, ok)
}

func TestLoadWaitsForBothInAnyOrder(t *testing.T) {
	for _, first := range []string{"back.png", "front.png"} {
		t.Run(first, func(t *testing.T) {
			opener := &gatedOpener{
				data: map[string][]byte{
					"back.png":  pngBytes(t, 8, 6, color.RGBA{B: 255, A: 255}),
					"front.png": pngBytes(t, 8, 6, color.RGBA{G: 255, A: 255}),
				},
				gates: map[string]chan struct{}{
					"back.png":  make(chan struct{}),
					"front.png": make(chan struct{}),
				},
			}
			progressed := make(chan int, 2)
			l := &Loader{Opener: opener, Timeout: 5 * time.Second, OnProgress: func(n, _ int) { progressed <- n }}

			type result struct {
				layers Layers
				err    error
			}
			done := make(chan result, 1)
			go func() {
				layers, err := l.Load(context.Background(), "back.png", "front.png")
				done <- result{layers, err}
			}()

			close(opener.gates[first])
			assert.Equal(t, 1, <-progressed)
			select {
			case <-done:
				t.Fatal("load finished before the second image")
			case <-time.After(20 * time.Millisecond):
			}
			for name, gate := range opener.gates {
				if name != first {
					close(gate)
				}
			}

			res := <-done
			require.NoError(t, res.err)
			assert.Equal(t, card.Background, res.layers.Background.Role)
			assert.Equal(t, card.Foreground, res.layers.Foreground.Role)
			assert.Equal(t, color.RGBA{G: 255, A: 255}, res.layers.Foreground.Image.RGBAAt(0, 0))
		})
	}
}

func TestLoadReportsFailure(t *testing.T) {
	opener := &gatedOpener{
		data: map[string][]byte{"back.png": pngBytes(t, 2, 2, color.White)},
	}
	l := &Loader{Opener: opener}
	_, err := l.Load(context.Background(), "back.png", "missing.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "foreground")
}

func TestLoadTimesOut(t *testing.T) {
	opener := &gatedOpener{
		data:  map[string][]byte{"back.png": pngBytes(t, 2, 2, color.White), "front.png": pngBytes(t, 2, 2, color.Black)},
		gates: map[string]chan struct{}{"front.png": make(chan struct{})},
	}
	l := &Loader{Opener: opener, Timeout: 30 * time.Millisecond}
	_, err := l.Load(context.Background(), "back.png", "front.png")
	assert.ErrorIs(t, err, ErrLoadTimeout)
}

func TestDecodeRejectsNonImages(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("<html>not found</html>")))
	assert.ErrorIs(t, err, ErrNotImage)

	img, format, err := Decode(bytes.NewReader(pngBytes(t, 3, 2, color.White)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestDefaultOpener(t *testing.T) {
	payload := pngBytes(t, 1, 1, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/card.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "local.png")
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	for _, loc := range []string{srv.URL + "/card.png", path, "file://" + path} {
		rc, err := DefaultOpener{}.Open(context.Background(), loc)
		require.NoError(t, err, loc)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		assert.Equal(t, payload, got, loc)
	}

	_, err := DefaultOpener{}.Open(context.Background(), srv.URL+"/nope.png")
	assert.Error(t, err)
}
