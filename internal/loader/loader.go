// Package loader fetches and decodes the card's two image layers
// concurrently and joins them into a single ready notification.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rook-computer/scratchcard/internal/card"
)

// ErrLoadTimeout is returned when the layers do not all arrive in time.
var ErrLoadTimeout = errors.New("image load timed out")

type logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Request names one layer to load.
type Request struct {
	Role     card.Role
	Location string
}

// Layers is the result of a successful load.
type Layers struct {
	Background *card.Layer
	Foreground *card.Layer
}

type Loader struct {
	Opener  Opener
	Timeout time.Duration
	Logger  logger

	// OnProgress is forwarded to the Join.
	OnProgress func(loaded, total int)
}

// Load starts one task per layer and waits for the join. It returns the
// first failure, ErrLoadTimeout when Timeout elapses, or ctx's error.
func (l *Loader) Load(ctx context.Context, background, foreground string) (Layers, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	// Abandon outstanding tasks once the join settles either way.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	requests := []Request{
		{Role: card.Background, Location: background},
		{Role: card.Foreground, Location: foreground},
	}
	join := NewJoin(len(requests))
	join.OnProgress = l.OnProgress

	results := make([]*card.Layer, len(requests))
	for i, req := range requests {
		go func() {
			layer, err := l.loadOne(ctx, req)
			if err == nil {
				// Each task owns its slot; the join's close publishes it.
				results[i] = layer
			}
			join.Done(err)
		}()
	}

	select {
	case <-join.Settled():
	case <-ctx.Done():
	}
	if join.State() != Ready {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Layers{}, fmt.Errorf("%w after %s", ErrLoadTimeout, l.Timeout)
		}
		if err := join.Err(); err != nil {
			return Layers{}, err
		}
		return Layers{}, ctx.Err()
	}
	return Layers{Background: results[0], Foreground: results[1]}, nil
}

func (l *Loader) loadOne(ctx context.Context, req Request) (*card.Layer, error) {
	start := time.Now()
	opener := l.Opener
	if opener == nil {
		opener = DefaultOpener{}
	}
	rc, err := opener.Open(WithRole(ctx, req.Role), req.Location)
	if err != nil {
		l.errorf("%s %s: %v", req.Role, req.Location, err)
		return nil, fmt.Errorf("load %s %s: %w", req.Role, req.Location, err)
	}
	defer rc.Close()

	img, format, err := Decode(rc)
	if err != nil {
		l.errorf("%s %s: %v", req.Role, req.Location, err)
		return nil, fmt.Errorf("load %s %s: %w", req.Role, req.Location, err)
	}
	layer := card.NewLayer(req.Role, req.Location, img)
	w, h := layer.Size()
	if l.Logger != nil {
		l.Logger.Infof("loader", "%s loaded: %s %dx%d in %s", req.Role, format, w, h, time.Since(start).Round(time.Millisecond))
	}
	return layer, nil
}

func (l *Loader) errorf(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Errorf("loader", format, args...)
	}
}
