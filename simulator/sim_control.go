package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rook-computer/scratchcard/internal/card"
	"github.com/rook-computer/scratchcard/internal/loader"
)

// SimFaults makes individual layer loads fail or stall.
type SimFaults struct {
	BackgroundFail    bool  `json:"backgroundFail"`
	ForegroundFail    bool  `json:"foregroundFail"`
	BackgroundDelayMs int64 `json:"backgroundDelayMs"`
	ForegroundDelayMs int64 `json:"foregroundDelayMs"`
}

type reloader interface {
	Load(ctx context.Context) error
}

type SimControl struct {
	processCtx context.Context
	app        reloader

	mu     sync.RWMutex
	faults SimFaults
}

func NewSimControl(processCtx context.Context) *SimControl {
	if processCtx == nil {
		processCtx = context.Background()
	}
	return &SimControl{processCtx: processCtx}
}

func (c *SimControl) Faults() SimFaults {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.faults
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.mu.Lock()
	c.faults = v
	c.mu.Unlock()
}

// Reload reruns bootstrap in the background, picking up the current faults.
func (c *SimControl) Reload() error {
	if c.app == nil {
		return errors.New("simulator app not configured")
	}
	go func() { _ = c.app.Load(c.processCtx) }()
	return nil
}

// Opener wraps next so each load consults the current faults for the layer
// role carried by its context. Opens without a role pass through.
func (c *SimControl) Opener(next loader.Opener) loader.Opener {
	return faultOpener{next: next, control: c}
}

type faultOpener struct {
	next    loader.Opener
	control *SimControl
}

func (o faultOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	faults := o.control.Faults()
	var fail bool
	var delay time.Duration
	role, _ := loader.RoleFrom(ctx)
	switch role {
	case card.Background:
		fail, delay = faults.BackgroundFail, time.Duration(faults.BackgroundDelayMs)*time.Millisecond
	case card.Foreground:
		fail, delay = faults.ForegroundFail, time.Duration(faults.ForegroundDelayMs)*time.Millisecond
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if fail {
		return nil, fmt.Errorf("simulated %s load failure for %s", role, location)
	}
	return o.next.Open(ctx, location)
}

func registerSimEndpoints(r chi.Router, control *SimControl) {
	r.Route("/sim", func(r chi.Router) {
		r.Post("/reload", func(w http.ResponseWriter, r *http.Request) {
			if err := control.Reload(); err != nil {
				writeSimError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeSimJSON(w, http.StatusAccepted, map[string]any{"ok": true})
		})

		r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
			control.SetFaults(SimFaults{})
			if err := control.Reload(); err != nil {
				writeSimError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeSimJSON(w, http.StatusAccepted, map[string]any{"ok": true})
		})

		r.Get("/faults", func(w http.ResponseWriter, r *http.Request) {
			writeSimJSON(w, http.StatusOK, control.Faults())
		})

		r.Post("/faults", func(w http.ResponseWriter, r *http.Request) {
			var patch struct {
				BackgroundFail    *bool  `json:"backgroundFail"`
				ForegroundFail    *bool  `json:"foregroundFail"`
				BackgroundDelayMs *int64 `json:"backgroundDelayMs"`
				ForegroundDelayMs *int64 `json:"foregroundDelayMs"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.BackgroundFail != nil {
				current.BackgroundFail = *patch.BackgroundFail
			}
			if patch.ForegroundFail != nil {
				current.ForegroundFail = *patch.ForegroundFail
			}
			if patch.BackgroundDelayMs != nil {
				current.BackgroundDelayMs = *patch.BackgroundDelayMs
			}
			if patch.ForegroundDelayMs != nil {
				current.ForegroundDelayMs = *patch.ForegroundDelayMs
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
		})
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": "sim_error", "message": message})
}
