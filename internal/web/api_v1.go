package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"

	"github.com/rook-computer/scratchcard/internal/input"
	"github.com/rook-computer/scratchcard/internal/render"
	"github.com/rook-computer/scratchcard/internal/state"
)

// ErrNotReady is returned by a CardService while the layers are loading or
// after they failed to load.
var ErrNotReady = errors.New("card not ready")

// CardService is the part of the app the API drives. HandlePointer and Reset
// are serialized onto the app event loop by the implementation.
type CardService interface {
	Snapshot() state.State
	Frame() image.Image
	RenderPage() image.Image
	HandlePointer(ctx context.Context, ev input.Event) (bool, error)
	Reset(ctx context.Context) error
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type loadResponse struct {
	Loaded int    `json:"loaded"`
	Total  int    `json:"total"`
	Error  string `json:"error,omitempty"`
}

type cardResponse struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Dragging bool `json:"dragging"`
	Strokes  int  `json:"strokes"`
}

type stateResponse struct {
	Phase string       `json:"phase"`
	Load  loadResponse `json:"load"`
	Card  cardResponse `json:"card"`
	URL   string       `json:"url,omitempty"`
}

func newStateResponse(s state.State) stateResponse {
	return stateResponse{
		Phase: s.Phase.String(),
		Load:  loadResponse{Loaded: s.Load.Loaded, Total: s.Load.Total, Error: s.Load.Err},
		Card: cardResponse{
			Width:    s.Card.Width,
			Height:   s.Card.Height,
			Dragging: s.Card.Dragging,
			Strokes:  s.Card.Strokes,
		},
		URL: s.Network.URL,
	}
}

type touchPoint struct {
	PageX float64 `json:"pageX"`
	PageY float64 `json:"pageY"`
}

// pointerRequest mirrors the fields of a DOM mouse or touch event.
type pointerRequest struct {
	Type           string       `json:"type"`
	Cancelable     bool         `json:"cancelable"`
	PageX          *float64     `json:"pageX,omitempty"`
	PageY          *float64     `json:"pageY,omitempty"`
	ChangedTouches []touchPoint `json:"changedTouches,omitempty"`
}

func (req pointerRequest) event() (input.Event, error) {
	typ, source, err := input.ParseDOMType(req.Type)
	if err != nil {
		return input.Event{}, err
	}
	ev := input.Event{Type: typ, Source: source, Cancelable: req.Cancelable}
	if req.PageX != nil && req.PageY != nil {
		ev.Page = &input.Point{X: *req.PageX, Y: *req.PageY}
	}
	for _, t := range req.ChangedTouches {
		ev.ChangedTouches = append(ev.ChangedTouches, input.Point{X: t.PageX, Y: t.PageY})
	}
	return ev, nil
}

type pointerResponse struct {
	Suppressed bool   `json:"suppressed"`
	Phase      string `json:"phase"`
	Dragging   bool   `json:"dragging"`
	Strokes    int    `json:"strokes"`
}

// dispatchPointer decodes one pointer message and hands it to svc. The
// returned status is meaningful only when err is non-nil.
func dispatchPointer(ctx context.Context, svc CardService, body []byte) (pointerResponse, int, apiError) {
	var req pointerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return pointerResponse{}, http.StatusBadRequest, apiError{Error: "bad_request", Message: err.Error()}
	}
	ev, err := req.event()
	if err != nil {
		return pointerResponse{}, http.StatusBadRequest, apiError{Error: "bad_event", Message: err.Error()}
	}
	suppressed, err := svc.HandlePointer(ctx, ev)
	if err != nil {
		status, code := errorStatus(err)
		return pointerResponse{}, status, apiError{Error: code, Message: err.Error()}
	}
	snap := svc.Snapshot()
	return pointerResponse{
		Suppressed: suppressed,
		Phase:      snap.Phase.String(),
		Dragging:   snap.Card.Dragging,
		Strokes:    snap.Card.Strokes,
	}, http.StatusOK, apiError{}
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotReady):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func handleState(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newStateResponse(svc.Snapshot()))
	}
}

func handlePointer(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		res, status, apiErr := dispatchPointer(r.Context(), svc, body)
		if apiErr.Error != "" {
			writeJSON(w, status, apiErr)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleReset(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reset(r.Context()); err != nil {
			status, code := errorStatus(err)
			writeAPIError(w, status, code, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func handleCardPNG(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame := svc.Frame()
		if frame == nil {
			writeAPIError(w, http.StatusConflict, "not_ready", ErrNotReady.Error())
			return
		}
		writePNG(w, frame)
	}
}

func handlePagePNG(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePNG(w, svc.RenderPage())
	}
}

func handleQRPNG(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := svc.Snapshot().Network.URL
		if url == "" {
			writeAPIError(w, http.StatusNotFound, "no_url", "no network address known")
			return
		}
		data, err := render.GenerateQRCodePNG(url, 0)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "qrcode_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	}
}

const maxPointerBody = 64 << 10

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var buf json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPointerBody))
	if err := dec.Decode(&buf); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return buf, nil
}

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

func writePNG(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_ = pngEncoder.Encode(w, img)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
