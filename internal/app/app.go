package app

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/scratchcard/internal/app/screens"
	"github.com/rook-computer/scratchcard/internal/buttons"
	"github.com/rook-computer/scratchcard/internal/card"
	"github.com/rook-computer/scratchcard/internal/config"
	"github.com/rook-computer/scratchcard/internal/document"
	"github.com/rook-computer/scratchcard/internal/input"
	"github.com/rook-computer/scratchcard/internal/loader"
	"github.com/rook-computer/scratchcard/internal/render"
	"github.com/rook-computer/scratchcard/internal/state"
	"github.com/rook-computer/scratchcard/internal/system"
	"github.com/rook-computer/scratchcard/internal/web"
)

// ErrNotReady is returned for pointer and reset requests while no card is
// loaded.
var ErrNotReady = web.ErrNotReady

var errLoadSuperseded = errors.New("load superseded by a newer one")

// App hosts one scratch card. All card state is owned by the goroutine
// running Run; every other caller posts work to it.
type App struct {
	Config  config.Config
	Store   *state.Store
	Render  render.Renderer
	Web     web.Server
	Buttons buttons.Buttons
	Opener  loader.Opener
	Logger  Logger

	// Console, when set, is switched to graphics mode for the lifetime of
	// Start.
	Console *system.Console

	// URL is shown as a QR code on the loading screen.
	URL string

	Doc *document.Document

	jobs  chan func()
	frame atomic.Pointer[image.RGBA]
	page  *render.PageCanvas
	qr    image.Image

	screenMu sync.Mutex
	screen   render.Screen

	// Owned by the event loop.
	controller *card.Controller
	loadSeq    int

	// progressSeq is the load whose progress may still reach the store;
	// zero once that load has returned.
	progressMu  sync.Mutex
	progressSeq int

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(cfg config.Config, store *state.Store, renderer render.Renderer, webServer web.Server, buttonDriver buttons.Buttons) *App {
	if renderer == nil {
		renderer = &render.NoopRenderer{}
	}
	if webServer == nil {
		webServer = &web.NoopServer{}
	}
	if buttonDriver == nil {
		buttonDriver = buttons.NewNoopButtons()
	}
	w, h := cfg.Display.PageWidth, cfg.Display.PageHeight
	app := &App{
		Config:  cfg,
		Store:   store,
		Render:  renderer,
		Web:     webServer,
		Buttons: buttonDriver,
		Logger:  NoopLogger{},
		Doc:     document.NewCardPage(w, h),
		jobs:    make(chan func()),
		exitCh:  make(chan error, 1),
	}
	app.page = render.NewPageCanvas(w, h, app)
	return app
}

// Infof and Errorf forward to Logger, so the app can be handed to
// subsystems before Logger is assigned.
func (app *App) Infof(component, format string, args ...interface{}) {
	app.Logger.Infof(component, format, args...)
}

func (app *App) Errorf(component, format string, args ...interface{}) {
	app.Logger.Errorf(component, format, args...)
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Run executes posted work until ctx is done.
func (app *App) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-app.jobs:
			job()
		}
	}
}

// do runs fn on the event loop and waits for it to return.
func (app *App) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case app.jobs <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load (re)runs bootstrap: show the loading view, fetch both layers, then
// build the card and show the main view. A failed load leaves the app in
// the FAILED phase and returns the cause.
func (app *App) Load(ctx context.Context) error {
	var seq int
	err := app.do(ctx, func() {
		app.loadSeq++
		seq = app.loadSeq
		app.progressMu.Lock()
		app.progressSeq = seq
		app.progressMu.Unlock()
		app.controller = nil
		app.frame.Store(nil)
		document.ShowLoading(app.Doc)
		app.Store.SetPhase(state.LOADING)
		app.Store.UpdateLoad(state.LoadInfo{Total: 2})
		app.Store.UpdateCard(state.CardInfo{})
		app.setScreen(&screens.LoadingScreen{QR: app.qr})
	})
	if err != nil {
		return err
	}

	timeout, err := app.Config.LoadTimeout()
	if err != nil {
		return err
	}
	l := &loader.Loader{
		Opener:  app.Opener,
		Timeout: timeout,
		Logger:  app.Logger,
		OnProgress: func(loaded, total int) {
			app.progressMu.Lock()
			defer app.progressMu.Unlock()
			if app.progressSeq == seq {
				app.Store.UpdateLoad(state.LoadInfo{Loaded: loaded, Total: total})
			}
		},
	}
	images := app.Config.Images
	app.Logger.Infof("app", "loading background=%s foreground=%s", images.Background, images.Foreground)
	layers, loadErr := l.Load(ctx, images.Background, images.Foreground)
	app.progressMu.Lock()
	if app.progressSeq == seq {
		app.progressSeq = 0
	}
	app.progressMu.Unlock()

	var bootErr error
	err = app.do(ctx, func() {
		if seq != app.loadSeq {
			bootErr = errLoadSuperseded
			return
		}
		if loadErr != nil {
			bootErr = loadErr
		} else {
			bootErr = app.bootstrap(layers)
		}
		if bootErr != nil {
			app.fail(bootErr)
		}
	})
	if err != nil {
		return err
	}
	return bootErr
}

// bootstrap runs on the event loop once both layers are in.
func (app *App) bootstrap(layers loader.Layers) error {
	fg, err := card.Reconcile(layers.Background, layers.Foreground, app.Config.Images.StrictSize)
	if err != nil {
		return err
	}
	compositor, err := card.NewCompositor(layers.Background, fg)
	if err != nil {
		return err
	}
	w, h := compositor.Size()
	document.LayoutCanvas(app.Doc, w, h)
	canvas := app.Doc.ByID(document.IDCanvas)
	if canvas == nil {
		return errors.New("document has no drawing surface")
	}
	app.controller = card.NewController(canvas, compositor, card.NewStrokeRenderer(app.Config.Stroke.Width))
	app.publish()

	document.ShowMain(app.Doc)
	app.Store.UpdateLoad(state.LoadInfo{Loaded: 2, Total: 2})
	app.Store.SetPhase(state.READY)
	app.setScreen(&screens.CardScreen{Doc: app.Doc, Frames: app})
	app.Logger.Infof("app", "card ready: %dx%d", w, h)
	return nil
}

func (app *App) fail(err error) {
	app.Logger.Errorf("app", "load failed: %v", err)
	load := app.Store.Snapshot().Load
	load.Err = err.Error()
	app.Store.UpdateLoad(load)
	app.Store.SetPhase(state.FAILED)
	app.setScreen(screens.FailedScreen{})
}

// HandlePointer routes ev to the card. Down events only start a stroke on
// the drawing surface; a down on the reset button resets the card. The
// result reports whether the default action should be suppressed.
func (app *App) HandlePointer(ctx context.Context, ev input.Event) (bool, error) {
	var suppressed bool
	var herr error
	if err := app.do(ctx, func() { suppressed, herr = app.handlePointer(ev) }); err != nil {
		return false, err
	}
	return suppressed, herr
}

func (app *App) handlePointer(ev input.Event) (bool, error) {
	if app.controller == nil {
		return false, ErrNotReady
	}
	if ev.Type == input.Down {
		p, ok := ev.PagePoint()
		if !ok {
			return false, nil
		}
		target := app.Doc.Hit(image.Pt(int(p.X), int(p.Y)))
		if target == nil {
			return false, nil
		}
		switch target.ID {
		case document.IDCanvas:
		case document.IDResetButton:
			app.reset()
			return ev.Cancelable, nil
		default:
			return false, nil
		}
	}
	suppressed := app.controller.Handle(ev)
	app.publish()
	return suppressed, nil
}

// Reset clears every stroke. There is no confirmation and no undo.
func (app *App) Reset(ctx context.Context) error {
	var rerr error
	if err := app.do(ctx, func() {
		if app.controller == nil {
			rerr = ErrNotReady
			return
		}
		app.reset()
	}); err != nil {
		return err
	}
	return rerr
}

func (app *App) reset() {
	app.controller.Reset()
	app.publish()
	app.Logger.Infof("app", "card reset")
}

// publish makes the latest composite and drag state visible to readers
// outside the event loop.
func (app *App) publish() {
	c := app.controller
	w, h := c.Compositor.Size()
	app.frame.Store(c.Visible().Clone())
	app.Store.UpdateCard(state.CardInfo{Width: w, Height: h, Dragging: c.Dragging(), Strokes: c.Strokes()})
}

// Frame returns the latest composited card, or nil while none is loaded.
func (app *App) Frame() image.Image {
	f := app.frame.Load()
	if f == nil {
		return nil
	}
	return f
}

// RenderPage draws the current screen into an offscreen page.
func (app *App) RenderPage() image.Image {
	return app.page.Render(app.currentScreen(), app.Store.Snapshot())
}

func (app *App) Snapshot() state.State {
	return app.Store.Snapshot()
}

func (app *App) setScreen(screen render.Screen) {
	app.screenMu.Lock()
	app.screen = screen
	app.screenMu.Unlock()
	app.Render.SetScreen(screen)
}

func (app *App) currentScreen() render.Screen {
	app.screenMu.Lock()
	defer app.screenMu.Unlock()
	return app.screen
}

// Start runs the whole lifecycle: renderer, web server, buttons, event loop
// and bootstrap. It returns when ctx is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	app.exitOnce.Store(false)

	if fb, ok := app.Render.(*render.FBRenderer); ok {
		fb.Logger = app.Logger
	}
	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	if app.Console != nil {
		app.Console.Logger = app.Logger
		_ = app.Console.EnterGraphics()
		defer func() { _ = app.Console.Restore() }()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.URL != "" {
		app.Store.UpdateNetwork(state.NetworkInfo{URL: app.URL})
		if !app.Config.Display.NoQRCode {
			qr, err := render.GenerateQRCodeImage(app.URL, 0)
			if err != nil {
				app.Logger.Errorf("app", "qr code: %v", err)
			}
			app.qr = qr
		}
	}

	if err := app.Web.Start(loopCtx); err != nil {
		app.Logger.Errorf("app", "web server start error: %v", err)
		return err
	}
	defer app.Web.Stop()

	if err := app.Buttons.Start(loopCtx); err != nil {
		app.Logger.Errorf("app", "buttons start error: %v", err)
	}
	defer app.Buttons.Stop()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = app.Run(loopCtx)
	}()
	go func() {
		defer wg.Done()
		app.Render.RunLoop(loopCtx, app.Store)
	}()
	go func() {
		defer wg.Done()
		app.watchButtons(loopCtx)
	}()

	go func() {
		if err := app.Load(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			app.Logger.Errorf("app", "bootstrap: %v", err)
		}
	}()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	cancel()
	wg.Wait()
	return err
}

func (app *App) watchButtons(ctx context.Context) {
	events := app.Buttons.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev {
			case buttons.Reset:
				if err := app.Reset(ctx); err != nil && !errors.Is(err, ErrNotReady) {
					app.Logger.Errorf("buttons", "reset: %v", err)
				}
			case buttons.Exit:
				app.Logger.Infof("buttons", "exit requested")
				app.Exit(nil)
			}
		}
	}
}
