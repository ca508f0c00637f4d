package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rook-computer/scratchcard/internal/app"
	"github.com/rook-computer/scratchcard/internal/buttons"
	"github.com/rook-computer/scratchcard/internal/config"
	"github.com/rook-computer/scratchcard/internal/input"
	"github.com/rook-computer/scratchcard/internal/render"
	"github.com/rook-computer/scratchcard/internal/state"
	"github.com/rook-computer/scratchcard/internal/system"
	"github.com/rook-computer/scratchcard/internal/web"
)

type options struct {
	configPath string
	verbose    bool
	debugLog   string
	stdioLog   string
	noQRCode   bool
	listen     string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "scratchcard",
		Short:        "Scratch-off greeting card for the framebuffer",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&opts.debugLog, "debug-log", "", "also write logs to this file")
	flags.StringVar(&opts.stdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+config.EnvStdioLog)
	flags.BoolVar(&opts.noQRCode, "no-qrcode", false, "do not show the web address as a QR code while loading")
	flags.StringVar(&opts.listen, "listen", "", "http listen address; also configurable via "+config.EnvListenAddr)
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	stdioLog := opts.stdioLog
	if stdioLog == "" {
		stdioLog = os.Getenv(config.EnvStdioLog)
	}
	if err := system.RedirectStdIO(stdioLog); err != nil {
		fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
	}

	level := charmlog.InfoLevel
	if opts.verbose {
		level = charmlog.DebugLevel
	}
	var logger app.Logger = app.NewLogger(os.Stderr, level)
	if opts.debugLog != "" {
		f, err := os.OpenFile(opts.debugLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logger = app.MultiLogger{logger, app.NewLogger(f, charmlog.DebugLevel)}
	}

	cfg, err := config.Load(opts.configPath, ":80")
	if err != nil {
		return err
	}
	if opts.listen != "" {
		cfg.Web.ListenAddr = opts.listen
	}
	if cmd.Flags().Changed("no-qrcode") {
		cfg.Display.NoQRCode = opts.noQRCode
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := state.NewStore()
	renderer := render.NewFBRenderer(cfg.Display.Device, cfg.Display.PageWidth, cfg.Display.PageHeight)
	keys := buttons.NewKeyButtons()

	a := app.New(cfg, store, renderer, nil, keys)
	a.Logger = logger
	a.Console = &system.Console{}

	server := web.NewHTTPServer(cfg.Web.ListenAddr, web.ServerConfigFrom(cfg).Handler(a, logger), logger)
	a.Web = server

	if ip, err := system.IPv4(); err != nil {
		logger.Errorf("main", "no network address: %v", err)
	} else {
		a.URL = system.URL(cfg.Web.ListenAddr, ip)
	}

	reader := &input.Reader{
		Glob:       cfg.Input.Devices,
		PageWidth:  cfg.Display.PageWidth,
		PageHeight: cfg.Display.PageHeight,
		Logger:     logger,
		OnPointer: func(ev input.Event) {
			if _, err := a.HandlePointer(ctx, ev); err != nil && !errors.Is(err, app.ErrNotReady) && ctx.Err() == nil {
				logger.Errorf("input", "pointer: %v", err)
			}
		},
		OnKey: func(code uint16) { keys.Press(code) },
	}
	if err := reader.Start(ctx); err != nil {
		logger.Errorf("input", "evdev unavailable: %v", err)
	}

	logger.Infof("main", "scratchcard starting, page %dx%d", cfg.Display.PageWidth, cfg.Display.PageHeight)
	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("main", "app stopped: %v", err)
		return err
	}
	return nil
}
