package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/rook-computer/scratchcard/internal/app"
	"github.com/rook-computer/scratchcard/internal/config"
	"github.com/rook-computer/scratchcard/internal/loader"
	"github.com/rook-computer/scratchcard/internal/render"
	"github.com/rook-computer/scratchcard/internal/state"
	"github.com/rook-computer/scratchcard/internal/system"
	"github.com/rook-computer/scratchcard/internal/web"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		listen     string
		devMode    bool
		staticDir  string
		background string
		foreground string
	)
	cmd := &cobra.Command{
		Use:          "scratchcard-sim",
		Short:        "Serve the scratch card to a browser",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, ":8080")
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("listen") {
				cfg.Web.ListenAddr = listen
			}
			if flags.Changed("dev") {
				cfg.Web.DevMode = devMode
			}
			if flags.Changed("static-dir") {
				cfg.Web.StaticDir = staticDir
			}
			if flags.Changed("background") {
				cfg.Images.Background = background
			}
			if flags.Changed("foreground") {
				cfg.Images.Foreground = foreground
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			return run(cmd.Context(), cfg, app.NewLogger(os.Stderr, level))
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&listen, "listen", "", "http listen address; also configurable via "+config.EnvListenAddr)
	flags.BoolVar(&devMode, "dev", false, "enable dev mode; also configurable via "+config.EnvDevMode)
	flags.StringVar(&staticDir, "static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	flags.StringVar(&background, "background", "", "background image path or URL; also configurable via "+config.EnvBackground)
	flags.StringVar(&foreground, "foreground", "", "foreground image path or URL; also configurable via "+config.EnvForeground)
	return cmd
}

func run(parent context.Context, cfg config.Config, logger app.Logger) error {
	processCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	control := NewSimControl(processCtx)

	a := app.New(cfg, state.NewStore(), &render.NoopRenderer{}, nil, nil)
	a.Logger = logger
	a.Opener = control.Opener(loader.DefaultOpener{})
	control.app = a

	router := chi.NewRouter()
	registerSimEndpoints(router, control)
	router.Mount("/", web.ServerConfigFrom(cfg).Handler(a, logger))

	server := web.NewHTTPServer(cfg.Web.ListenAddr, router, logger)
	a.Web = server

	host := "127.0.0.1"
	if ip, err := system.IPv4(); err == nil {
		host = ip
	}
	a.URL = system.URL(cfg.Web.ListenAddr, host)

	fmt.Println("Scratchcard simulator listening on", cfg.Web.ListenAddr)
	fmt.Println("Open:", a.URL)
	fmt.Println("API:", a.URL+"api/v1/")

	if err := a.Start(processCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
