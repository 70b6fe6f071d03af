package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/taigrr/meshpick/internal/config"
	"github.com/taigrr/meshpick/internal/logger"
	"github.com/taigrr/meshpick/pkg/viewer"
)

// viewerOptions maps the config onto viewer settings.
func viewerOptions(cfg *config.Config) (viewer.Options, error) {
	opts := viewer.DefaultOptions()

	bg, err := config.ParseColor(cfg.Viewer.Background)
	if err != nil {
		return opts, fmt.Errorf("background: %w", err)
	}
	highlight, err := config.ParseColor(cfg.Highlight.Color)
	if err != nil {
		return opts, fmt.Errorf("highlight color: %w", err)
	}

	opts.FPS = cfg.Viewer.FPS
	opts.Background = bg
	opts.ScreenshotPath = cfg.Viewer.Screenshot

	opts.Alpha = cfg.Camera.Alpha
	opts.Beta = cfg.Camera.Beta
	opts.Radius = cfg.Camera.Radius
	opts.MinRadius = cfg.Camera.MinRadius
	opts.FrameRadius = cfg.Camera.FrameRadius
	opts.FOV = cfg.Camera.FOV

	opts.HighlightColor = highlight
	opts.EdgeWidth = cfg.Highlight.EdgeWidth
	opts.HighlightScale = cfg.Highlight.Scale
	opts.FadeAlpha = cfg.Highlight.FadeAlpha
	opts.ScaleStep = cfg.Highlight.ScaleStep

	opts.Logger = logger.Named("viewer")
	return opts, nil
}

// newViewer builds the viewer and loads path into it. A model that fails
// to load leaves an empty scene; the failure shows in the status bar.
func newViewer(cfg *config.Config, path string) (*viewer.Viewer, error) {
	opts, err := viewerOptions(cfg)
	if err != nil {
		return nil, err
	}

	title := "meshpick"
	if path != "" {
		title = filepath.Base(path)
	}
	v := viewer.New(title, opts)

	if path == "" {
		return v, nil
	}
	if err := v.LoadModel(path); err != nil {
		logger.Log.Error("load model", zap.String("path", path), zap.Error(err))
	} else {
		logger.Log.Info("model loaded", zap.String("path", path), zap.String("scene", v.Scene().Summary()))
	}
	return v, nil
}

func runViewer(ctx context.Context, cfg *config.Config, path string) error {
	v, err := newViewer(cfg, path)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event tracking so drags report motion; SGR for wide terminals.
	fmt.Fprint(os.Stdout, ansi.SetModeMouseAnyEvent)
	fmt.Fprint(os.Stdout, ansi.SetModeMouseExtSgr)

	defer func() {
		fmt.Fprint(os.Stdout, ansi.ResetModeMouseAnyEvent)
		fmt.Fprint(os.Stdout, ansi.ResetModeMouseExtSgr)
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			logger.Log.Warn("terminal shutdown", zap.Error(err))
		}
	}()

	v.Resize(width, height)

	// Events and frames share this goroutine, so the viewer needs no locking.
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Viewer.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-term.Events():
			if !ok {
				return nil
			}
			if size, isSize := ev.(uv.WindowSizeEvent); isSize {
				term.Erase()
				term.Resize(size.Width, size.Height)
			}
			if !v.HandleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			v.Update()
			term.Draw(v)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
