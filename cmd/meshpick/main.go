// meshpick - Terminal GLB Viewer with mesh selection
// Click a mesh to highlight it; everything else fades out.
//
// Controls:
//
//	Click       - Select a mesh (click it again to deselect)
//	Mouse drag  - Orbit the camera
//	Scroll      - Zoom in/out
//	W/A/S/D     - Orbit (arrow keys work too)
//	Del         - Delete the selected mesh
//	G           - Scale the selected mesh by the scale step
//	R           - Reset the camera
//	P           - Save a PNG screenshot
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Clear selection (quit when nothing is selected)
//	Q           - Quit
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshpick/internal/config"
	"github.com/taigrr/meshpick/internal/logger"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	overrides *config.Overrides
	cfg       *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "meshpick [model.glb]",
		Short: "View GLB models in the terminal and pick meshes",
		Long: `meshpick renders a GLB model in the terminal. Click a mesh to
highlight it in the highlight color; every other mesh fades. The button bar
deletes or scales the selected mesh.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Sync()
		},
		RunE: a.view,
	}
	a.overrides = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "view [model.glb]",
			Short: "Open the interactive viewer (the default command)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  a.view,
		},
		newInfoCmd(),
		newConfigCmd(a),
	)
	return root
}

// view opens the model named on the command line, or the configured one.
func (a *app) view(cmd *cobra.Command, args []string) error {
	path := a.cfg.Viewer.Model
	if len(args) > 0 {
		path = args[0]
	}
	return runViewer(cmd.Context(), a.cfg, path)
}

// setup loads the config and starts file logging.
func (a *app) setup() error {
	cfg, err := config.Load(a.overrides)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, false)
}
