package main

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshpick/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4040"))
	nameStyle  = lipgloss.NewStyle().Width(24)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.glb>",
		Short: "List the meshes and materials of a GLB model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := models.NewGLTFLoader().Load(args[0])
			if err != nil {
				return err
			}
			writeInfo(cmd.OutOrStdout(), model)
			return nil
		},
	}
}

// writeInfo prints one line per mesh followed by totals.
func writeInfo(w io.Writer, model *models.Model) {
	fmt.Fprintln(w, titleStyle.Render(model.Name))

	materials := make(map[*models.Material]struct{})
	for _, m := range model.Meshes {
		mat := dimStyle.Render("(no material)")
		if m.Material != nil {
			materials[m.Material] = struct{}{}
			mat = fmt.Sprintf("%s %s", m.Material.Name, dimStyle.Render(m.Material.Kind.String()))
		}
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(m.Name),
			fmt.Sprintf("%6d tris  ", m.TriangleCount()),
			mat,
		))
	}

	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d meshes, %d triangles, %d materials",
		len(model.Meshes), model.TriangleCount(), len(materials))))
}
