package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/quality"
	"github.com/matzehuels/archlayout/pkg/swimlane"
)

// containersCommand creates the containers command.
func (c *CLI) containersCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "containers [graph.json]",
		Short: "Build layer containers for a positioned, classified graph",
		Long: `Build layer containers for a positioned, classified graph.

One container is built per layer that has at least one positioned node.
Nodes without a layer_index are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			builder := swimlane.NewBuilder(c.Config.ThemeRegistry(), c.Config.Swimlane.Containers)
			containers := builder.Build(g.Nodes, nil)

			path := outputPath(args[0], output, "containers")
			if err := writeOutput(cmd.OutOrStdout(), path, map[string]any{"containers": containers}); err != nil {
				return err
			}
			p := printer{cmd.ErrOrStderr()}
			p.success("Built %d containers", len(containers))
			for _, ct := range containers {
				p.detail("%-10s %-28s %.0fx%.0f at (%.0f, %.0f)", ct.ID, ct.Theme.Label, ct.Width, ct.Height, ct.X, ct.Y)
			}
			if path != "" {
				p.file(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.containers.json, - for stdout)")
	return cmd
}

// qualityCommand creates the quality command.
func (c *CLI) qualityCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "quality [graph.json]",
		Short: "Score the node positions of a graph",
		Long: `Score the node positions of a graph.

The score combines an overlap penalty, spacing regularity and alignment into
a value between 0 and 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			rep := quality.Breakdown(g.Nodes)
			if asJSON {
				return writeOutput(cmd.OutOrStdout(), "", rep)
			}

			p := printer{cmd.OutOrStdout()}
			p.keyValue("score", fmt.Sprintf("%.3f", rep.Score))
			p.keyValue("nodes", fmt.Sprint(rep.Nodes))
			p.keyValue("overlaps", fmt.Sprint(rep.OverlappingPairs))
			p.keyValue("overlap", fmt.Sprintf("-%.3f", rep.OverlapPenalty))
			p.keyValue("spacing", fmt.Sprintf("%.3f", rep.Spacing))
			p.keyValue("alignment", fmt.Sprintf("%.3f", rep.Alignment))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
