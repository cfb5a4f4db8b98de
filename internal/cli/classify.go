package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlayout/pkg/classify"
	"github.com/matzehuels/archlayout/pkg/graph"
)

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	var (
		output      string
		explain     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "classify [graph.json]",
		Short: "Assign semantic architecture layers to nodes",
		Long: `Assign semantic architecture layers to nodes.

Every node without a layer_index is scored against the rule table and given
the layer with the highest score. Nodes scoring below the confidence
threshold fall back to their position in the graph: pure sources become
clients, pure sinks become data stores, everything else a service.

--explain prints the scoring per node instead of writing the graph;
--interactive opens a browser over the same information.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			classifier := classify.New(
				classify.WithThreshold(c.Config.Classifier.Threshold),
				classify.WithLogger(c.Logger),
			)

			switch {
			case interactive:
				m := NewExplainModel(classifier.ExplainAll(g.Nodes, g.Edges))
				_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			case explain:
				fmt.Fprintln(cmd.OutOrStdout(), explainTable(classifier.ExplainAll(g.Nodes, g.Edges)))
				if output == "" {
					return nil
				}
			}

			prog := newProgress(c.Logger)
			classified := graph.Graph{Nodes: classifier.Classify(g.Nodes, g.Edges), Edges: g.Edges}
			prog.done(fmt.Sprintf("Classified %d nodes", classified.Len()))

			path := outputPath(args[0], output, "classified")
			if err := writeOutput(cmd.OutOrStdout(), path, classified); err != nil {
				return err
			}
			p := printer{cmd.ErrOrStderr()}
			p.success("Classification complete")
			if path != "" {
				p.file(path)
				p.newline()
				p.nextStep("Lay out in swim lanes", appName+" grouped "+path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.classified.json, - for stdout)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print per-node scores")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the classification interactively")

	return cmd
}
