package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenthands/deren/internal/app"
	"github.com/agenthands/deren/internal/core"
	"github.com/agenthands/deren/internal/core/graph"
	"github.com/agenthands/deren/internal/core/mission"
	"github.com/agenthands/deren/internal/core/model"
)

// open builds an App and loads the project file into it, if present.
func (o *options) open(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, o.cfg, o.logger)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(o.projectPath)
	if errors.Is(err, fs.ErrNotExist) {
		return a, nil
	}
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	defer f.Close()

	if _, err := a.Deren.LoadProject(f); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to load %s: %w", o.projectPath, err)
	}
	return a, nil
}

func (o *options) save(d *core.Deren) (err error) {
	tmp := o.projectPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := d.SaveProject(f, o.title); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, o.projectPath)
}

func newRunCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [command...]",
		Short: "Run a research mission or a canvas command",
		Long: `Runs one terminal command against the project.

Examples:
  deren run "Impact of remote work on productivity"
  deren run create canvas page`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			out := cmd.OutOrStdout()
			res, err := a.Deren.HandleCommand(ctx, strings.Join(args, " "), func(p mission.Progress) {
				fmt.Fprintf(out, "[%3.0f%%] %s\n", p.Percent, p.Message)
			})
			if err != nil {
				return err
			}

			switch res.Kind {
			case core.CommandCanvas:
				fmt.Fprintf(out, "Created canvas page %s\n", res.Canvas.ID)
			default:
				fmt.Fprintf(out, "Generated %d nodes and %d connections\n", len(res.Batch.Nodes), len(res.Batch.Connections))
			}
			return o.save(a.Deren)
		},
	}
}

func newSeedCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace the project with the demo mind map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), o.cfg, o.logger)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			if err := a.Deren.Seed(); err != nil {
				return err
			}
			if err := o.save(a.Deren); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote demo graph to %s\n", o.projectPath)
			return nil
		},
	}
}

func newShowCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the nodes and connections of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			nodes, conns := a.Deren.Graph.Snapshot()
			labels := make(map[string]string, len(nodes))
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Nodes (%d):\n", len(nodes))
			for _, n := range nodes {
				labels[n.ID] = n.Label
				fmt.Fprintf(out, "  %-8s %-40s (%.0f, %.0f)\n", n.Type, n.Label, n.Position.X, n.Position.Y)
			}
			fmt.Fprintf(out, "Connections (%d):\n", len(conns))
			for _, c := range conns {
				fmt.Fprintf(out, "  %s -[%s %.1f]-> %s\n", labels[c.From], c.Type, c.Strength, labels[c.To])
			}
			clusters := graph.Clusters(nodes, conns)
			fmt.Fprintf(out, "Clusters (%d):\n", len(clusters))
			for _, cl := range clusters {
				names := make([]string, len(cl.NodeIDs))
				for i, id := range cl.NodeIDs {
					names[i] = labels[id]
				}
				fmt.Fprintf(out, "  %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newSearchCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Find nodes matching a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			hits, err := a.Deren.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}
			for _, h := range hits {
				fmt.Fprintf(out, "%.3f  %s  %s\n", h.Score, typeLabel(h.Node), h.Node.ID)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", core.DefaultSearchLimit, "Maximum results")
	return cmd
}

func typeLabel(n model.Node) string {
	return fmt.Sprintf("[%s] %s", n.Type, n.Label)
}
