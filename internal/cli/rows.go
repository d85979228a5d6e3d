package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/pipeline"
)

// rowsCommand creates the rows command for building one row group.
func (c *CLI) rowsCommand() *cobra.Command {
	var (
		group  string
		format string
		output string
		flags  buildFlags
	)

	cmd := &cobra.Command{
		Use:   "rows [report]",
		Short: "Build the Gantt rows of a row group",
		Long: `Build the Gantt rows of a row group.

The rows command reads a report (JSON, YAML or TOML), builds every
combination of the group's attribute values as a row, stacks overlapping
tasks into lanes and positions them on the report's timeline.

Merged label cells are printed once at the top of their span. Results are
cached locally for faster subsequent runs.`,
		Example: `  flexgantt rows report.json
  flexgantt rows report.yaml --group row-2 --format json -o rows.json
  flexgantt rows report.json --from-store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return c.runRows(cmd.Context(), rowsParams{
				input:     args[0],
				group:     group,
				format:    format,
				output:    output,
				noCache:   flags.noCache,
				fromStore: flags.fromStore,
				opts:      flags.options(c, cmd),
				out:       cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "row group id (default: the first group)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	flags.register(cmd)

	return cmd
}

type rowsParams struct {
	input     string
	group     string
	format    string
	output    string
	noCache   bool
	fromStore bool
	opts      pipeline.Options
	out       io.Writer
}

// runRows loads the report, builds the selected group and writes it.
func (c *CLI) runRows(ctx context.Context, p rowsParams) error {
	rep, err := c.loadReport(ctx, p.input, p.fromStore)
	if err != nil {
		return err
	}
	g, err := selectGroup(rep, p.group)
	if err != nil {
		return err
	}
	window, err := rep.Timeline.Window()
	if err != nil {
		return err
	}
	opts := p.opts
	opts.Window = &window

	runner, err := c.newRunner(ctx, p.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building rows for %s...", g.ID))
	spinner.Start()

	model, cacheHit, err := runner.BuildRowsWithCacheInfo(ctx, rep.Tasks, g, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build rows: %w", err)
	}
	spinner.Stop()

	w := p.out
	if p.output != "" {
		f, err := os.Create(p.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.output, err)
		}
		defer f.Close()
		w = f
	}

	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(model)
	default:
		_, err = fmt.Fprintln(w, rowsTable(model, opts.Registry, rep.Timeline))
	}
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	if p.output != "" {
		printSuccess("Built %s", groupTitle(g))
		printFile(p.output)
	}
	printStats(len(model.Rows), model.TaskCount(), len(model.Orphans), cacheHit)
	if len(model.Orphans) > 0 {
		printWarning("Tasks without a value for every depth: %s", strings.Join(model.Orphans, ", "))
	}
	return nil
}

// groupTitle names a row group for display.
func groupTitle(g gantt.RowGroup) string {
	if g.Name != "" {
		return fmt.Sprintf("%s (%s)", g.Name, g.ID)
	}
	return g.ID
}
