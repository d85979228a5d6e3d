package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/report"
	"github.com/flexgantt/flexgantt/pkg/store"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// exportCommand creates the export command that writes stored tasks into a
// report file.
func (c *CLI) exportCommand() *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "export [output]",
		Short: "Write the stored tasks to a report file",
		Long: `Write the stored tasks to a report file.

The encoding follows the file extension (.json, .yaml, .yml, .toml). The
timeline, row groups and appearance come from --template when given, or
from the default report otherwise.`,
		Example: `  flexgantt export chart.json
  flexgantt export chart.yaml --template base.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], template)
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "report whose settings the export reuses")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, output, template string) error {
	rep := report.Default()
	if template != "" {
		t, err := report.Import(template)
		if err != nil {
			return fmt.Errorf("load template: %w", err)
		}
		rep = t
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	prog := newProgress(loggerFromContext(ctx))
	tasks, err := st.List(ctx)
	if err != nil {
		return err
	}
	rep.Tasks = tasks
	if err := report.Export(rep, output); err != nil {
		return err
	}
	prog.done("exported tasks", "count", len(tasks), "path", output)

	printSuccess("Exported %d tasks", len(tasks))
	printFile(output)
	printNextStep("Build rows", appName+" rows "+output)
	return nil
}

// importCommand creates the import command that loads report tasks into the
// store.
func (c *CLI) importCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [report]",
		Short: "Load the tasks of a report into the store",
		Long: `Load the tasks of a report into the store.

Tasks whose id already exists are updated; the others are created. Tasks
without an id get one assigned by the store. The report is validated
before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the report without writing")
	return cmd
}

// importStats counts the outcome of an import.
type importStats struct {
	created int
	updated int
}

func (c *CLI) runImport(ctx context.Context, input string, dryRun bool) error {
	rep, err := report.Import(input)
	if err != nil {
		return err
	}
	reg := task.DefaultRegistry()
	if err := rep.Validate(reg); err != nil {
		return err
	}
	if dryRun {
		printSuccess("%s is valid: %d tasks, %d row groups", input, len(rep.Tasks), len(rep.Structure))
		return nil
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	prog := newProgress(loggerFromContext(ctx))
	stats, err := importTasks(ctx, st, reg, rep.Tasks)
	if err != nil {
		return err
	}
	prog.done("imported tasks", "created", stats.created, "updated", stats.updated)

	printSuccess("Imported %s", input)
	printKeyValue("Created", fmt.Sprintf("%d", stats.created))
	printKeyValue("Updated", fmt.Sprintf("%d", stats.updated))
	return nil
}

// importTasks upserts tasks into st, stopping at the first failure.
func importTasks(ctx context.Context, st store.Store, reg *task.Registry, tasks []task.Task) (importStats, error) {
	var stats importStats
	for _, t := range tasks {
		if unknown := reg.Unknown(t.Attributes); len(unknown) > 0 {
			return stats, errors.New(errors.ErrCodeInvalidTask, "task %q has unknown attributes %v", t.ID, unknown)
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if t.ID != "" {
			_, err := st.Get(ctx, t.ID)
			switch {
			case err == nil:
				if _, err := st.Update(ctx, t); err != nil {
					return stats, fmt.Errorf("update task %s: %w", t.ID, err)
				}
				stats.updated++
				continue
			case !errors.IsNotFound(err):
				return stats, err
			}
		}
		if _, err := st.Create(ctx, t); err != nil {
			return stats, fmt.Errorf("create task %s: %w", t.ID, err)
		}
		stats.created++
	}
	return stats, nil
}
