package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// positionCommand creates the position command for locating one task on the
// report's timeline.
func (c *CLI) positionCommand() *cobra.Command {
	var (
		taskID    string
		format    string
		fromStore bool
	)

	cmd := &cobra.Command{
		Use:   "position [report] --task ID",
		Short: "Show where a task is drawn on the timeline",
		Long: `Show where a task is drawn on the report's timeline.

The left offset and width are percentages of the window spanning the
report's start and end years. Tasks reaching past either edge are clipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			return c.runPosition(cmd.Context(), args[0], taskID, format, fromStore, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&taskID, "task", "t", "", "task id (required)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "look the task up in the configured store")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

type positionResult struct {
	Task     task.Task      `json:"task"`
	Window   gantt.Window   `json:"window"`
	Position gantt.Position `json:"position"`
	Days     int            `json:"days"`
}

func (c *CLI) runPosition(ctx context.Context, input, id, format string, fromStore bool, out io.Writer) error {
	rep, err := c.loadReport(ctx, input, fromStore)
	if err != nil {
		return err
	}
	window, err := rep.Timeline.Window()
	if err != nil {
		return err
	}

	var found *task.Task
	for i := range rep.Tasks {
		if rep.Tasks[i].ID == id {
			found = &rep.Tasks[i]
			break
		}
	}
	if found == nil {
		return errors.New(errors.ErrCodeTaskNotFound, "task %q not found", id)
	}

	res := positionResult{
		Task:     *found,
		Window:   window,
		Position: window.Position(*found),
		Days:     found.Duration(),
	}

	if format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	tl := rep.Timeline
	fmt.Fprintln(out, StyleTitle.Render("Task "+res.Task.ID))
	printKeyValue("Dates", fmt.Sprintf("%s → %s", tl.Format(res.Task.Start), tl.Format(res.Task.End)))
	printKeyValue("Duration", strconv.Itoa(res.Days)+" days")
	printKeyValue("Window", res.Window.String())
	printKeyValue("Position", positionLabel(&res.Position))
	if !res.Position.Visible {
		printWarning("Task lies outside %d–%d", tl.StartYear, tl.EndYear)
	}
	return nil
}
