package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/report"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints build statistics on a single line.
func printStats(rows, tasks, orphans int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d rows", rows),
		fmt.Sprintf("%d tasks", tasks),
	}
	if orphans > 0 {
		parts = append(parts, fmt.Sprintf("%d unplaced", orphans))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Println(line)
}

// =============================================================================
// Tables
// =============================================================================

// rowsTable renders a row model the way the chart draws its label columns:
// a depth cell is printed only where its rowspan starts, so merged cells
// read as blank continuation lines.
func rowsTable(m *gantt.Model, reg *task.Registry, tl report.Timeline) string {
	headers := make([]string, 0, len(m.Depths)+3)
	for _, d := range m.Depths {
		headers = append(headers, depthLabel(d, reg))
	}
	headers = append(headers, "Lanes", "Height", "Tasks")

	rows := make([][]string, 0, len(m.Rows))
	for _, row := range m.Rows {
		cells := make([]string, 0, len(headers))
		for i, v := range row.ColumnValues {
			if row.RowSpans[i] == 0 {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, v.String())
		}
		cells = append(cells,
			strconv.Itoa(row.Lanes),
			strconv.Itoa(row.Height),
			taskList(row.Tasks, tl))
		rows = append(rows, cells)
	}

	depths := len(m.Depths)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleTableHeader.Padding(0, 1)
			case col == depths || col == depths+1:
				return styleTableCell.Foreground(colorCyan)
			case col > depths+1:
				return styleTableCell.Foreground(colorGray)
			}
			return styleTableCell
		})
	return t.Render()
}

// depthLabel returns the column header for d.
func depthLabel(d gantt.Depth, reg *task.Registry) string {
	if d.Label != "" {
		return d.Label
	}
	if reg != nil {
		return reg.Label(d.Attribute)
	}
	return d.Attribute
}

// taskList summarizes the tasks of a row, one "id start..end Llane" per line.
func taskList(tasks []gantt.LanedTask, tl report.Timeline) string {
	if len(tasks) == 0 {
		return "-"
	}
	parts := make([]string, len(tasks))
	for i, lt := range tasks {
		parts[i] = fmt.Sprintf("%s %s..%s L%d",
			lt.Task.ID, tl.Format(lt.Task.Start), tl.Format(lt.Task.End), lt.Lane)
	}
	return strings.Join(parts, "\n")
}

// positionLabel renders a timeline position in percent.
func positionLabel(p *gantt.Position) string {
	if p == nil {
		return "-"
	}
	if !p.Visible {
		return "outside window"
	}
	s := fmt.Sprintf("%.2f%% +%.2f%%", p.Left, p.Width)
	if p.ClippedStart {
		s = "◂ " + s
	}
	if p.ClippedEnd {
		s += " ▸"
	}
	return s
}
