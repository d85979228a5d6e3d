package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/pipeline"
	"github.com/flexgantt/flexgantt/pkg/report"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// browseCommand creates the browse command, an interactive view of every row
// group of a report.
func (c *CLI) browseCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "browse [report]",
		Short: "Explore the rows of a report interactively",
		Long: `Explore the rows of a report interactively.

All row groups are built up front. Switch groups with tab, move between rows
with the arrow keys and press enter to see the tasks of a row drawn on the
timeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args[0], flags.options(c, cmd), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, opts pipeline.Options, flags buildFlags) error {
	rep, err := c.loadReport(ctx, input, flags.fromStore)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building row groups...")
	spinner.Start()
	result, err := runner.BuildReport(ctx, rep, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	m := newBrowseModel(rep, result, opts.Registry)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	barStyle          = lipgloss.NewStyle().Foreground(colorGreen)
)

// barWidth is the character width of the timeline sketch in the detail pane.
const barWidth = 48

// =============================================================================
// browseModel - Interactive row browser
// =============================================================================

// browseModel is the bubbletea model behind the browse command.
type browseModel struct {
	summary  string
	timeline report.Timeline
	registry *task.Registry
	groups   []pipeline.GroupResult

	group  int
	cursor int
	offset int
	height int
	detail bool
}

func newBrowseModel(rep *report.Report, result *pipeline.Result, reg *task.Registry) browseModel {
	return browseModel{
		summary:  rep.Summary,
		timeline: rep.Timeline,
		registry: reg,
		groups:   result.Groups,
		height:   15,
	}
}

func (m browseModel) rows() []gantt.Row {
	if len(m.groups) == 0 || m.groups[m.group].Model == nil {
		return nil
	}
	return m.groups[m.group].Model.Rows
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit
		case "tab", "right", "l":
			if len(m.groups) > 0 {
				m = m.selectGroup((m.group + 1) % len(m.groups))
			}
		case "shift+tab", "left", "h":
			if len(m.groups) > 0 {
				m = m.selectGroup((m.group + len(m.groups) - 1) % len(m.groups))
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows())-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ":
			if len(m.rows()) > 0 {
				m.detail = !m.detail
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m browseModel) selectGroup(i int) browseModel {
	m.group = i
	m.cursor = 0
	m.offset = 0
	m.detail = false
	return m
}

func (m browseModel) View() string {
	var b strings.Builder

	title := "Gantt rows"
	if m.summary != "" {
		title = m.summary
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab switch group  ↑/↓ navigate  ⏎ tasks  q quit"))
	b.WriteString("\n\n")

	if len(m.groups) == 0 {
		b.WriteString(listDimStyle.Render("  report has no row groups"))
		return b.String()
	}

	for i, g := range m.groups {
		name := " " + groupTitle(gantt.RowGroup{ID: g.ID, Name: g.Name}) + " "
		if i == m.group {
			b.WriteString(listSelectedStyle.Render("[" + name + "]"))
		} else {
			b.WriteString(listNormalStyle.Render(" " + name + " "))
		}
	}
	b.WriteString("\n")

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("  no rows"))
		return b.String()
	}

	b.WriteString(m.rowTable(rows))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(rows))))

	if m.detail {
		b.WriteString("\n\n")
		b.WriteString(m.detailView(rows[m.cursor]))
	}
	return b.String()
}

// rowTable renders the visible window of rows. Depth cells hidden by a
// rowspan above stay blank unless they are the first visible line.
func (m browseModel) rowTable(rows []gantt.Row) string {
	model := m.groups[m.group].Model
	headers := []string{""}
	for _, d := range model.Depths {
		headers = append(headers, depthLabel(d, m.registry))
	}
	headers = append(headers, "Lanes", "Tasks")

	end := min(m.offset+m.height, len(rows))
	cells := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		row := rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := []string{cursor}
		for d, v := range row.ColumnValues {
			if row.RowSpans[d] == 0 && i != m.offset {
				line = append(line, "")
				continue
			}
			line = append(line, v.String())
		}
		line = append(line, strconv.Itoa(row.Lanes), strconv.Itoa(len(row.Tasks)))
		cells = append(cells, line)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			idx := m.offset + row
			switch {
			case idx == m.cursor:
				return listSelectedStyle
			case idx < len(rows) && len(rows[idx].Tasks) == 0:
				return listDimStyle
			case col > len(model.Depths):
				return StyleNumber
			}
			return listNormalStyle
		})
	return t.Render()
}

// detailView lists the tasks of row with a sketch of their bars.
func (m browseModel) detailView(row gantt.Row) string {
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(row.ColumnValues.String()))
	b.WriteString("\n")
	if len(row.Tasks) == 0 {
		b.WriteString(listDimStyle.Render("  no tasks"))
		return b.String()
	}
	for _, lt := range row.Tasks {
		fmt.Fprintf(&b, "  %-6s %s  %s  %s\n",
			lt.Task.ID,
			StyleDim.Render(fmt.Sprintf("L%d", lt.Lane)),
			timelineBar(lt.Position, barWidth),
			StyleDim.Render(m.timeline.Format(lt.Task.Start)+" → "+m.timeline.Format(lt.Task.End)))
	}
	return b.String()
}

// timelineBar draws p on a track of width characters.
func timelineBar(p *gantt.Position, width int) string {
	track := []rune(strings.Repeat("·", width))
	if p == nil || !p.Visible {
		return listDimStyle.Render(string(track))
	}
	start := min(int(p.Left/100*float64(width)), width-1)
	n := max(int(p.Width/100*float64(width)+0.5), 1)
	end := min(start+n, width)
	return listDimStyle.Render(string(track[:start])) +
		barStyle.Render(strings.Repeat("█", end-start)) +
		listDimStyle.Render(string(track[end:]))
}
