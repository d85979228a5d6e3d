package gantt

import (
	"fmt"
	"math"
	"time"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// Window is the visible span of the timeline: whole calendar days from
// First through Last inclusive.
type Window struct {
	First task.Date `json:"start"`
	Last  task.Date `json:"end"`
}

// NewWindow returns the window covering January 1 of startYear through
// December 31 of endYear.
func NewWindow(startYear, endYear int) (Window, error) {
	if err := errors.ValidateYearRange(startYear, endYear); err != nil {
		return Window{}, err
	}
	return Window{
		First: task.NewDate(startYear, 1, 1),
		Last:  task.NewDate(endYear, 12, 31),
	}, nil
}

// NewWindowDates returns the window from first through last inclusive.
func NewWindowDates(first, last task.Date) (Window, error) {
	w := Window{First: first, Last: last}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate rejects windows that cover no days.
func (w Window) Validate() error {
	if w.First.IsZero() || w.Last.IsZero() {
		return errors.New(errors.ErrCodeDegenerateTimeline, "timeline window is not set")
	}
	if w.TotalDays() <= 0 {
		return errors.New(errors.ErrCodeDegenerateTimeline, "timeline window %s..%s covers no days", w.First, w.Last)
	}
	return nil
}

// TotalDays counts the days of the window, both ends included.
func (w Window) TotalDays() int {
	if w.First.IsZero() || w.Last.IsZero() {
		return 0
	}
	return w.Last.DaysSince(w.First) + 1
}

// end is the first day after the window.
func (w Window) end() task.Date { return w.Last.AddDays(1) }

func (w Window) String() string { return fmt.Sprintf("%s..%s", w.First, w.Last) }

// Position places a bar on the timeline, in percent of the window width.
type Position struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`

	// Visible is false when the task lies entirely outside the window.
	Visible bool `json:"visible"`

	// ClippedStart and ClippedEnd report that the task extends past the
	// left or right edge and only the visible part is drawn.
	ClippedStart bool `json:"clippedStart,omitempty"`
	ClippedEnd   bool `json:"clippedEnd,omitempty"`
}

// Position maps t onto w. Left is the offset of the visible start and Width
// the visible duration, both as percentages of the window. Width is at least
// 1 so zero-length tasks stay visible; Left is capped at 99 so Left+Width
// never exceeds 100. Tasks starting before the window are clipped at the
// left edge. An invalid window yields the zero Position.
func (w Window) Position(t task.Task) Position {
	total := w.TotalDays()
	if total <= 0 {
		return Position{}
	}

	startDays := t.Start.DaysSince(w.First)
	endDays := t.End.DaysSince(w.First)

	visStart := max(startDays, 0)
	visEnd := min(endDays, total)
	visible := startDays < total && (endDays > 0 || (startDays == endDays && startDays >= 0))

	left := math.Min(float64(visStart)/float64(total)*100, 99)
	width := 0.0
	if visEnd > visStart {
		width = float64(visEnd-visStart) / float64(total) * 100
	}
	width = math.Max(1, math.Min(100-left, width))

	return Position{
		Left:         left,
		Width:        width,
		Visible:      visible,
		ClippedStart: startDays < 0,
		ClippedEnd:   endDays > total,
	}
}

// Offset returns the date at pct percent of the window, rounded to a whole day.
func (w Window) Offset(pct float64) task.Date {
	return w.First.AddDays(w.DaysForPercent(pct))
}

// Years lists the calendar years the window touches.
func (w Window) Years() []int {
	if w.TotalDays() <= 0 {
		return nil
	}
	years := make([]int, 0, w.Last.Year()-w.First.Year()+1)
	for y := w.First.Year(); y <= w.Last.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// Scale selects the granularity of timeline header columns.
type Scale string

const (
	ScaleYear    Scale = "year"
	ScaleQuarter Scale = "quarter"
	ScaleMonth   Scale = "month"
)

// PerYear returns the number of columns the scale draws per year.
func (s Scale) PerYear() int {
	switch s {
	case ScaleQuarter:
		return 4
	case ScaleMonth:
		return 12
	default:
		return 1
	}
}

// ParseScale converts a scale name, defaulting to ScaleYear.
func ParseScale(s string) (Scale, error) {
	switch Scale(s) {
	case "", ScaleYear:
		return ScaleYear, nil
	case ScaleQuarter, ScaleMonth:
		return Scale(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown timeline scale %q (want year, quarter or month)", s)
}

// Column is one header cell of the timeline.
type Column struct {
	Label string    `json:"label"`
	Year  int       `json:"year"`
	First task.Date `json:"start"`
	Last  task.Date `json:"end"`
	Left  float64   `json:"left"`
	Width float64   `json:"width"`
}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Columns returns the header cells of the window at the given scale,
// clipped to the window. Widths are proportional to days.
func (w Window) Columns(scale Scale) []Column {
	total := w.TotalDays()
	if total <= 0 {
		return nil
	}
	per := scale.PerYear()
	step := 12 / per

	var cols []Column
	for _, y := range w.Years() {
		for i := 0; i < per; i++ {
			first := task.NewDate(y, time.Month(1+i*step), 1)
			next := task.NewDate(y, time.Month(1+(i+1)*step), 1)
			if next.Compare(w.First) <= 0 || !first.Before(w.end()) {
				continue
			}
			if first.Before(w.First) {
				first = w.First
			}
			if next.After(w.end()) {
				next = w.end()
			}
			cols = append(cols, Column{
				Label: columnLabel(scale, y, i),
				Year:  y,
				First: first,
				Last:  next.AddDays(-1),
				Left:  float64(first.DaysSince(w.First)) / float64(total) * 100,
				Width: float64(next.DaysSince(first)) / float64(total) * 100,
			})
		}
	}
	return cols
}

func columnLabel(scale Scale, year, i int) string {
	switch scale {
	case ScaleQuarter:
		return fmt.Sprintf("Q%d", i+1)
	case ScaleMonth:
		return monthLabels[i]
	default:
		return fmt.Sprint(year)
	}
}
