package gantt

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func mustWindow(t *testing.T, start, end int) Window {
	t.Helper()
	w, err := NewWindow(start, end)
	if err != nil {
		t.Fatalf("NewWindow(%d, %d) error: %v", start, end, err)
	}
	return w
}

func TestNewWindow(t *testing.T) {
	w := mustWindow(t, 2022, 2022)
	if got := w.TotalDays(); got != 365 {
		t.Errorf("TotalDays() = %d, want 365", got)
	}
	if got := mustWindow(t, 2022, 2026).TotalDays(); got != 1826 {
		t.Errorf("TotalDays(2022-2026) = %d, want 1826", got)
	}

	_, err := NewWindow(2026, 2022)
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("NewWindow(2026, 2022) error = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestWindowValidate(t *testing.T) {
	if err := (Window{}).Validate(); !errors.Is(err, errors.ErrCodeDegenerateTimeline) {
		t.Errorf("zero Window Validate() = %v, want DEGENERATE_TIMELINE", err)
	}
	_, err := NewWindowDates(task.MustParseDate("2022-05-01"), task.MustParseDate("2022-04-01"))
	if !errors.Is(err, errors.ErrCodeDegenerateTimeline) {
		t.Errorf("reversed NewWindowDates() = %v, want DEGENERATE_TIMELINE", err)
	}
	w, err := NewWindowDates(task.MustParseDate("2022-05-01"), task.MustParseDate("2022-05-01"))
	if err != nil || w.TotalDays() != 1 {
		t.Errorf("one-day window = %v, %v", w.TotalDays(), err)
	}
	if p := (Window{}).Position(mk("x", "2022-01-01", "2022-01-02")); p != (Position{}) {
		t.Errorf("Position() on zero window = %+v, want zero", p)
	}
}

func TestPosition(t *testing.T) {
	w := mustWindow(t, 2022, 2022)
	tests := []struct {
		name        string
		task        task.Task
		left, width float64
		visible     bool
		clipStart   bool
		clipEnd     bool
	}{
		{
			name:    "mid year",
			task:    mk("x", "2022-07-02", "2022-07-12"),
			left:    182.0 / 365 * 100,
			width:   10.0 / 365 * 100,
			visible: true,
		},
		{
			name:      "starts before window",
			task:      mk("x", "2021-06-01", "2022-01-11"),
			left:      0,
			width:     10.0 / 365 * 100,
			visible:   true,
			clipStart: true,
		},
		{
			name:    "zero length",
			task:    mk("x", "2022-03-01", "2022-03-01"),
			left:    59.0 / 365 * 100,
			width:   1,
			visible: true,
		},
		{
			name:    "past right edge",
			task:    mk("x", "2022-12-01", "2023-02-01"),
			left:    334.0 / 365 * 100,
			width:   100 - 334.0/365*100,
			visible: true,
			clipEnd: true,
		},
		{
			name:      "entirely before",
			task:      mk("x", "2021-01-01", "2021-02-01"),
			left:      0,
			width:     1,
			clipStart: true,
		},
		{
			name:    "entirely after",
			task:    mk("x", "2023-01-01", "2023-02-01"),
			left:    99,
			width:   1,
			clipEnd: true,
		},
		{
			name:    "zero length on last day",
			task:    mk("x", "2022-12-31", "2022-12-31"),
			left:    99,
			width:   1,
			visible: true,
		},
		{
			name:      "covers everything",
			task:      mk("x", "2021-01-01", "2024-01-01"),
			left:      0,
			width:     100,
			visible:   true,
			clipStart: true,
			clipEnd:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := w.Position(tt.task)
			if !approx(p.Left, tt.left) {
				t.Errorf("Left = %.4f, want %.4f", p.Left, tt.left)
			}
			if !approx(p.Width, tt.width) {
				t.Errorf("Width = %.4f, want %.4f", p.Width, tt.width)
			}
			if p.Visible != tt.visible {
				t.Errorf("Visible = %v, want %v", p.Visible, tt.visible)
			}
			if p.ClippedStart != tt.clipStart || p.ClippedEnd != tt.clipEnd {
				t.Errorf("Clipped = %v/%v, want %v/%v", p.ClippedStart, p.ClippedEnd, tt.clipStart, tt.clipEnd)
			}
		})
	}
}

func TestPositionMonotone(t *testing.T) {
	w := mustWindow(t, 2022, 2024)
	r := rand.New(rand.NewPCG(5, 6))
	tasks := randomTasks(r, 200)
	for i := range tasks {
		tasks[i].Start = tasks[i].Start.AddDays(-120)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Start.Before(tasks[j].Start) })

	prev := -1.0
	for _, tk := range tasks {
		p := w.Position(tk)
		if p.Left < prev {
			t.Fatalf("Left decreased to %.4f for start %s", p.Left, tk.Start)
		}
		if p.Left < 0 || p.Left > 100 || p.Width < 1 || math.IsNaN(p.Width) {
			t.Fatalf("Position(%s) out of range: %+v", tk.Start, p)
		}
		if p.Left+p.Width > 100+1e-9 {
			t.Fatalf("Position(%s) overflows: %+v", tk.Start, p)
		}
		prev = p.Left
	}
}

func TestYears(t *testing.T) {
	got := mustWindow(t, 2022, 2026).Years()
	if len(got) != 5 || got[0] != 2022 || got[4] != 2026 {
		t.Errorf("Years() = %v", got)
	}
	if (Window{}).Years() != nil {
		t.Error("zero Window Years() should be nil")
	}
}

func TestColumns(t *testing.T) {
	w := mustWindow(t, 2022, 2023)
	tests := []struct {
		scale Scale
		n     int
		first string
	}{
		{ScaleYear, 2, "2022"},
		{ScaleQuarter, 8, "Q1"},
		{ScaleMonth, 24, "Jan"},
	}
	for _, tt := range tests {
		t.Run(string(tt.scale), func(t *testing.T) {
			cols := w.Columns(tt.scale)
			if len(cols) != tt.n {
				t.Fatalf("Columns() = %d, want %d", len(cols), tt.n)
			}
			if cols[0].Label != tt.first {
				t.Errorf("first label = %q, want %q", cols[0].Label, tt.first)
			}
			sum := 0.0
			for _, c := range cols {
				sum += c.Width
			}
			if !approx(sum, 100) {
				t.Errorf("widths sum to %.4f, want 100", sum)
			}
			last := cols[len(cols)-1]
			if last.Last.String() != "2023-12-31" {
				t.Errorf("last column ends %s, want 2023-12-31", last.Last)
			}
		})
	}
}

func TestColumnsClipped(t *testing.T) {
	w, err := NewWindowDates(task.MustParseDate("2022-02-15"), task.MustParseDate("2022-05-10"))
	if err != nil {
		t.Fatal(err)
	}
	cols := w.Columns(ScaleQuarter)
	if len(cols) != 2 {
		t.Fatalf("Columns() = %v", cols)
	}
	if cols[0].First.String() != "2022-02-15" || cols[1].Last.String() != "2022-05-10" {
		t.Errorf("clipped columns = %s..%s", cols[0].First, cols[1].Last)
	}
}

func TestParseScale(t *testing.T) {
	if s, err := ParseScale(""); err != nil || s != ScaleYear {
		t.Errorf("ParseScale(\"\") = %v, %v", s, err)
	}
	if _, err := ParseScale("week"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseScale(week) error = %v", err)
	}
}
