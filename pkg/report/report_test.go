package report

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/task"
)

func sample() *Report {
	r := Default()
	r.Summary = "Q3 roadmap"
	r.ExportDate = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	r.Structure[0].Filters = gantt.Filters{"productType": {task.String("DRAM")}}
	r.TaskShapes["2"] = ShapeCircle
	r.Tasks = []task.Task{
		task.New("1", task.MustParseDate("2022-01-01"), task.MustParseDate("2022-03-01")).
			With("productType", task.String("DRAM")).
			With("density", task.String("8Gb")).
			With("numberOfStack", task.Number(8)),
		task.New("2", task.MustParseDate("2023-06-01"), task.MustParseDate("2023-07-15")).
			With("productType", task.String("NAND")).
			With("isNPI", task.Bool(true)),
	}
	return r
}

func TestDefaultIsValid(t *testing.T) {
	r := Default()
	if err := r.Validate(task.DefaultRegistry()); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	w, err := r.Timeline.Window()
	if err != nil {
		t.Fatal(err)
	}
	if w.TotalDays() != 1826 {
		t.Errorf("TotalDays() = %d, want 1826", w.TotalDays())
	}
	if r.Timeline.Scale() != gantt.ScaleQuarter {
		t.Errorf("Scale() = %s, want quarter", r.Timeline.Scale())
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			in := sample()
			var buf bytes.Buffer
			if err := Write(in, &buf, f); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			out, err := Read(&buf, f)
			if err != nil {
				t.Fatalf("Read() error: %v\n%s", err, buf.String())
			}

			if out.Summary != in.Summary || out.Timeline != in.Timeline {
				t.Errorf("header = %+v / %+v", out.Summary, out.Timeline)
			}
			if !out.ExportDate.Equal(in.ExportDate) {
				t.Errorf("ExportDate = %v, want %v", out.ExportDate, in.ExportDate)
			}
			if !reflect.DeepEqual(out.Structure, in.Structure) {
				t.Errorf("Structure = %+v, want %+v", out.Structure, in.Structure)
			}
			if !reflect.DeepEqual(out.TaskShapes, in.TaskShapes) {
				t.Errorf("TaskShapes = %v", out.TaskShapes)
			}
			if len(out.Tasks) != 2 {
				t.Fatalf("Tasks = %d, want 2", len(out.Tasks))
			}
			for i := range in.Tasks {
				if !reflect.DeepEqual(out.Tasks[i], in.Tasks[i]) {
					t.Errorf("task %d = %+v, want %+v", i, out.Tasks[i], in.Tasks[i])
				}
			}
		})
	}
}

func TestReadJSONFillsDefaults(t *testing.T) {
	in := `{"timeline":{"startYear":2022,"endYear":2022},
		"structure":[{"id":"g","depths":[{"attribute":"productType"}]}]}`
	r, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if r.Version != Version || r.Tasks == nil || r.TaskShapes == nil {
		t.Errorf("defaults not filled: %+v", r)
	}
	if r.ShapeOf("x") != ShapeGantt {
		t.Errorf("ShapeOf() = %s, want gantt", r.ShapeOf("x"))
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Report)
		code   errors.Code
	}{
		{"version", func(r *Report) { r.Version = "2.0" }, errors.ErrCodeInvalidFormat},
		{"years reversed", func(r *Report) { r.Timeline.StartYear = 2030 }, errors.ErrCodeInvalidConfiguration},
		{"date format", func(r *Report) { r.Timeline.DateFormat = "DD.MM.YY" }, errors.ErrCodeInvalidConfiguration},
		{"group without id", func(r *Report) { r.Structure[0].ID = "" }, errors.ErrCodeInvalidConfiguration},
		{"duplicate group", func(r *Report) { r.Structure = append(r.Structure, r.Structure[0]) }, errors.ErrCodeInvalidConfiguration},
		{"no depths", func(r *Report) { r.Structure[0].Depths = nil }, errors.ErrCodeInvalidConfiguration},
		{"unknown depth", func(r *Report) { r.Structure[0].Depths[0].Attribute = "colour" }, errors.ErrCodeInvalidConfiguration},
		{"shape", func(r *Report) { r.Attributes.Shape = "hexagon" }, errors.ErrCodeInvalidConfiguration},
		{"color", func(r *Report) { r.Attributes.Color = "blue" }, errors.ErrCodeInvalidConfiguration},
		{"too many shape labels", func(r *Report) {
			r.Attributes.ShapeAttributes = []string{"productType", "density", "process", "vdd1", "vdd2"}
		}, errors.ErrCodeInvalidConfiguration},
		{"task shape", func(r *Report) { r.TaskShapes["1"] = "star" }, errors.ErrCodeInvalidConfiguration},
		{"task dates", func(r *Report) { r.Tasks[0].End = task.MustParseDate("2021-01-01") }, errors.ErrCodeInvalidTask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sample()
			tt.mutate(r)
			if err := r.Validate(task.DefaultRegistry()); !errors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"report.json", FormatJSON, false},
		{"report.YAML", FormatYAML, false},
		{"dir/report.yml", FormatYAML, false},
		{"report.toml", FormatTOML, false},
		{"report.pdf", "", true},
		{"report", "", true},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	in := sample()
	in.ExportDate = time.Time{}

	for _, name := range []string{"r.json", "r.yaml", "r.toml"} {
		path := filepath.Join(dir, name)
		if err := Export(in, path); err != nil {
			t.Fatalf("Export(%s) error: %v", name, err)
		}
		out, err := Import(path)
		if err != nil {
			t.Fatalf("Import(%s) error: %v", name, err)
		}
		if out.ExportDate.IsZero() {
			t.Errorf("%s: export date not stamped", name)
		}
		if len(out.Tasks) != len(in.Tasks) {
			t.Errorf("%s: %d tasks, want %d", name, len(out.Tasks), len(in.Tasks))
		}
	}
	if !in.ExportDate.IsZero() {
		t.Error("Export() modified its input")
	}
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Import(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import(missing) error = %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"tasks": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(bad); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Import(bad) error = %v", err)
	}

	if _, err := Import(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Import(\"\") error = %v", err)
	}
}

func TestTimelineScaleAndFormat(t *testing.T) {
	tl := Timeline{StartYear: 2022, EndYear: 2022, DateFormat: task.LayoutUS}
	if tl.Scale() != gantt.ScaleYear {
		t.Errorf("Scale() = %s, want year", tl.Scale())
	}
	tl.ShowQuarters, tl.ShowMonths = true, true
	if tl.Scale() != gantt.ScaleMonth {
		t.Errorf("Scale() = %s, want month", tl.Scale())
	}
	if got := tl.Format(task.MustParseDate("2022-07-02")); got != "07/02/2022" {
		t.Errorf("Format() = %q", got)
	}
}
