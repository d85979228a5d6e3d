package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/gantt"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// Format is a document encoding.
type Format string

// Supported encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat converts a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported report format %q (must be json, yaml or toml)", s)
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "%s: missing file extension", path)
	}
	return ParseFormat(ext)
}

// tomlDocument carries tasks in their flat map form; TOML has no way to
// express the custom task encoding directly.
type tomlDocument struct {
	Version    string           `toml:"version"`
	ExportDate time.Time        `toml:"exportDate"`
	Summary    string           `toml:"summary"`
	Timeline   Timeline         `toml:"timeline"`
	Structure  []gantt.RowGroup `toml:"structure"`
	Attributes TaskConfig       `toml:"attributes"`
	TaskShapes map[string]Shape `toml:"taskShapes,omitempty"`
	Tasks      []map[string]any `toml:"tasks"`
}

// Write encodes r to w in format f. Unlike [Export] it does not stamp the
// export date.
func Write(r *Report, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(r, w)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		doc := tomlDocument{
			Version:    r.Version,
			ExportDate: r.ExportDate,
			Summary:    r.Summary,
			Timeline:   r.Timeline,
			Structure:  r.Structure,
			Attributes: r.Attributes,
			TaskShapes: r.TaskShapes,
			Tasks:      make([]map[string]any, len(r.Tasks)),
		}
		for i, t := range r.Tasks {
			doc.Tasks[i] = t.Fields()
		}
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported report format %q", f)
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a report in format f and validates it. Missing optional
// sections are filled in so the result can be built directly.
func Read(rd io.Reader, f Format) (*Report, error) {
	var r Report
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(rd).Decode(&r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(rd).Decode(&r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
		}
	case FormatTOML:
		var doc tomlDocument
		if _, err := toml.NewDecoder(rd).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode report")
		}
		r = Report{
			Version:    doc.Version,
			ExportDate: doc.ExportDate,
			Summary:    doc.Summary,
			Timeline:   doc.Timeline,
			Structure:  doc.Structure,
			Attributes: doc.Attributes,
			TaskShapes: doc.TaskShapes,
			Tasks:      make([]task.Task, len(doc.Tasks)),
		}
		for i, fields := range doc.Tasks {
			t, err := task.FromFields(fields)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
			r.Tasks[i] = t
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported report format %q", f)
	}

	r.normalize()
	if err := r.Validate(nil); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReadJSON decodes and validates a JSON report.
func ReadJSON(rd io.Reader) (*Report, error) {
	return Read(rd, FormatJSON)
}

func (r *Report) normalize() {
	if r.Version == "" {
		r.Version = Version
	}
	if r.Tasks == nil {
		r.Tasks = []task.Task{}
	}
	if r.TaskShapes == nil {
		r.TaskShapes = map[string]Shape{}
	}
	if r.Attributes.Shape == "" {
		r.Attributes.Shape = ShapeGantt
	}
}

// Export writes r to path, choosing the encoding from the extension. The
// written document carries the current version and export date; r itself is
// not modified.
func Export(r *Report, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := FormatForPath(path)
	if err != nil {
		return err
	}

	out := *r
	out.Version = Version
	out.ExportDate = time.Now().UTC().Truncate(time.Second)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(&out, file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Import reads and validates the report at path.
func Import(path string) (*Report, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "report %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
