// Package task defines the schedule records shown on the Gantt chart.
//
// A [Task] is a dated interval plus an open bag of scalar attributes
// (product type, density, process and so on). Attribute values are
// [Value]s: tagged scalars with strict equality, so the number 1 and the
// string "1" are different grouping keys.
//
// Tasks encode to the flat JSON object used by the HTTP API:
//
//	{"id": "42", "startDate": "2024-01-01", "endDate": "2024-03-31",
//	 "productType": "DRAM", "density": "16Gb"}
//
// Reserved keys (id, startDate, endDate, createdAt, updatedAt) map to struct
// fields; every other key becomes an attribute.
package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"time"

	"github.com/flexgantt/flexgantt/pkg/errors"
)

// Reserved JSON keys.
const (
	KeyID        = "id"
	KeyStartDate = "startDate"
	KeyEndDate   = "endDate"
	KeyCreatedAt = "createdAt"
	KeyUpdatedAt = "updatedAt"
)

var reservedKeys = map[string]bool{
	KeyID: true, KeyStartDate: true, KeyEndDate: true, KeyCreatedAt: true, KeyUpdatedAt: true,
}

// IsReserved reports whether key names a Task field rather than an attribute.
func IsReserved(key string) bool { return reservedKeys[key] }

// Task is one scheduled item.
type Task struct {
	ID         string
	Start      Date
	End        Date
	Attributes map[string]Value
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New returns a task with the given id and dates and an empty attribute bag.
func New(id string, start, end Date) Task {
	return Task{ID: id, Start: start, End: end, Attributes: map[string]Value{}}
}

// With returns a copy of t with attribute name set to v.
func (t Task) With(name string, v Value) Task {
	c := t.Clone()
	if c.Attributes == nil {
		c.Attributes = map[string]Value{}
	}
	c.Attributes[name] = v
	return c
}

// Attr returns the value of attribute name. Absent attributes are Null.
func (t Task) Attr(name string) Value {
	return t.Attributes[name]
}

// HasAttr reports whether attribute name is present and non-null.
func (t Task) HasAttr(name string) bool {
	return !t.Attributes[name].IsNull()
}

// Duration returns End - Start in whole days.
func (t Task) Duration() int { return t.End.DaysSince(t.Start) }

// Overlaps reports whether t and o overlap under half-open semantics:
// a task ending on the day another starts does not overlap it.
func (t Task) Overlaps(o Task) bool {
	return t.Start.Before(o.End) && t.End.After(o.Start)
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.Attributes != nil {
		c.Attributes = maps.Clone(t.Attributes)
	}
	return c
}

// Validate checks the id and the date interval.
func (t Task) Validate() error {
	if err := errors.ValidateTaskID(t.ID); err != nil {
		return err
	}
	return t.ValidateDates()
}

// ValidateDates checks that both dates are set and End is not before Start.
func (t Task) ValidateDates() error {
	if t.Start.IsZero() {
		return errors.New(errors.ErrCodeInvalidTask, "task %q: missing %s", t.ID, KeyStartDate)
	}
	if t.End.IsZero() {
		return errors.New(errors.ErrCodeInvalidTask, "task %q: missing %s", t.ID, KeyEndDate)
	}
	if t.End.Before(t.Start) {
		return errors.New(errors.ErrCodeInvalidTask, "task %q: end %s before start %s", t.ID, t.End, t.Start)
	}
	return nil
}

// AttributeNames returns the attribute keys of t, sorted.
func (t Task) AttributeNames() []string {
	names := make([]string, 0, len(t.Attributes))
	for k := range t.Attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Fields returns the flat map form of t. Dates are ISO strings and
// timestamps RFC 3339; unset timestamps and the empty id are omitted.
func (t Task) Fields() map[string]any {
	m := make(map[string]any, len(t.Attributes)+5)
	for k, v := range t.Attributes {
		if IsReserved(k) {
			continue
		}
		m[k] = v.Interface()
	}
	if t.ID != "" {
		m[KeyID] = t.ID
	}
	m[KeyStartDate] = t.Start.String()
	m[KeyEndDate] = t.End.String()
	if !t.CreatedAt.IsZero() {
		m[KeyCreatedAt] = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !t.UpdatedAt.IsZero() {
		m[KeyUpdatedAt] = t.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return m
}

// FromFields builds a task from its flat map form. It accepts the shapes
// produced by the JSON, YAML and TOML decoders: numeric ids, dates as
// strings or time.Time values.
func FromFields(m map[string]any) (Task, error) {
	t := Task{Attributes: make(map[string]Value, len(m))}
	for k, raw := range m {
		var err error
		switch k {
		case KeyID:
			t.ID, err = idString(raw)
		case KeyStartDate:
			t.Start, err = dateValue(raw)
		case KeyEndDate:
			t.End, err = dateValue(raw)
		case KeyCreatedAt:
			t.CreatedAt, err = timeValue(raw)
		case KeyUpdatedAt:
			t.UpdatedAt, err = timeValue(raw)
		default:
			var v Value
			v, err = ValueOf(raw)
			if err == nil && !v.IsNull() {
				t.Attributes[k] = v
			}
		}
		if err != nil {
			return Task{}, errors.Wrap(errors.ErrCodeInvalidTask, err, "field %q", k)
		}
	}
	return t, nil
}

func idString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", fmt.Errorf("id must be a string or number, got %T", raw)
	}
}

func dateValue(raw any) (Date, error) {
	switch v := raw.(type) {
	case nil:
		return Date{}, nil
	case string:
		if v == "" {
			return Date{}, nil
		}
		return ParseDate(v)
	case time.Time:
		return NewDate(v.Year(), v.Month(), v.Day()), nil
	case Date:
		return v, nil
	default:
		return Date{}, fmt.Errorf("date must be a string, got %T", raw)
	}
}

func timeValue(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
		}
		return ts.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("timestamp must be a string, got %T", raw)
	}
}

// MarshalJSON encodes t as a flat object.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Fields())
}

// UnmarshalJSON decodes the flat object form. Attribute values must be
// scalars; numbers keep full float64 precision.
func (t *Task) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode task")
	}
	if m == nil {
		return errors.New(errors.ErrCodeInvalidFormat, "task must be a JSON object")
	}
	parsed, err := FromFields(m)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML encodes t as a flat mapping.
func (t Task) MarshalYAML() (any, error) { return t.Fields(), nil }

// UnmarshalYAML decodes the flat mapping form.
func (t *Task) UnmarshalYAML(unmarshal func(any) error) error {
	var m map[string]any
	if err := unmarshal(&m); err != nil {
		return err
	}
	parsed, err := FromFields(m)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SortByStart sorts tasks by start date, then end date, then id.
func SortByStart(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if c := a.Start.Compare(b.Start); c != 0 {
			return c < 0
		}
		if c := a.End.Compare(b.End); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}
