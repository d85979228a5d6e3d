package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-02-29", "2024-02-29", false},
		{" 2022-01-01 ", "2022-01-01", false},
		{"2024-03-01T23:30:00Z", "2024-03-01", false},
		{"2024-03-01T23:30:00-05:00", "2024-03-02", false},
		{"2023-02-29", "", true},
		{"01/02/2024", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2022-01-01", "2022-01-01", 0},
		{"2022-12-31", "2022-01-01", 364},
		{"2025-01-01", "2024-01-01", 366},
		{"2021-12-22", "2022-01-01", -10},
	}
	for _, tt := range tests {
		if got := MustParseDate(tt.a).DaysSince(MustParseDate(tt.b)); got != tt.want {
			t.Errorf("%s.DaysSince(%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDateAddDays(t *testing.T) {
	d := MustParseDate("2024-02-28")
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("AddDays(2) = %s, want 2024-03-01", got)
	}
	if got := d.AddDays(-59).String(); got != "2023-12-31" {
		t.Errorf("AddDays(-59) = %s, want 2023-12-31", got)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-06-15"`), &d); err != nil {
		t.Fatal(err)
	}
	out, _ := json.Marshal(d)
	if string(out) != `"2024-06-15"` {
		t.Errorf("Marshal() = %s", out)
	}

	var zero Date
	out, _ = json.Marshal(zero)
	if string(out) != "null" {
		t.Errorf("zero Marshal() = %s, want null", out)
	}
	if err := json.Unmarshal([]byte(`12`), &d); err == nil {
		t.Error("expected error for numeric date")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 7, 4, 15, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-07-04" {
		t.Errorf("Scan(time) = %s", d)
	}
	if err := d.Scan([]byte("2020-01-31")); err != nil || d.String() != "2020-01-31" {
		t.Errorf("Scan(bytes) = %s, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
	v, err := Date{}.Value()
	if err != nil || v != nil {
		t.Errorf("zero Value() = %v, %v", v, err)
	}
}

func TestFormatDate(t *testing.T) {
	d := MustParseDate("2024-03-07")
	tests := map[string]string{
		LayoutISO:      "2024-03-07",
		LayoutUS:       "03/07/2024",
		LayoutEuropean: "07-03-2024",
		LayoutDotted:   "2024.03.07",
		LayoutMonthDay: "03-07",
		"bogus":        "2024-03-07",
	}
	for layout, want := range tests {
		if got := FormatDate(d, layout); got != want {
			t.Errorf("FormatDate(%q) = %s, want %s", layout, got, want)
		}
	}
	if got := FormatDate(Date{}, LayoutUS); got != "" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
	if ValidLayout("bogus") || !ValidLayout(LayoutDotted) {
		t.Error("ValidLayout() mismatch")
	}
}
