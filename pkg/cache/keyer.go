package cache

import "strings"

// Keyer builds cache keys.
type Keyer interface {
	// RowsKey identifies a row model built from inputs hashing to contentHash.
	RowsKey(contentHash string, opts RowsKeyOpts) string

	// ReportKey identifies a full report build.
	ReportKey(contentHash string, opts RowsKeyOpts) string
}

// RowsKeyOpts holds the build options that change the output.
type RowsKeyOpts struct {
	LaneHeight      int    `json:"lane_height"`
	VerticalPadding int    `json:"vertical_padding"`
	MaxCombinations int    `json:"max_combinations"`
	Window          string `json:"window,omitempty"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RowsKey hashes the content hash together with opts.
func (DefaultKeyer) RowsKey(contentHash string, opts RowsKeyOpts) string {
	return hashKey("rows", contentHash, opts)
}

// ReportKey hashes the content hash together with opts.
func (DefaultKeyer) ReportKey(contentHash string, opts RowsKeyOpts) string {
	return hashKey("report", contentHash, opts)
}

// KeyKind returns the kind segment of a key produced by a Keyer ("rows" or
// "report"), ignoring any scope prefix. It returns "unknown" for keys that do
// not carry a hash suffix.
func KeyKind(key string) string {
	rest, _, ok := cutLast(key, ":")
	if !ok {
		return "unknown"
	}
	if _, kind, ok := cutLast(rest, ":"); ok {
		return kind
	}
	return rest
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
