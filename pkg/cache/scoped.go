package cache

// ScopedKeyer wraps a Keyer with a prefix so that several reports or tenants
// can share one cache backend without their entries colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "report:q3-roadmap:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RowsKey generates a prefixed key for row model caching.
func (k *ScopedKeyer) RowsKey(contentHash string, opts RowsKeyOpts) string {
	return k.prefix + k.inner.RowsKey(contentHash, opts)
}

// ReportKey generates a prefixed key for report caching.
func (k *ScopedKeyer) ReportKey(contentHash string, opts RowsKeyOpts) string {
	return k.prefix + k.inner.ReportKey(contentHash, opts)
}
