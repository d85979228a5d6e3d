package task

import (
	"fmt"
	"sort"
)

// Attribute describes one task attribute: its key in the attribute bag, the
// display label, the relational column that stores it and its value kind.
type Attribute struct {
	Name   string `json:"value"`
	Label  string `json:"label"`
	Column string `json:"column"`
	Kind   Kind   `json:"-"`

	// Groupable attributes may be used as row depths and task shape keys.
	Groupable bool `json:"-"`
}

// Registry is an ordered, immutable set of known attributes.
type Registry struct {
	attrs  []Attribute
	byName map[string]int
}

// NewRegistry builds a registry, rejecting duplicate names or columns.
func NewRegistry(attrs ...Attribute) (*Registry, error) {
	r := &Registry{
		attrs:  make([]Attribute, 0, len(attrs)),
		byName: make(map[string]int, len(attrs)),
	}
	cols := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("attribute with empty name")
		}
		if _, dup := r.byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate attribute %q", a.Name)
		}
		if a.Column != "" {
			if cols[a.Column] {
				return nil, fmt.Errorf("duplicate column %q", a.Column)
			}
			cols[a.Column] = true
		}
		r.byName[a.Name] = len(r.attrs)
		r.attrs = append(r.attrs, a)
	}
	return r, nil
}

var defaultRegistry = mustRegistry(
	Attribute{Name: "productType", Label: "Product Type", Column: "product_type", Kind: KindString, Groupable: true},
	Attribute{Name: "density", Label: "Density", Column: "density", Kind: KindString, Groupable: true},
	Attribute{Name: "process", Label: "Process", Column: "process", Kind: KindString, Groupable: true},
	Attribute{Name: "isMainProcess", Label: "Main Process", Column: "is_main_process", Kind: KindBool, Groupable: true},
	Attribute{Name: "isNPI", Label: "NPI", Column: "is_npi", Kind: KindBool, Groupable: true},
	Attribute{Name: "organization", Label: "Organization", Column: "organization", Kind: KindString, Groupable: true},
	Attribute{Name: "stackMethod", Label: "Stack Method", Column: "stack_method", Kind: KindString, Groupable: true},
	Attribute{Name: "numberOfStack", Label: "Number of Stack", Column: "number_of_stack", Kind: KindNumber, Groupable: true},
	Attribute{Name: "numberOfDie", Label: "Number of Die", Column: "number_of_die", Kind: KindNumber, Groupable: true},
	Attribute{Name: "packageSize", Label: "Package Size", Column: "package_size", Kind: KindString, Groupable: true},
	Attribute{Name: "packageHeight", Label: "Package Height", Column: "package_height", Kind: KindString, Groupable: true},
	Attribute{Name: "vdd1", Label: "VDD1", Column: "vdd1", Kind: KindString, Groupable: true},
	Attribute{Name: "vdd2", Label: "VDD2", Column: "vdd2", Kind: KindString, Groupable: true},
	Attribute{Name: "vddq", Label: "VDDQ", Column: "vddq", Kind: KindString, Groupable: true},
	Attribute{Name: "speed", Label: "Speed", Column: "speed", Kind: KindString, Groupable: true},
	Attribute{Name: "praSchedule", Label: "PRA Schedule", Column: "pra_schedule", Kind: KindString},
)

func mustRegistry(attrs ...Attribute) *Registry {
	r, err := NewRegistry(attrs...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the attributes of the product planning table.
func DefaultRegistry() *Registry { return defaultRegistry }

// Lookup returns the attribute with the given name.
func (r *Registry) Lookup(name string) (Attribute, bool) {
	if r == nil {
		return Attribute{}, false
	}
	i, ok := r.byName[name]
	if !ok {
		return Attribute{}, false
	}
	return r.attrs[i], true
}

// Has reports whether name is a registered attribute.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Label returns the display label for name, or name itself when unknown.
func (r *Registry) Label(name string) string {
	if a, ok := r.Lookup(name); ok && a.Label != "" {
		return a.Label
	}
	return name
}

// All returns the attributes in registration order.
func (r *Registry) All() []Attribute {
	if r == nil {
		return nil
	}
	return append([]Attribute(nil), r.attrs...)
}

// Groupable returns the attributes usable as row depths.
func (r *Registry) Groupable() []Attribute {
	var out []Attribute
	for _, a := range r.All() {
		if a.Groupable {
			out = append(out, a)
		}
	}
	return out
}

// Names returns attribute names in registration order.
func (r *Registry) Names() []string {
	attrs := r.All()
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Name)
	}
	return out
}

// Coerce converts v to the registered kind of name where this is lossless
// enough for form input: numeric strings to numbers, "true"/"false" to
// booleans. Unknown attributes and nulls pass through unchanged.
func (r *Registry) Coerce(name string, v Value) (Value, error) {
	a, ok := r.Lookup(name)
	if !ok || v.IsNull() || v.Kind() == a.Kind {
		return v, nil
	}
	s, isStr := v.Str()
	switch a.Kind {
	case KindString:
		return String(v.String()), nil
	case KindNumber:
		if isStr {
			var f float64
			if _, err := fmt.Sscan(s, &f); err == nil {
				return Number(f), nil
			}
		}
	case KindBool:
		if b, isBool := v.Boolean(); isBool {
			return Bool(b), nil
		}
		switch s {
		case "true", "Y", "y", "yes":
			return Bool(true), nil
		case "false", "N", "n", "no":
			return Bool(false), nil
		}
		if n, isNum := v.Num(); isNum {
			return Bool(n != 0), nil
		}
	}
	return v, fmt.Errorf("attribute %q: cannot use %s value %q as %s", name, v.Kind(), v.String(), a.Kind)
}

// Unknown returns the attribute names in attrs that r does not know, sorted.
func (r *Registry) Unknown(attrs map[string]Value) []string {
	var out []string
	for k := range attrs {
		if !r.Has(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
