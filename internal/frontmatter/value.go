package frontmatter

import "slices"

// Kind identifies the type of a metadata value.
type Kind int

// Value kinds. Frontmatter fields are deliberately restricted to this
// closed set: strings (dates are carried as strings), booleans, and flat
// string lists. Anything else in a YAML block degrades the whole block.
const (
	KindAbsent Kind = iota
	KindString
	KindBool
	KindList
)

// Value is a single frontmatter field value.
// The zero Value is Absent.
type Value struct {
	kind Kind
	str  string
	b    bool
	list []string
}

// Absent is the zero Value, returned for keys that are not present.
var Absent = Value{}

// String returns a string-kinded Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Bool returns a bool-kinded Value.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// List returns a list-kinded Value holding a copy of items.
func List(items ...string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is the absent sentinel.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// AsString returns the string payload and whether the value is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsBool returns the bool payload and whether the value is a bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsList returns a copy of the list payload and whether the value is a list.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// Equal reports semantic equality: same kind and same payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindList:
		return slices.Equal(v.list, o.list)
	default:
		return true
	}
}
