package frontmatter

import "slices"

// Metadata is an insertion-ordered mapping from field names to values.
// Keys are unique; setting an existing key updates its value in place,
// setting a new key appends it. The zero Metadata is an empty mapping
// ready for use.
type Metadata struct {
	keys   []string
	values map[string]Value
}

// New returns an empty Metadata.
func New() Metadata {
	return Metadata{values: make(map[string]Value)}
}

// Len returns the number of fields.
func (m Metadata) Len() int { return len(m.keys) }

// IsEmpty reports whether the mapping has no fields.
func (m Metadata) IsEmpty() bool { return len(m.keys) == 0 }

// Keys returns the field names in insertion order.
func (m Metadata) Keys() []string { return slices.Clone(m.keys) }

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Get returns the value for key, or Absent when the key is not present.
func (m Metadata) Get(key string) Value {
	if v, ok := m.values[key]; ok {
		return v
	}
	return Absent
}

// Set applies merge-field semantics: a new key is appended at the end,
// an existing key keeps its position and only its value changes.
// Setting Absent removes the key.
func (m *Metadata) Set(key string, v Value) {
	if v.IsAbsent() {
		m.Delete(key)
		return
	}
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key if present.
func (m *Metadata) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	out := Metadata{
		keys:   slices.Clone(m.keys),
		values: make(map[string]Value, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether both mappings hold the same keys in the same
// order with semantically equal values.
func (m Metadata) Equal(o Metadata) bool {
	if !slices.Equal(m.keys, o.keys) {
		return false
	}
	for _, k := range m.keys {
		if !m.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}
