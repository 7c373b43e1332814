package frontmatter

import (
	"slices"
	"testing"
)

func TestMetadata_SetAppendsNewKeys(t *testing.T) {
	m := New()
	m.Set("title", String("X"))
	m.Set("updated", String("2024-01-01"))

	want := []string{"title", "updated"}
	if !slices.Equal(m.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", m.Keys(), want)
	}
}

func TestMetadata_SetKeepsPositionOnUpdate(t *testing.T) {
	m := New()
	m.Set("title", String("X"))
	m.Set("updated", String("2024-01-01"))
	m.Set("title", String("Y"))

	want := []string{"title", "updated"}
	if !slices.Equal(m.Keys(), want) {
		t.Errorf("Keys() = %v, want %v (position must not change)", m.Keys(), want)
	}
	if s, _ := m.Get("title").AsString(); s != "Y" {
		t.Errorf("title = %q, want %q", s, "Y")
	}
}

func TestMetadata_SetAbsentDeletes(t *testing.T) {
	m := New()
	m.Set("a", String("1"))
	m.Set("b", String("2"))
	m.Set("a", Absent)

	if m.Has("a") {
		t.Errorf("key a should be deleted")
	}
	if !slices.Equal(m.Keys(), []string{"b"}) {
		t.Errorf("Keys() = %v, want [b]", m.Keys())
	}
}

func TestMetadata_ZeroValueUsable(t *testing.T) {
	var m Metadata
	m.Set("k", String("v"))
	if s, ok := m.Get("k").AsString(); !ok || s != "v" {
		t.Errorf("zero-value Metadata Set/Get failed: %q %v", s, ok)
	}
}

func TestMetadata_GetMissingIsAbsent(t *testing.T) {
	m := New()
	if !m.Get("nope").IsAbsent() {
		t.Errorf("missing key must return Absent")
	}
}

func TestMetadata_CloneIsIndependent(t *testing.T) {
	m := New()
	m.Set("a", String("1"))
	c := m.Clone()
	c.Set("a", String("2"))
	c.Set("b", String("3"))

	if s, _ := m.Get("a").AsString(); s != "1" {
		t.Errorf("clone mutation leaked into original: a = %q", s)
	}
	if m.Has("b") {
		t.Errorf("clone mutation leaked into original: b present")
	}
}

func TestMetadata_Equal(t *testing.T) {
	a := New()
	a.Set("x", String("1"))
	a.Set("y", Bool(true))

	b := New()
	b.Set("x", String("1"))
	b.Set("y", Bool(true))

	if !a.Equal(b) {
		t.Errorf("identical mappings must be equal")
	}

	// Same pairs, different order: not equal.
	c := New()
	c.Set("y", Bool(true))
	c.Set("x", String("1"))
	if a.Equal(c) {
		t.Errorf("order matters for equality")
	}
}

func TestValue_Equal(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{String("x"), String("x"), true},
		{String("x"), String("y"), false},
		{String("true"), Bool(true), false},
		{Bool(true), Bool(true), true},
		{List("a", "b"), List("a", "b"), true},
		{List("a"), List("a", "b"), false},
		{Absent, Absent, true},
		{Absent, String(""), false},
	}
	for _, c := range cases {
		if got := c.a.Equal(c.b); got != c.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
