package touch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/frontmatter"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestUpdate_SetsField(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "doc.md", "---\ntitle: X\nupdated: 2020-01-01\n---\n\nBody")

	changed, err := Update(p, "2024-06-01")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed {
		t.Error("expected a write")
	}

	data, _ := os.ReadFile(p)
	meta, body := frontmatter.Decode(string(data))
	if s, _ := meta.Get("updated").AsString(); s != "2024-06-01" {
		t.Errorf("updated = %q", s)
	}
	if body != "Body" {
		t.Errorf("body = %q", body)
	}
	// Existing key keeps its position.
	keys := meta.Keys()
	if len(keys) != 2 || keys[0] != "title" || keys[1] != "updated" {
		t.Errorf("keys = %v", keys)
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "doc.md", "---\ntitle: X\n---\n\nBody")

	changed, err := Update(p, "2024-06-01")
	if err != nil || !changed {
		t.Fatalf("first Update: changed=%v err=%v", changed, err)
	}
	first, _ := os.ReadFile(p)

	changed, err = Update(p, "2024-06-01")
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if changed {
		t.Error("second run on the same day must not write")
	}
	second, _ := os.ReadFile(p)
	if string(first) != string(second) {
		t.Errorf("file changed between runs:\n%q\n%q", first, second)
	}
}

func TestUpdate_CreatesBlockWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "doc.md", "Just body text\n")

	changed, err := Update(p, "2024-06-01")
	if err != nil || !changed {
		t.Fatalf("Update: changed=%v err=%v", changed, err)
	}

	data, _ := os.ReadFile(p)
	meta, body := frontmatter.Decode(string(data))
	if meta.Len() != 1 {
		t.Errorf("keys = %v, want only updated", meta.Keys())
	}
	if s, _ := meta.Get("updated").AsString(); s != "2024-06-01" {
		t.Errorf("updated = %q", s)
	}
	if body != "Just body text\n" {
		t.Errorf("body = %q", body)
	}
}

func TestUpdate_SkipsDanglingBlock(t *testing.T) {
	dir := t.TempDir()
	in := "---\ntitle: broken\nno closing marker\n"
	p := writeFile(t, dir, "doc.md", in)

	changed, err := Update(p, "2024-06-01")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if changed {
		t.Error("dangling block must not be rewritten")
	}
	data, _ := os.ReadFile(p)
	if string(data) != in {
		t.Errorf("file modified: %q", data)
	}
}

func TestUpdate_EmptyBlockGetsField(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "doc.md", "---\n---\n\nBody")

	changed, err := Update(p, "2024-06-01")
	if err != nil || !changed {
		t.Fatalf("Update: changed=%v err=%v", changed, err)
	}
	data, _ := os.ReadFile(p)
	meta, _ := frontmatter.Decode(string(data))
	if s, _ := meta.Get("updated").AsString(); s != "2024-06-01" {
		t.Errorf("updated = %q", s)
	}
}

func TestFiles_SkipsNonMarkdownAndMissing(t *testing.T) {
	dir := t.TempDir()
	md := writeFile(t, dir, "a.md", "body")
	txt := writeFile(t, dir, "b.txt", "not md")
	missing := filepath.Join(dir, "gone.md")

	results, err := Files([]string{md, txt, missing}, "2024-06-01")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len = %d", len(results))
	}
	if results[0].Skipped || !results[0].Changed {
		t.Errorf("a.md = %+v, want changed", results[0])
	}
	if !results[1].Skipped {
		t.Errorf("b.txt = %+v, want skipped", results[1])
	}
	if !results[2].Skipped {
		t.Errorf("gone.md = %+v, want skipped", results[2])
	}

	// The .txt file is untouched.
	data, _ := os.ReadFile(txt)
	if !strings.HasPrefix(string(data), "not md") {
		t.Errorf("txt modified: %q", data)
	}
}
