package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/models"
)

// DefaultSectionNames maps first path segments to section headings.
// Files directly under the docs root fall into the "" (General) section.
var DefaultSectionNames = map[string]string{
	"api":       "API Documentation",
	"system":    "System Documentation",
	"workflows": "Workflow Documentation",
	"templates": "Templates",
	"":          "General",
}

// Generate syncs nothing; it renders the aggregate index document from
// the current cache contents. today is the date stamped into the index
// frontmatter (passed in so callers control the clock).
func (db *DB) Generate(sectionNames map[string]string, today string) (string, error) {
	docs, err := db.ListDocs()
	if err != nil {
		return "", err
	}
	return Render(docs, sectionNames, today), nil
}

// Render builds the index document: frontmatter
// {title, updated, status: generated, type: index} and a Markdown body
// with one section heading per group and one bullet per document.
// Groups are sorted by section segment, items by title
// (case-insensitive).
func Render(docs []models.DocInfo, sectionNames map[string]string, today string) string {
	if sectionNames == nil {
		sectionNames = DefaultSectionNames
	}

	grouped := make(map[string][]models.DocInfo)
	for _, d := range docs {
		grouped[d.Section] = append(grouped[d.Section], d)
	}

	sections := make([]string, 0, len(grouped))
	for s := range grouped {
		sections = append(sections, s)
	}
	sort.Strings(sections)

	var body strings.Builder
	body.WriteString("# Documentation Index\n\n")
	body.WriteString("> This page is generated automatically from YAML metadata.\n\n")

	for _, section := range sections {
		items := grouped[section]
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})

		body.WriteString("## " + sectionHeading(section, sectionNames) + "\n\n")
		for _, item := range items {
			body.WriteString(renderItem(item))
		}
		body.WriteString("\n")
	}

	meta := frontmatter.New()
	meta.Set("title", frontmatter.String("Auto-Generated Index"))
	meta.Set("updated", frontmatter.String(today))
	meta.Set("status", frontmatter.String("generated"))
	meta.Set("type", frontmatter.String("index"))

	return frontmatter.Encode(meta, body.String())
}

func sectionHeading(section string, names map[string]string) string {
	if name, ok := names[section]; ok {
		return name
	}
	// Unknown section: derive a heading from the segment.
	words := strings.Split(strings.ReplaceAll(section, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func renderItem(d models.DocInfo) string {
	tags := "`none`"
	if len(d.Tags) > 0 {
		quoted := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			quoted[i] = "`" + t + "`"
		}
		tags = strings.Join(quoted, ", ")
	}

	summary := fmt.Sprintf("status: `%s` · updated: `%s`", d.Status, d.Updated)
	if d.Version != "" {
		summary += fmt.Sprintf(" · version: `%s`", d.Version)
	}
	summary += " · tags: " + tags

	return fmt.Sprintf("- [%s](%s) — %s\n", d.Title, d.Path, summary)
}
