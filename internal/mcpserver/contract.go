package mcpserver

// DocFormatContract describes the canonical Markdown document format
// that LLM consumers should follow when working with the docs tree.
const DocFormatContract = `# Ansuz Document Format Contract

Every Markdown document stored in the docs tree SHOULD follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # used in the generated index
status: published                   # draft | published | generated | deprecated
updated: 2025-01-15                 # ISO-8601 date, maintained by the touch tool
version: "1.2"                      # OPTIONAL – quoted so it stays a string
tags:                               # OPTIONAL – YAML list of plain strings
  - api
  - auth
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Frontmatter is optional but flat.** When present, the ` + "`" + `---` + "`" + ` fences
   must open the file and the block must be a flat mapping: string, boolean,
   and string-list values only. Nested mappings are not understood and the
   whole block is then treated as body text.
2. **` + "`" + `title` + "`" + ` drives the index.** Documents without one are listed
   under a title derived from the filename.
3. **` + "`" + `updated` + "`" + ` is a date string** (YYYY-MM-DD). The timestamp updater
   rewrites it; do not hand-maintain it in automation.
4. **Sections come from the top-level directory**: ` + "`" + `api/` + "`" + `,
   ` + "`" + `system/` + "`" + `, ` + "`" + `workflows/` + "`" + `, ` + "`" + `templates/` + "`" + `. Root-level files land in General.
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
6. **Encoding** is UTF-8 with a trailing newline.
7. **Generated files** carry ` + "`" + `status: generated` + "`" + ` (the auto index) or
   ` + "`" + `generated: true` + "`" + ` plus a ` + "`" + `source` + "`" + ` field (summaries). Do not edit them.

## Example

` + "```" + `markdown
---
title: Error Codes
status: published
updated: 2025-01-20
tags:
  - api
  - reference
---

# Error Codes

| Code | Meaning |
|------|---------|
| 1001 | invalid token |
` + "```" + `
`
