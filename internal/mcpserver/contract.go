package mcpserver

// NotationContract describes the inline notation and note structure that
// LLM consumers should follow when writing into the workspace.
const NotationContract = `# Inkweaver Notation Contract

Notes are Markdown. Lore entries are created from inline notation found in
note text and in assistant replies.

## Lore notation

- ` + "`[[Name|Type]]`" + ` references a lore entry of the given type. Types:
  Character, Place, Item, Concept, Event, ArcanaSystem, Other. Unknown types
  become Other.
- ` + "`[[Name]]`" + ` references a lore entry without a type (Other when created).
- ` + "`@Name`" + ` references a character. E-mail addresses are not mentions.
- Names are matched case-insensitively; an existing entry is never duplicated.
- Names may use any script (Thai, Cyrillic, Latin...).

## Structured metadata

Character, place and item descriptions may start with a fenced YAML block.
Its keys are kept as structured fields; the prose follows the block.

` + "```" + `markdown
` + "```yaml" + `
name: Elina
role: Healer
age: 27
` + "```" + `

Elina grew up in the shadow of [[Moonwell|Place]].
` + "```" + `

## Notes

1. **title** is required and is the display name everywhere.
2. **category** is a free-form grouping (e.g. Chapter, Research).
3. **tags** are short lowercase words.
4. Notes belong to one project or to none (global). Global notes are visible
   in every project.
5. Exported notes carry YAML front matter (title, created, updated,
   category, tags, project) followed by the Markdown body.

## Avatars

Character portraits are set with the ` + "`set_lore_avatar`" + ` tool from a data:
or http(s) URL. Supported formats: png, jpg, jpeg, gif, webp, svg.
`
