package mcpserver

// DataFormatContract describes the tracker's data model for LLM consumers.
const DataFormatContract = `# Follow-up Data Format

The tracker stores one JSON document:

` + "```" + `json
{
  "projects": [
    {
      "id": "3",
      "name": "Website relaunch",
      "owner": "Ayşe",
      "status": "In Progress",
      "tasks": [
        {"id": "3-1", "title": "Draft sitemap", "status": "Done",
         "statusDate": "12.10.2026 tarihinde tamamlandı"}
      ],
      "meetings": {"2026-W42": "Agreed on the launch date"}
    }
  ],
  "next_id": 4
}
` + "```" + `

## Rules

1. **Project ids** are decimal strings handed out from ` + "`" + `next_id` + "`" + ` and never reused.
2. **Task ids** have the form ` + "`" + `{projectId}-{n}` + "`" + `; n is one past the highest n in that project.
3. **Task status** is one of ` + "`" + `To Do` + "`" + `, ` + "`" + `In Progress` + "`" + `, ` + "`" + `Done` + "`" + `. New tasks start as To Do.
4. **statusDate** is free text. When a status changes without an explicit statusDate the
   server writes ` + "`" + `DD.MM.YYYY tarihinde <phrase>` + "`" + ` where phrase is
   ` + "`" + `tamamlandı` + "`" + ` (Done), ` + "`" + `devam ediyor` + "`" + ` (In Progress) or
   ` + "`" + `yapılacaklara eklendi` + "`" + ` (To Do).
5. **Meetings** map a free-form week label to a note. Setting a week again replaces its note.
6. **Project status** defaults to ` + "`" + `In Progress` + "`" + `; owner defaults to empty.
`
