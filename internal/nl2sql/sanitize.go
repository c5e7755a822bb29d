package nl2sql

import "strings"

// SanitizeSQL strips markdown code fences and surrounding whitespace from
// model output. It does not check that the result is valid SQL.
func SanitizeSQL(value string) string {
	cleaned := strings.TrimSpace(value)
	for {
		next := strings.ReplaceAll(cleaned, "```sql", "")
		next = strings.TrimSpace(strings.ReplaceAll(next, "```", ""))
		if next == cleaned {
			return cleaned
		}
		cleaned = next
	}
}
