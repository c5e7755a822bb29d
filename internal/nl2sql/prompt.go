package nl2sql

import "strings"

const promptTemplate = `
You are a helpful assistant that converts user requests into SQL queries.

Database Schema:
{context}

User Request:
{query}

Instructions:
- Use only the tables and fields from the schema.
- Generate a correct SQL query that matches the user request.
- Do not add explanations, comments, or markdown formatting.
- Only output the SQL query.
`

// BuildPrompt fills the template in a single pass, so placeholder text inside
// the request is copied as-is and never expanded.
func BuildPrompt(schema, request string) string {
	return strings.NewReplacer("{context}", schema, "{query}", request).Replace(promptTemplate)
}
