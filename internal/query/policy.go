package query

import (
	"errors"
	"fmt"
	"strings"
)

type Policy string

const (
	// PolicyReadOnly admits one SELECT or WITH statement and opens the
	// database read-only.
	PolicyReadOnly Policy = "read_only"
	// PolicyUnrestricted passes any statement through to the database.
	PolicyUnrestricted Policy = "unrestricted"
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyReadOnly:
		return PolicyReadOnly, nil
	case PolicyUnrestricted:
		return PolicyUnrestricted, nil
	default:
		return "", fmt.Errorf("unsupported query policy %q", value)
	}
}

var (
	ErrEmptyStatement    = errors.New("sql is required")
	ErrNotSelect         = errors.New("only SELECT or WITH statements are allowed")
	ErrMultipleStatement = errors.New("only a single statement is allowed")
)

// CheckStatement returns a non-nil error when policy refuses sqlText.
func CheckStatement(policy Policy, sqlText string) error {
	normalized := StripTrailingSemicolons(sqlText)
	if normalized == "" {
		return ErrEmptyStatement
	}
	if policy == PolicyUnrestricted {
		return nil
	}
	if !IsSelect(normalized) {
		return ErrNotSelect
	}
	if hasStatementSeparator(normalized) {
		return ErrMultipleStatement
	}
	return nil
}

// IsSelect reports whether the first keyword of sqlText is SELECT or WITH.
func IsSelect(sqlText string) bool {
	switch leadingKeyword(sqlText) {
	case "select", "with":
		return true
	}
	return false
}

// StripTrailingSemicolons cuts sqlText after its last token outside
// comments, dropping trailing semicolons and any comments after them.
// Quoted text always counts as a token.
func StripTrailingSemicolons(sqlText string) string {
	end := 0
	var quote byte
	for i := 0; i < len(sqlText); i++ {
		c := sqlText[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			end = i + 1
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			end = i + 1
		case c == '-' && i+1 < len(sqlText) && sqlText[i+1] == '-':
			next := strings.IndexByte(sqlText[i:], '\n')
			if next < 0 {
				i = len(sqlText)
				continue
			}
			i += next
		case c == '/' && i+1 < len(sqlText) && sqlText[i+1] == '*':
			next := strings.Index(sqlText[i+2:], "*/")
			if next < 0 {
				i = len(sqlText)
				continue
			}
			i += next + 3
		case c == ';', c == ' ', c == '\t', c == '\n', c == '\r':
		default:
			end = i + 1
		}
	}
	return strings.TrimSpace(sqlText[:end])
}

func leadingKeyword(sqlText string) string {
	rest := strings.TrimSpace(sqlText)
	for {
		switch {
		case strings.HasPrefix(rest, "--"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				return ""
			}
			rest = strings.TrimSpace(rest[end+1:])
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest, "*/")
			if end < 0 {
				return ""
			}
			rest = strings.TrimSpace(rest[end+2:])
		case strings.HasPrefix(rest, "("):
			rest = strings.TrimSpace(rest[1:])
		default:
			end := strings.IndexFunc(rest, func(r rune) bool {
				return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
			})
			if end < 0 {
				end = len(rest)
			}
			return strings.ToLower(rest[:end])
		}
	}
}

// hasStatementSeparator reports a semicolon outside quotes and comments.
func hasStatementSeparator(sqlText string) bool {
	var quote byte
	for i := 0; i < len(sqlText); i++ {
		c := sqlText[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '-' && i+1 < len(sqlText) && sqlText[i+1] == '-':
			end := strings.IndexByte(sqlText[i:], '\n')
			if end < 0 {
				return false
			}
			i += end
		case c == '/' && i+1 < len(sqlText) && sqlText[i+1] == '*':
			end := strings.Index(sqlText[i+2:], "*/")
			if end < 0 {
				return false
			}
			i += end + 3
		case c == ';':
			return true
		}
	}
	return false
}
