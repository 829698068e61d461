package clickhouse

import (
	"strings"
	"unicode"
)

// QueryKind is the caller's intent for a statement.
type QueryKind int

const (
	// KindRead statements return rows.
	KindRead QueryKind = iota + 1
	// KindWrite statements modify data.
	KindWrite
	// KindAdmin covers DDL and administrative statements.
	KindAdmin
)

func (k QueryKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// IsSelectQuery reports whether query mentions "select" or "on cluster" in any
// case. It is a substring heuristic: keywords inside comments or string
// literals match too.
func IsSelectQuery(query string) bool {
	lower := strings.ToLower(query)
	return strings.Contains(lower, "select") || strings.Contains(lower, "on cluster")
}

// ClassifyStatement classifies a statement by its leading keyword, ignoring
// whitespace, comments and opening parentheses.
func ClassifyStatement(query string) QueryKind {
	keyword, rest := leadingKeyword(query)
	switch keyword {
	case "SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXISTS", "EXPLAIN", "CHECK":
		return KindRead
	case "INSERT", "DELETE", "UPDATE":
		return KindWrite
	case "ALTER":
		for _, token := range strings.Fields(strings.ToUpper(rest)) {
			if token == "UPDATE" || token == "DELETE" {
				return KindWrite
			}
		}
		return KindAdmin
	default:
		return KindAdmin
	}
}

func leadingKeyword(query string) (string, string) {
	s := query
	for {
		s = strings.TrimLeftFunc(s, func(r rune) bool {
			return unicode.IsSpace(r) || r == '('
		})
		switch {
		case strings.HasPrefix(s, "--"), strings.HasPrefix(s, "#"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return "", ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return "", ""
			}
			s = s[idx+2:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !unicode.IsLetter(r)
			})
			if end < 0 {
				end = len(s)
			}
			return strings.ToUpper(s[:end]), s[end:]
		}
	}
}
