package querysql

import "strings"

// quoteIdentifier returns name, double-quoted when it is not a plain identifier
// or collides with a keyword.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		digit := c >= '0' && c <= '9'
		if !letter && (i == 0 || !digit) {
			return true
		}
	}
	return keywords[strings.ToUpper(name)]
}

// keywords is the subset of SQLite keywords likely to appear as column names.
var keywords = map[string]bool{
	"ABORT": true, "ALL": true, "AND": true, "AS": true, "ASC": true, "BETWEEN": true,
	"BY": true, "CASE": true, "CHECK": true, "COLLATE": true, "COLUMN": true,
	"CONSTRAINT": true, "CREATE": true, "CROSS": true, "CURRENT": true, "DEFAULT": true,
	"DELETE": true, "DESC": true, "DISTINCT": true, "DROP": true, "ELSE": true, "END": true,
	"ESCAPE": true, "EXCEPT": true, "EXISTS": true, "FROM": true, "GLOB": true,
	"GROUP": true, "HAVING": true, "IN": true, "INDEX": true, "INSERT": true,
	"INTERSECT": true, "INTO": true, "IS": true, "JOIN": true, "KEY": true, "LEFT": true,
	"LIKE": true, "LIMIT": true, "MATCH": true, "NOT": true, "NULL": true, "OFFSET": true,
	"ON": true, "OR": true, "ORDER": true, "PRIMARY": true, "REFERENCES": true,
	"REGEXP": true, "SELECT": true, "SET": true, "TABLE": true, "THEN": true, "TO": true,
	"UNION": true, "UNIQUE": true, "UPDATE": true, "VALUES": true, "WHEN": true,
	"WHERE": true, "WITH": true,
}
