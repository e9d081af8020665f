package change

import (
	"strings"
	"unicode"

	"github.com/lib/pq"
)

// Reserved words that must be quoted when used as identifiers
var reservedWords = map[string]bool{
	"all":        true,
	"analyse":    true,
	"analyze":    true,
	"and":        true,
	"any":        true,
	"array":      true,
	"as":         true,
	"asc":        true,
	"check":      true,
	"column":     true,
	"constraint": true,
	"create":     true,
	"default":    true,
	"desc":       true,
	"distinct":   true,
	"do":         true,
	"end":        true,
	"for":        true,
	"foreign":    true,
	"from":       true,
	"grant":      true,
	"group":      true,
	"having":     true,
	"in":         true,
	"limit":      true,
	"not":        true,
	"null":       true,
	"offset":     true,
	"on":         true,
	"or":         true,
	"order":      true,
	"primary":    true,
	"references": true,
	"select":     true,
	"table":      true,
	"to":         true,
	"unique":     true,
	"user":       true,
	"using":      true,
	"when":       true,
	"where":      true,
	"with":       true,
}

// needsQuoting checks if an identifier needs to be quoted
func needsQuoting(identifier string) bool {
	if identifier == "" {
		return false
	}
	if reservedWords[strings.ToLower(identifier)] {
		return true
	}
	for i, r := range identifier {
		// PostgreSQL folds unquoted identifiers to lowercase
		if unicode.IsUpper(r) {
			return true
		}
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}
	return false
}

// quoteIdent quotes an identifier only when PostgreSQL requires it
func quoteIdent(identifier string) string {
	if needsQuoting(identifier) {
		return pq.QuoteIdentifier(identifier)
	}
	return identifier
}

// qualify returns schema.name with each part quoted as needed
func qualify(schema, name string) string {
	if schema == "" {
		return quoteIdent(name)
	}
	return quoteIdent(schema) + "." + quoteIdent(name)
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}

// quoteLiteral renders a string constant
func quoteLiteral(value string) string {
	return pq.QuoteLiteral(value)
}
