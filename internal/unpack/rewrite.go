package unpack

import (
	"regexp"
	"strings"
)

// wordPattern matches maximal runs of ASCII word characters.
var wordPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// unescapeLiteral undoes the escaping applied when the payload was embedded
// in a single-quoted script literal. Backslashes are collapsed first.
func unescapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\\`, `\`)
	return strings.ReplaceAll(s, `\'`, `'`)
}

// Rewrite substitutes every encoded token of p.Body with its symbol table
// entry.
//
// Tokens are decoded in p.Radix. A token that does not decode, decodes past
// the end of the table, or hits an empty entry is kept verbatim. The only
// error is *UnsupportedBaseError for a radix outside MinBase..MaxBase.
func Rewrite(p Payload) (string, error) {
	decoder, err := NewDecoder(p.Radix)
	if err != nil {
		return "", err
	}

	body := unescapeLiteral(p.Body)
	return wordPattern.ReplaceAllStringFunc(body, func(token string) string {
		index, err := decoder.Decode(token)
		if err != nil {
			return token
		}
		if index >= len(p.SymbolTable) || p.SymbolTable[index] == "" {
			return token
		}
		return p.SymbolTable[index]
	}), nil
}
