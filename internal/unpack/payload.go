package unpack

import (
	"regexp"
	"strconv"
	"strings"
)

// Marker is the literal signature of a packed script.
const Marker = "eval(function(p,a,c,k,e,d)"

// packedPattern matches the full packer invocation:
//
//	eval(function(p,a,c,k,e,d){...}('payload',radix,count,'sym|bols'.split('|'),0,{}))
//
// Payload and symbol table are single-quoted literals that may contain
// escaped quotes.
var packedPattern = regexp.MustCompile(
	`(?s)eval\(function\(p,a,c,k,e,d\)\{.*?\}\('((?:[^']|\\')*)',` +
		`(\d+),` +
		`(\d+),` +
		`'((?:[^']|\\')*)'\.split\('\|'\)` +
		`(?:,[^)]*)?\)`)

// Payload is one packed block recovered from a script.
type Payload struct {
	// Body is the obfuscated source, still carrying the escapes of the
	// quoted literal it was embedded in.
	Body string

	// Radix is the numeral base used to encode symbol indices.
	Radix int

	// DeclaredSymbolCount is the count argument passed to the packer.
	DeclaredSymbolCount int

	// SymbolTable maps decoded token values to their original words.
	// Empty entries mean "keep the token as written".
	SymbolTable []string
}

// CountMismatch reports whether the declared symbol count disagrees with the
// table actually present. Decoding still proceeds with the real table.
func (p Payload) CountMismatch() bool {
	return p.DeclaredSymbolCount != len(p.SymbolTable)
}

// FindPayloads returns every packed block in script, in source order.
// A script without the packer signature yields nil.
func FindPayloads(script string) []Payload {
	if !strings.Contains(script, Marker) {
		return nil
	}

	matches := packedPattern.FindAllStringSubmatch(script, -1)
	payloads := make([]Payload, 0, len(matches))
	for _, m := range matches {
		radix, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		count, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		payloads = append(payloads, Payload{
			Body:                m[1],
			Radix:               radix,
			DeclaredSymbolCount: count,
			SymbolTable:         strings.Split(m[4], "|"),
		})
	}
	return payloads
}
