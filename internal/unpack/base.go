package unpack

import (
	"errors"
	"fmt"
	"math"
)

// Supported radix range of the packer.
const (
	MinBase = 2
	MaxBase = 95
)

const (
	alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// printableASCII holds code points 32 (space) through 126.
	printableASCII = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"
)

// UnsupportedBaseError is returned when a radix falls outside MinBase..MaxBase.
// A payload declaring such a radix cannot be decoded at all.
type UnsupportedBaseError struct {
	Base int
}

func (e *UnsupportedBaseError) Error() string {
	return fmt.Sprintf("unsupported base %d (want %d-%d)", e.Base, MinBase, MaxBase)
}

// InvalidSymbolError is returned when a token contains a character outside
// the alphabet of the decoder's base.
type InvalidSymbolError struct {
	Symbols string
	Base    int
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("symbols %q are not valid in base %d", e.Symbols, e.Base)
}

// ErrOverflow is returned when a token's value does not fit in an int.
// No symbol table is that large, so callers treat it like an invalid symbol.
var ErrOverflow = errors.New("value overflows int")

// alphabetKind selects how symbols map to digit values for a radix.
type alphabetKind int

const (
	// standardPositional covers bases 2-36: 0-9 then a-z, case-insensitive.
	standardPositional alphabetKind = iota
	// truncatedAlphanumeric covers bases 37-62: 0-9a-zA-Z cut to the base.
	truncatedAlphanumeric
	// fullPrintableASCII covers bases 63-95: printable ASCII from space, cut to the base.
	fullPrintableASCII
)

func kindFor(base int) alphabetKind {
	switch {
	case base <= 36:
		return standardPositional
	case base <= 62:
		return truncatedAlphanumeric
	default:
		return fullPrintableASCII
	}
}

// Decoder converts symbol strings in a fixed base into integers.
//
// The alphabet is chosen once, when the Decoder is built, so a Decoder can be
// reused for every token of a payload. Decoders are immutable and safe for
// concurrent use.
type Decoder struct {
	base     int
	kind     alphabetKind
	alphabet string
	values   [128]int8
}

// NewDecoder builds a Decoder for base, or returns *UnsupportedBaseError.
func NewDecoder(base int) (*Decoder, error) {
	if base < MinBase || base > MaxBase {
		return nil, &UnsupportedBaseError{Base: base}
	}

	d := &Decoder{base: base, kind: kindFor(base)}
	switch d.kind {
	case standardPositional, truncatedAlphanumeric:
		d.alphabet = alphanumeric[:base]
	case fullPrintableASCII:
		d.alphabet = printableASCII[:base]
	}

	for i := range d.values {
		d.values[i] = -1
	}
	for i := 0; i < len(d.alphabet); i++ {
		d.values[d.alphabet[i]] = int8(i)
	}
	if d.kind == standardPositional {
		// Upper-case letters mirror their lower-case digit values.
		for i := 10; i < len(d.alphabet); i++ {
			d.values[d.alphabet[i]-'a'+'A'] = int8(i)
		}
	}

	return d, nil
}

// Base returns the radix of the decoder.
func (d *Decoder) Base() int {
	return d.base
}

// Decode returns the integer value of symbols.
//
// An empty string, or one containing a character outside the alphabet,
// yields *InvalidSymbolError. Values beyond the int range yield ErrOverflow.
func (d *Decoder) Decode(symbols string) (int, error) {
	if symbols == "" {
		return 0, &InvalidSymbolError{Symbols: symbols, Base: d.base}
	}

	value := 0
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if c >= 128 || d.values[c] < 0 {
			return 0, &InvalidSymbolError{Symbols: symbols, Base: d.base}
		}
		digit := int(d.values[c])
		if value > (math.MaxInt-digit)/d.base {
			return 0, ErrOverflow
		}
		value = value*d.base + digit
	}
	return value, nil
}

// Encode is the inverse of Decode and always produces the canonical form:
// no leading zeros and lower-case letters for bases up to 36.
// Negative values encode as the empty string.
func (d *Decoder) Encode(value int) string {
	if value < 0 {
		return ""
	}
	if value == 0 {
		return d.alphabet[:1]
	}

	var buf []byte
	for value > 0 {
		buf = append(buf, d.alphabet[value%d.base])
		value /= d.base
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// Decode is a convenience wrapper building a Decoder for a single call.
func Decode(symbols string, base int) (int, error) {
	d, err := NewDecoder(base)
	if err != nil {
		return 0, err
	}
	return d.Decode(symbols)
}

