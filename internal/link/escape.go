package link

import "strings"

const upperHex = "0123456789ABCDEF"

// Unquote decodes every valid %XX escape in s once. Malformed escapes, such
// as a lone "%" or "%zz", are kept as written rather than rejected.
func Unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// FullyUnquote unquotes s until it stops changing, collapsing names that
// were percent-encoded more than once ("%2520" -> "%20" -> " "). Bytes that
// do not form valid UTF-8 are replaced with U+FFFD.
func FullyUnquote(s string) string {
	for {
		next := Unquote(s)
		if next == s {
			return strings.ToValidUTF8(s, "\uFFFD")
		}
		s = next
	}
}

// Escape percent-encodes s for use in a download URL path.
//
// ASCII letters and digits are kept, as are "/", "-", ".", "_", "~", "(" and
// ")". Every other byte, including all non-ASCII UTF-8 bytes, is escaped.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '/', '-', '.', '_', '~', '(', ')':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
