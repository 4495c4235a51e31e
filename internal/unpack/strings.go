package unpack

import (
	"regexp"
	"strconv"
	"strings"
)

// stringTablePattern matches the first string-array declaration planted by
// the obfuscator, e.g. var _0xab12=["foo","bar"];
var stringTablePattern = regexp.MustCompile(`(?s)var *(_\w+)=\["(.*?)"\];`)

// ResolveStrings inlines the string table declared in src.
//
// Every name[index] reference after the declaration is replaced by the
// quoted literal at that index, and everything up to and including the
// declaration is dropped. References to indices outside the table are left
// as written. Without a declaration src is returned unchanged.
func ResolveStrings(src string) string {
	loc := stringTablePattern.FindStringSubmatchIndex(src)
	if loc == nil {
		return src
	}

	name := src[loc[2]:loc[3]]
	literals := strings.Split(src[loc[4]:loc[5]], `","`)
	rest := src[loc[1]:]

	ref := regexp.MustCompile(regexp.QuoteMeta(name) + `\[(\d+)\]`)
	return ref.ReplaceAllStringFunc(rest, func(m string) string {
		open := strings.IndexByte(m, '[')
		index, err := strconv.Atoi(m[open+1 : len(m)-1])
		if err != nil || index >= len(literals) {
			return m
		}
		return `"` + literals[index] + `"`
	})
}
