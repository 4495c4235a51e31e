// Package unpack reverses the "p,a,c,k,e,d" JavaScript packer used to hide
// track data on album pages.
//
// A packed script looks like:
//
//	eval(function(p,a,c,k,e,d){...}('0 1=2',62,3,'var|x|42'.split('|'),0,{}))
//
// The first argument is the payload, where every identifier has been
// replaced by its index into the symbol table written in the given radix.
// Decoding is a pure text transformation:
//
//	for _, p := range unpack.FindPayloads(script) {
//	    src, err := unpack.Unpack(p)
//	    if err != nil {
//	        // unsupported radix: skip this block
//	        continue
//	    }
//	    fmt.Println(src) // "var x=42"
//	}
//
// Radixes 2-36 use the usual digits and case-insensitive letters, 37-62 use
// 0-9a-zA-Z, and 63-95 use printable ASCII starting at the space character.
package unpack
