package unpack

// Unpack fully decodes a payload: token rewriting followed by string table
// inlining.
func Unpack(p Payload) (string, error) {
	src, err := Rewrite(p)
	if err != nil {
		return "", err
	}
	return ResolveStrings(src), nil
}
