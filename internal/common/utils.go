package common

// WipeByteArray overwrites the contents of b with zeros. Passwords read from
// the terminal are wiped this way once they have been sent.
//
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// FirstNonEmpty returns the first non-empty string of values, or "".
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
