package entity

import "strings"

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent escapes s exactly like ECMAScript encodeURIComponent:
// everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is percent-encoded as UTF-8.
// Invalid UTF-8 bytes are encoded as U+FFFD.
func EncodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && isUnreserved(byte(r)) {
			sb.WriteByte(byte(r))
			continue
		}
		var buf [4]byte
		n := encodeRune(buf[:], r)
		for _, b := range buf[:n] {
			sb.WriteByte('%')
			sb.WriteByte(upperhex[b>>4])
			sb.WriteByte(upperhex[b&0x0f])
		}
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

func encodeRune(p []byte, r rune) int {
	return copy(p, string(r))
}
