package conv

const hexDigits = "0123456789ABCDEF"

// AppendHex32 appends n as eight uppercase hex digits, no prefix. This is
// the form remote codes take in diagnostics and config.
func AppendHex32(dst []byte, n uint32) []byte {
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[n>>uint(shift)&0xF])
	}
	return dst
}

func Hex32(n uint32) string {
	b := make([]byte, 0, 8)
	return string(AppendHex32(b, n))
}

// ParseU32Hex accepts 1 to 8 hex digits, optionally prefixed 0x or 0X.
func ParseU32Hex(s string) (uint32, bool) {
	if len(s) > 2 && s[0] == '0' && s[1]|0x20 == 'x' {
		s = s[2:]
	}
	if s == "" || len(s) > 8 {
		return 0, false
	}
	var n uint32
	for _, c := range []byte(s) {
		d, ok := hexVal(c)
		if !ok {
			return 0, false
		}
		n = n<<4 | uint32(d)
	}
	return n, true
}

func hexVal(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
