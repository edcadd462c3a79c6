package conv

// AppendDec appends n in base 10. Used on the MCU build where fmt and
// strconv are too heavy for log lines.
func AppendDec(dst []byte, n int64) []byte {
	var tmp [20]byte
	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
		dst = append(dst, '-')
	}
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	return append(dst, tmp[i:]...)
}

func Dec(n int64) string { return string(AppendDec(nil, n)) }
