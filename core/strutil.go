package core

// String helpers that avoid the fmt package so the core stays small
// enough for bare-metal builds.

const hexDigits = "0123456789abcdef"

// itoa converts an integer to a decimal string
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa64(uint64(-n))
	}
	return utoa64(uint64(n))
}

// utoa converts an unsigned 32-bit integer to a decimal string
func utoa(n uint32) string {
	return utoa64(uint64(n))
}

// utoa64 converts an unsigned 64-bit integer to a decimal string
func utoa64(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// hex32 formats a register value as 0x followed by eight hex digits
func hex32(v uint32) string {
	var buf [10]byte
	buf[0], buf[1] = '0', 'x'
	for i := 9; i >= 2; i-- {
		buf[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return string(buf[:])
}
