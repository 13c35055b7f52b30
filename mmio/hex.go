package mmio

func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	buf := []byte("0x00000000")
	for i := 9; i >= 2; i-- {
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf)
}
