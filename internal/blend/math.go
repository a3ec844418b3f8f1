package blend

// div255 divides x by 255 exactly, without a division.
//
// Formula: ((x + 1) + ((x + 1) >> 8)) >> 8 (Alvy Ray Smith).
func div255(x uint32) uint32 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// mulDiv255 returns a*b/255 rounded down.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint32(a) * uint32(b)))
}

func addClamp(a, b byte) byte {
	if s := uint16(a) + uint16(b); s < 255 {
		return byte(s)
	}
	return 255
}
