package engine

// colorRef converts 0xRRGGBB to the 0x00BBGGRR layout Win32 expects.
func colorRef(hex uint) uint32 {
	r := uint32(hex>>16) & 0xff
	g := uint32(hex>>8) & 0xff
	b := uint32(hex) & 0xff
	return b<<16 | g<<8 | r
}
