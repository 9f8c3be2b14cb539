package xlsbiff

// Shared-string-table decoding. Strings may span CONTINUE records; each
// continuation restarts with its own compression flag byte, so the reader
// tracks chunk boundaries while consuming characters.

type sstReader struct {
	chunks [][]byte
	ci     int
	off    int
}

func (r *sstReader) remaining() bool {
	for r.ci < len(r.chunks) && r.off >= len(r.chunks[r.ci]) {
		r.ci++
		r.off = 0
	}
	return r.ci < len(r.chunks)
}

func (r *sstReader) atChunkEnd() bool {
	return r.ci < len(r.chunks) && r.off >= len(r.chunks[r.ci])
}

func (r *sstReader) u8() (byte, bool) {
	if !r.remaining() {
		return 0, false
	}
	b := r.chunks[r.ci][r.off]
	r.off++
	return b, true
}

func (r *sstReader) u16() (uint16, bool) {
	lo, ok := r.u8()
	if !ok {
		return 0, false
	}
	hi, ok := r.u8()
	if !ok {
		return 0, false
	}
	return uint16(lo) | uint16(hi)<<8, true
}

func (r *sstReader) u32() (uint32, bool) {
	lo, ok := r.u16()
	if !ok {
		return 0, false
	}
	hi, ok := r.u16()
	if !ok {
		return 0, false
	}
	return uint32(lo) | uint32(hi)<<16, true
}

func (r *sstReader) skip(n int) {
	for n > 0 && r.remaining() {
		avail := len(r.chunks[r.ci]) - r.off
		if avail > n {
			avail = n
		}
		r.off += avail
		n -= avail
	}
}

// readString consumes one XLUnicodeRichExtendedString.
func (r *sstReader) readString() (string, bool) {
	cch, ok := r.u16()
	if !ok {
		return "", false
	}
	flags, ok := r.u8()
	if !ok {
		return "", false
	}
	high := flags&0x01 != 0
	ext := flags&0x04 != 0
	rich := flags&0x08 != 0

	var runs uint16
	var extSize uint32
	if rich {
		if runs, ok = r.u16(); !ok {
			return "", false
		}
	}
	if ext {
		if extSize, ok = r.u32(); !ok {
			return "", false
		}
	}

	out := make([]rune, 0, cch)
	for i := 0; i < int(cch); i++ {
		if r.atChunkEnd() {
			// A continuation re-declares the compression flag.
			b, ok := r.u8()
			if !ok {
				break
			}
			high = b&0x01 != 0
		}
		if high {
			v, ok := r.u16()
			if !ok {
				break
			}
			out = append(out, rune(v))
		} else {
			v, ok := r.u8()
			if !ok {
				break
			}
			out = append(out, rune(v))
		}
	}

	r.skip(int(runs) * 4)
	r.skip(int(extSize))
	return string(out), true
}

// parseSST decodes the SST record payload followed by its CONTINUE payloads.
func parseSST(chunks [][]byte) []string {
	r := &sstReader{chunks: chunks}
	r.skip(4) // total string count
	unique, ok := r.u32()
	if !ok {
		return nil
	}
	out := make([]string, 0, unique)
	for i := 0; i < int(unique); i++ {
		s, ok := r.readString()
		if !ok {
			break
		}
		out = append(out, s)
	}
	return out
}

// defaultPalette is the built-in BIFF8 colour table, replaced per-index by a
// PALETTE record when the file carries one.
func defaultPalette() map[int]string {
	std := []string{
		// 0-7: EGA colours
		"000000", "FFFFFF", "FF0000", "00FF00", "0000FF", "FFFF00", "FF00FF", "00FFFF",
		// 8-63: default workbook palette
		"000000", "FFFFFF", "FF0000", "00FF00", "0000FF", "FFFF00", "FF00FF", "00FFFF",
		"800000", "008000", "000080", "808000", "800080", "008080", "C0C0C0", "808080",
		"9999FF", "993366", "FFFFCC", "CCFFFF", "660066", "FF8080", "0066CC", "CCCCFF",
		"000080", "FF00FF", "FFFF00", "00FFFF", "800080", "800000", "008080", "0000FF",
		"00CCFF", "CCFFFF", "CCFFCC", "FFFF99", "99CCFF", "FF99CC", "CC99FF", "FFCC99",
		"3366FF", "33CCCC", "99CC00", "FFCC00", "FF9900", "FF6600", "666699", "969696",
		"003366", "339966", "003300", "333300", "993300", "993366", "333399", "333333",
	}
	m := make(map[int]string, len(std))
	for i, rgb := range std {
		m[i] = rgb
	}
	return m
}
