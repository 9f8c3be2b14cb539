// Package xlsbiff reads cell values and per-cell formatting (background
// colour, font colour, boldness) from legacy binary .xls workbooks. Only the
// record types the cleaning pipeline needs are decoded; everything else in
// the stream is skipped.
package xlsbiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Record identifiers (BIFF8).
const (
	recBOF        = 0x0809
	recEOF        = 0x000A
	recContinue   = 0x003C
	recSST        = 0x00FC
	recBoundSheet = 0x0085
	recFont       = 0x0031
	recXF         = 0x00E0
	recPalette    = 0x0092
	recLabelSST   = 0x00FD
	recLabel      = 0x0204
	recNumber     = 0x0203
	recRK         = 0x027E
	recMulRK      = 0x00BD
	recBlank      = 0x0201
	recMulBlank   = 0x0190
	recBoolErr    = 0x0205
)

// Style is one cell's formatting from the workbook's style table. Colours
// are upper-case RGB hex; black, white and automatic resolve to "".
type Style struct {
	Background string
	FontColor  string
	Bold       bool
}

// Cell is a value plus its style.
type Cell struct {
	Value string
	Style Style
}

type cellData struct {
	value string
	xf    uint16
}

// Sheet is one worksheet of an opened workbook.
type Sheet struct {
	Name   string
	wb     *Workbook
	cells  map[uint32]cellData
	maxRow int
	maxCol int
}

// Workbook is a parsed .xls file.
type Workbook struct {
	Sheets  []*Sheet
	sst     []string
	fonts   []fontInfo
	xfs     []xfInfo
	palette map[int]string
}

type fontInfo struct {
	colorIndex int
	bold       bool
}

type xfInfo struct {
	fontIndex    int
	fillPattern  int
	fillColorIdx int
}

// Open parses a legacy .xls file from memory.
func Open(data []byte) (*Workbook, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xls container: %w", err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		name := strings.TrimSpace(entry.Name)
		if !strings.EqualFold(name, "Workbook") && !strings.EqualFold(name, "Book") {
			continue
		}
		stream, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("xls workbook stream: %w", err)
		}
		return parseStream(stream)
	}
	return nil, errors.New("xls: no workbook stream found")
}

func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

type record struct {
	id   uint16
	data []byte
	pos  int // byte offset of the record header in the stream
}

func nextRecord(stream []byte, pos int) (record, int, bool) {
	if pos+4 > len(stream) {
		return record{}, pos, false
	}
	id := le16(stream[pos : pos+2])
	size := int(le16(stream[pos+2 : pos+4]))
	if pos+4+size > len(stream) {
		return record{}, pos, false
	}
	rec := record{id: id, data: stream[pos+4 : pos+4+size], pos: pos}
	return rec, pos + 4 + size, true
}

type boundSheet struct {
	offset int
	name   string
}

func parseStream(stream []byte) (*Workbook, error) {
	wb := &Workbook{palette: defaultPalette()}

	rec, pos, ok := nextRecord(stream, 0)
	if !ok || rec.id != recBOF {
		return nil, errors.New("xls: workbook globals BOF missing")
	}

	var sheets []boundSheet
	for {
		rec, npos, ok := nextRecord(stream, pos)
		if !ok {
			break
		}
		pos = npos
		switch rec.id {
		case recFont:
			wb.addFont(rec.data)
		case recXF:
			wb.addXF(rec.data)
		case recPalette:
			wb.loadPalette(rec.data)
		case recBoundSheet:
			if bs, ok := parseBoundSheet(rec.data); ok {
				sheets = append(sheets, bs)
			}
		case recSST:
			chunks := [][]byte{rec.data}
			for {
				peek, ppos, ok := nextRecord(stream, pos)
				if !ok || peek.id != recContinue {
					break
				}
				chunks = append(chunks, peek.data)
				pos = ppos
			}
			wb.sst = parseSST(chunks)
		case recEOF:
			goto globalsDone
		}
	}
globalsDone:

	for _, bs := range sheets {
		sh := &Sheet{Name: bs.name, wb: wb, cells: map[uint32]cellData{}, maxRow: -1, maxCol: -1}
		if err := sh.parse(stream, bs.offset); err != nil {
			// A damaged sheet substream degrades to empty, not a hard error.
			continue
		}
		wb.Sheets = append(wb.Sheets, sh)
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("xls: no readable sheets")
	}
	return wb, nil
}

func parseBoundSheet(d []byte) (boundSheet, bool) {
	if len(d) < 8 {
		return boundSheet{}, false
	}
	offset := int(le32(d[0:4]))
	cch := int(d[6])
	grbit := d[7]
	name := ""
	if grbit&1 == 0 {
		if 8+cch <= len(d) {
			name = string(d[8 : 8+cch])
		}
	} else {
		if 8+cch*2 <= len(d) {
			name = decodeUTF16(d[8 : 8+cch*2])
		}
	}
	return boundSheet{offset: offset, name: name}, true
}

func (wb *Workbook) addFont(d []byte) {
	if len(d) < 8 {
		wb.fonts = append(wb.fonts, fontInfo{colorIndex: 0x7FFF})
		return
	}
	wb.fonts = append(wb.fonts, fontInfo{
		colorIndex: int(le16(d[4:6])),
		bold:       le16(d[6:8]) >= 0x02BC,
	})
}

func (wb *Workbook) addXF(d []byte) {
	if len(d) < 20 {
		wb.xfs = append(wb.xfs, xfInfo{fontIndex: -1})
		return
	}
	packed := le16(d[18:20])
	wb.xfs = append(wb.xfs, xfInfo{
		fontIndex:    int(le16(d[0:2])),
		fillPattern:  int(le32(d[14:18]) >> 26 & 0x3F),
		fillColorIdx: int(packed & 0x7F),
	})
}

func (wb *Workbook) loadPalette(d []byte) {
	if len(d) < 2 {
		return
	}
	count := int(le16(d[0:2]))
	for i := 0; i < count && 2+i*4+3 <= len(d); i++ {
		off := 2 + i*4
		wb.palette[8+i] = fmt.Sprintf("%02X%02X%02X", d[off], d[off+1], d[off+2])
	}
}

// colorHex resolves a palette index. Automatic/system indexes, black and
// white all come back "" so that only deliberate colouring survives into the
// style table.
func (wb *Workbook) colorHex(idx int) string {
	if idx < 0 || idx >= 64 {
		return ""
	}
	rgb, ok := wb.palette[idx]
	if !ok || rgb == "000000" || rgb == "FFFFFF" {
		return ""
	}
	return rgb
}

// font index 4 does not exist in BIFF files; stored fonts 4+ shift by one.
func (wb *Workbook) fontAt(idx int) (fontInfo, bool) {
	if idx == 4 {
		return fontInfo{}, false
	}
	if idx > 4 {
		idx--
	}
	if idx < 0 || idx >= len(wb.fonts) {
		return fontInfo{}, false
	}
	return wb.fonts[idx], true
}

// styleForXF resolves one XF index into a Style. Any out-of-range lookup
// falls back to the zero Style rather than failing the report.
func (wb *Workbook) styleForXF(xf uint16) Style {
	i := int(xf)
	if i < 0 || i >= len(wb.xfs) {
		return Style{}
	}
	info := wb.xfs[i]
	var st Style
	if info.fillPattern > 0 {
		st.Background = wb.colorHex(info.fillColorIdx)
	}
	if f, ok := wb.fontAt(info.fontIndex); ok {
		st.FontColor = wb.colorHex(f.colorIndex)
		st.Bold = f.bold
	}
	return st
}

func cellKey(row, col int) uint32 {
	return uint32(row)<<16 | uint32(col)&0xFFFF
}

func (s *Sheet) put(row, col int, xf uint16, value string) {
	s.cells[cellKey(row, col)] = cellData{value: value, xf: xf}
	if row > s.maxRow {
		s.maxRow = row
	}
	if col > s.maxCol {
		s.maxCol = col
	}
}

func (s *Sheet) parse(stream []byte, offset int) error {
	rec, pos, ok := nextRecord(stream, offset)
	if !ok || rec.id != recBOF {
		return errors.New("xls: sheet BOF missing")
	}
	depth := 1
	for depth > 0 {
		rec, npos, ok := nextRecord(stream, pos)
		if !ok {
			break
		}
		pos = npos
		switch rec.id {
		case recBOF:
			depth++
		case recEOF:
			depth--
		case recLabelSST:
			if len(rec.data) >= 10 {
				row, col, xf := int(le16(rec.data[0:2])), int(le16(rec.data[2:4])), le16(rec.data[4:6])
				isst := int(le32(rec.data[6:10]))
				v := ""
				if isst >= 0 && isst < len(s.wb.sst) {
					v = s.wb.sst[isst]
				}
				s.put(row, col, xf, v)
			}
		case recLabel:
			if len(rec.data) >= 9 {
				row, col, xf := int(le16(rec.data[0:2])), int(le16(rec.data[2:4])), le16(rec.data[4:6])
				cch := int(le16(rec.data[6:8]))
				grbit := rec.data[8]
				v := ""
				if grbit&1 == 0 && 9+cch <= len(rec.data) {
					v = string(rec.data[9 : 9+cch])
				} else if 9+cch*2 <= len(rec.data) {
					v = decodeUTF16(rec.data[9 : 9+cch*2])
				}
				s.put(row, col, xf, v)
			}
		case recNumber:
			if len(rec.data) >= 14 {
				row, col, xf := int(le16(rec.data[0:2])), int(le16(rec.data[2:4])), le16(rec.data[4:6])
				bits := binary.LittleEndian.Uint64(rec.data[6:14])
				s.put(row, col, xf, formatNum(bitsToFloat(bits)))
			}
		case recRK:
			if len(rec.data) >= 10 {
				row, col, xf := int(le16(rec.data[0:2])), int(le16(rec.data[2:4])), le16(rec.data[4:6])
				s.put(row, col, xf, formatNum(decodeRK(le32(rec.data[6:10]))))
			}
		case recMulRK:
			if len(rec.data) >= 6 {
				row := int(le16(rec.data[0:2]))
				colFirst := int(le16(rec.data[2:4]))
				body := rec.data[4 : len(rec.data)-2]
				n := len(body) / 6
				for i := 0; i < n; i++ {
					xf := le16(body[i*6 : i*6+2])
					rk := le32(body[i*6+2 : i*6+6])
					s.put(row, colFirst+i, xf, formatNum(decodeRK(rk)))
				}
			}
		case recBlank:
			if len(rec.data) >= 6 {
				row, col, xf := int(le16(rec.data[0:2])), int(le16(rec.data[2:4])), le16(rec.data[4:6])
				s.put(row, col, xf, "")
			}
		case recMulBlank:
			if len(rec.data) >= 6 {
				row := int(le16(rec.data[0:2]))
				colFirst := int(le16(rec.data[2:4]))
				body := rec.data[4 : len(rec.data)-2]
				for i := 0; i*2+2 <= len(body); i++ {
					xf := le16(body[i*2 : i*2+2])
					s.put(row, colFirst+i, xf, "")
				}
			}
		case recBoolErr:
			if len(rec.data) >= 8 {
				row, col, xf := int(le16(rec.data[0:2])), int(le16(rec.data[2:4])), le16(rec.data[4:6])
				v := ""
				if rec.data[7] == 0 { // boolean, not error
					if rec.data[6] != 0 {
						v = "TRUE"
					} else {
						v = "FALSE"
					}
				}
				s.put(row, col, xf, v)
			}
		}
	}
	return nil
}

// NumRows returns the number of occupied rows (max row index + 1).
func (s *Sheet) NumRows() int { return s.maxRow + 1 }

// NumCols returns the number of occupied columns (max column index + 1).
func (s *Sheet) NumCols() int { return s.maxCol + 1 }

// Cell returns the value and style at (row, col); empty Cell when unset.
// Corrupt style entries degrade to the zero Style.
func (s *Sheet) Cell(row, col int) Cell {
	cd, ok := s.cells[cellKey(row, col)]
	if !ok {
		return Cell{}
	}
	return Cell{Value: cd.value, Style: s.wb.styleForXF(cd.xf)}
}

// Rows materializes the sheet as a dense value grid.
func (s *Sheet) Rows() [][]string {
	out := make([][]string, s.NumRows())
	for r := range out {
		row := make([]string, s.NumCols())
		for c := range row {
			row[c] = s.Cell(r, c).Value
		}
		out[r] = row
	}
	return out
}

func bitsToFloat(bits uint64) float64 {
	return math.Float64frombits(bits)
}

func decodeRK(v uint32) float64 {
	mul := 1.0
	if v&1 != 0 {
		mul = 0.01
	}
	if v&2 != 0 {
		// 30-bit signed integer
		n := int32(v) >> 2
		return float64(n) * mul
	}
	bits := uint64(v&0xFFFFFFFC) << 32
	return math.Float64frombits(bits) * mul
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func decodeUTF16(b []byte) string {
	u := make([]rune, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, rune(le16(b[i:i+2])))
	}
	return string(u)
}
