package cleaner

import (
	"github.com/xuri/excelize/v2"

	"tripcleaner/internal/domain"
)

const reportSheet = "Raw_Data"

// WriteReport renders a mapped table as the styled review workbook:
// friendly headers on a blue band, mandatory columns first, and per-cell
// highlights carried over from the source file so reviewers keep the ops
// team's color markings.
func WriteReport(t *Table, schema Schema) ([]byte, error) {
	if t == nil || len(t.Rows) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorWhite},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeaderBg}},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, schema.HeaderFor(col)); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(reportSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}
	if last, err := excelize.ColumnNumberToName(len(t.Columns)); err == nil {
		f.SetColWidth(reportSheet, "A", last, 15)
	}

	// Source styles repeat heavily, so style IDs are cached per combination.
	styleIDs := map[CellStyle]int{}
	for r, row := range t.Rows {
		rowStyles := t.StyleAt(r)
		for c, col := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheet, cell, row[col]); err != nil {
				return nil, err
			}
			st, ok := rowStyles[col]
			if !ok || st == (CellStyle{}) {
				continue
			}
			id, ok := styleIDs[st]
			if !ok {
				id, err = f.NewStyle(cellExcelStyle(st))
				if err != nil {
					return nil, err
				}
				styleIDs[st] = id
			}
			if err := f.SetCellStyle(reportSheet, cell, cell, id); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellExcelStyle(st CellStyle) *excelize.Style {
	out := &excelize.Style{Font: &excelize.Font{Bold: st.Bold}}
	if st.FontColor != "" {
		out.Font.Color = st.FontColor
	}
	if st.Background != "" {
		out.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{st.Background}}
	}
	return out
}
