// Package pdftable recovers row/column tables from PDF pages. Bank toll
// statements embed their tables as positioned text, so extraction clusters
// text fragments into lines by Y position and splits lines into cells
// wherever the horizontal gap exceeds a threshold.
package pdftable

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// rowTolerance is the maximum Y distance (points) between fragments that
// still belong to one visual line; bank statements keep cell text of one row
// within a point or two even when a cell wraps.
const rowTolerance = 2.5

// colGap is the minimum horizontal whitespace (points) treated as a column
// boundary rather than a word space.
const colGap = 8.0

// Extract returns one table per page: rows of cell strings, top to bottom,
// left to right. Pages without text yield empty tables.
func Extract(data []byte) ([][][]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf open: %w", err)
	}

	pages := make([][][]string, 0, r.NumPage())
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		content := page.Content()
		pages = append(pages, pageTable(content.Text))
	}
	return pages, nil
}

type fragment struct {
	x, y, w float64
	s       string
}

// pageTable clusters one page's text fragments into a table grid.
func pageTable(texts []pdf.Text) [][]string {
	frags := joinAdjacent(texts)
	if len(frags) == 0 {
		return nil
	}

	lines := clusterLines(frags)
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, splitCells(line))
	}
	return rows
}

// joinAdjacent merges per-glyph text objects into word fragments: PDF
// writers usually emit one Text per character.
func joinAdjacent(texts []pdf.Text) []fragment {
	var out []fragment
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if n := len(out); n > 0 {
			prev := &out[n-1]
			sameLine := abs(prev.y-t.Y) <= rowTolerance
			gap := t.X - (prev.x + prev.w)
			if sameLine && gap >= -1 && gap < colGap/2 {
				if gap > 0.5 {
					prev.s += " "
				}
				prev.s += t.S
				prev.w = t.X + t.W - prev.x
				continue
			}
		}
		out = append(out, fragment{x: t.X, y: t.Y, w: t.W, s: t.S})
	}
	return out
}

// clusterLines groups fragments into visual lines by Y, top of page first.
func clusterLines(frags []fragment) [][]fragment {
	sorted := make([]fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if abs(sorted[i].y-sorted[j].y) > rowTolerance {
			return sorted[i].y > sorted[j].y // PDF Y grows upward
		}
		return sorted[i].x < sorted[j].x
	})

	var lines [][]fragment
	for _, f := range sorted {
		if n := len(lines); n > 0 {
			last := lines[n-1]
			if abs(last[len(last)-1].y-f.y) <= rowTolerance {
				lines[n-1] = append(lines[n-1], f)
				continue
			}
		}
		lines = append(lines, []fragment{f})
	}
	return lines
}

// splitCells turns one line's fragments into cell strings, starting a new
// cell at every gap of at least colGap points.
func splitCells(line []fragment) []string {
	sort.SliceStable(line, func(i, j int) bool { return line[i].x < line[j].x })

	var cells []string
	var cur strings.Builder
	var curEnd float64
	for i, f := range line {
		if i > 0 && f.x-curEnd >= colGap {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		} else if i > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(f.s)
		curEnd = f.x + f.w
	}
	if cur.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cur.String()))
	}
	return cells
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
