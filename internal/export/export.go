// Package export writes investigation results to XLSX workbooks and reads
// player lists back out of them. Report cells carry the same markers the
// rest of the pipeline uses: ○ for confirmed, × for absent, ? for unknown.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx"
)

// Fill colors by alert or confidence band, ARGB.
const (
	colorHeader   = "FF4A90D9"
	colorCritical = "FFFF6B6B"
	colorWarning  = "FFFFD93D"
	colorGood     = "FF6BCB77"
	colorReview   = "FFFFA500"
	colorWhite    = "FFFFFFFF"

	colorAttrYes     = "FFC6EFCE"
	colorAttrNo      = "FFFFC7CE"
	colorAttrUnknown = "FFFFEB9C"
)

const timeFormat = "2006-01-02 15:04:05"

func headerStyle() *xlsx.Style {
	style := xlsx.NewStyle()
	style.Font = *xlsx.NewFont(11, "Verdana")
	style.Font.Bold = true
	style.Font.Color = colorWhite
	style.ApplyFont = true
	style.Fill = *xlsx.NewFill("solid", colorHeader, colorHeader)
	style.ApplyFill = true
	style.Alignment = xlsx.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	style.ApplyAlignment = true
	return style
}

func fillStyle(color string) *xlsx.Style {
	style := xlsx.NewStyle()
	style.Fill = *xlsx.NewFill("solid", color, color)
	style.ApplyFill = true
	style.Alignment = xlsx.Alignment{Vertical: "top", WrapText: true}
	style.ApplyAlignment = true
	return style
}

func centeredFillStyle(color string) *xlsx.Style {
	style := fillStyle(color)
	style.Alignment = xlsx.Alignment{Horizontal: "center", Vertical: "center"}
	return style
}

func writeHeader(sheet *xlsx.Sheet, columns []string) {
	style := headerStyle()
	row := sheet.AddRow()
	for _, name := range columns {
		cell := row.AddCell()
		cell.Value = name
		cell.SetStyle(style)
	}
}

func addStringCell(row *xlsx.Row, value string, style *xlsx.Style) {
	cell := row.AddCell()
	cell.Value = value
	if style != nil {
		cell.SetStyle(style)
	}
}

func addIntCell(row *xlsx.Row, value int, style *xlsx.Style) {
	cell := row.AddCell()
	cell.SetInt(value)
	if style != nil {
		cell.SetStyle(style)
	}
}

func percent(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func joinLines(items []string) string {
	return strings.Join(items, "\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

// confidenceColor bands a confidence score into a fill color.
func confidenceColor(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return colorGood
	case confidence >= 0.5:
		return colorWarning
	default:
		return colorCritical
	}
}

func setColumnWidths(sheet *xlsx.Sheet, widths []float64) error {
	for i, w := range widths {
		if err := sheet.SetColWidth(i, i, w); err != nil {
			return eris.Wrapf(err, "export: set column %d width", i)
		}
	}
	return nil
}

func saveWorkbook(f *xlsx.File, path string) error {
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
