package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/model"
)

var attributeSuffixColumns = []string{
	"信頼度",
	"要確認フラグ",
	"ソースURL",
	"調査日時",
}

// WriteAttributeReport writes the player-by-attribute matrix to an XLSX
// file. Each matrix cell is ○, × or ? with its own fill so the grid reads
// at a glance.
func WriteAttributeReport(results []model.AttributeInvestigationResult, attributes []string, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("属性調査結果")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	columns := append([]string{"プレイヤー名"}, attributes...)
	columns = append(columns, attributeSuffixColumns...)
	writeHeader(sheet, columns)

	yesStyle := centeredFillStyle(colorAttrYes)
	noStyle := centeredFillStyle(colorAttrNo)
	unknownStyle := centeredFillStyle(colorAttrUnknown)

	for _, r := range results {
		row := sheet.AddRow()

		var nameStyle *xlsx.Style
		if r.NeedsVerification {
			nameStyle = fillStyle(colorReview)
		}
		addStringCell(row, r.PlayerName, nameStyle)

		for _, attr := range attributes {
			value, ok := r.AttributeMatrix[attr]
			switch {
			case !ok || value == nil:
				addStringCell(row, "?", unknownStyle)
			case *value:
				addStringCell(row, "○", yesStyle)
			default:
				addStringCell(row, "×", noStyle)
			}
		}

		confStyle := fillStyle(confidenceColor(r.Confidence))
		addStringCell(row, percent(r.Confidence), confStyle)
		addStringCell(row, boolCell(r.NeedsVerification), nil)
		addStringCell(row, joinLines(r.SourceURLs), nil)
		addStringCell(row, formatTime(r.InvestigationDate), nil)
	}

	if err := setColumnWidths(sheet, attributeReportWidths(columns, attributes)); err != nil {
		return err
	}
	zap.L().Info("attribute report written",
		zap.String("path", path),
		zap.Int("rows", len(results)),
		zap.Int("attributes", len(attributes)))
	return saveWorkbook(f, path)
}

func attributeReportWidths(columns, attributes []string) []float64 {
	attrSet := map[string]bool{}
	for _, a := range attributes {
		attrSet[a] = true
	}
	widths := make([]float64, len(columns))
	for i, name := range columns {
		switch {
		case name == "プレイヤー名":
			widths[i] = 25
		case name == "信頼度" || name == "要確認フラグ":
			widths[i] = 12
		case name == "ソースURL":
			widths[i] = 50
		case name == "調査日時":
			widths[i] = 20
		case attrSet[name]:
			w := float64(len([]rune(name))*2 + 2)
			if w < 6 {
				w = 6
			}
			if w > 15 {
				w = 15
			}
			widths[i] = w
		default:
			widths[i] = 15
		}
	}
	return widths
}
