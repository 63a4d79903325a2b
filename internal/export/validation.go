package export

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/model"
)

var validationColumns = []string{
	"アラート",
	"プレイヤー名（元）",
	"プレイヤー名（現在）",
	"変更タイプ",
	"変更内容",
	"公式URL（元）",
	"公式URL（現在）",
	"運営会社（元）",
	"運営会社（現在）",
	"信頼度",
	"要確認フラグ",
	"関連ニュース",
	"情報ソース",
	"チェック日時",
}

var validationWidths = []float64{8, 20, 20, 15, 40, 30, 30, 20, 20, 10, 12, 40, 40, 20}

// alertSeverity orders rows so the most urgent findings come first.
var alertSeverity = map[model.AlertLevel]int{
	model.AlertCritical: 0,
	model.AlertWarning:  1,
	model.AlertInfo:     2,
	model.AlertOK:       3,
}

func alertColor(level model.AlertLevel) string {
	switch level {
	case model.AlertCritical:
		return colorCritical
	case model.AlertWarning:
		return colorWarning
	case model.AlertInfo:
		return colorGood
	default:
		return colorWhite
	}
}

// WriteValidationReport writes player check results to an XLSX file,
// most urgent alerts first. Rows needing manual review get an orange fill
// regardless of level.
func WriteValidationReport(results []model.ValidationResult, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("チェック結果")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeHeader(sheet, validationColumns)

	ordered := make([]model.ValidationResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return alertSeverity[ordered[i].AlertLevel] < alertSeverity[ordered[j].AlertLevel]
	})

	for _, r := range ordered {
		color := alertColor(r.AlertLevel)
		if r.NeedsManualReview {
			color = colorReview
		}
		style := fillStyle(color)

		row := sheet.AddRow()
		addStringCell(row, string(r.AlertLevel), style)
		addStringCell(row, r.PlayerNameOriginal, style)
		addStringCell(row, r.PlayerNameCurrent, style)
		addStringCell(row, string(r.ChangeType), style)
		addStringCell(row, joinLines(r.ChangeDetails), style)
		addStringCell(row, r.URLOriginal, style)
		addStringCell(row, r.URLCurrent, style)
		addStringCell(row, r.CompanyNameOriginal, style)
		addStringCell(row, r.CompanyNameCurrent, style)
		addStringCell(row, percent(r.Confidence), style)
		addStringCell(row, boolCell(r.NeedsManualReview), style)
		addStringCell(row, r.NewsSummary, style)
		addStringCell(row, joinLines(r.SourceURLs), style)
		addStringCell(row, formatTime(r.CheckedAt), style)
	}

	if err := setColumnWidths(sheet, validationWidths); err != nil {
		return err
	}
	zap.L().Info("validation report written",
		zap.String("path", path),
		zap.Int("rows", len(ordered)))
	return saveWorkbook(f, path)
}
