package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/geo"
	"github.com/TTMK7777/player-list-scraper/internal/model"
)

var storeBaseColumns = []string{
	"企業名",
	"総店舗数",
	"直営店",
	"FC店",
	"調査モード",
	"信頼度",
	"要確認フラグ",
}

var storeSuffixColumns = []string{
	"ソースURL",
	"備考",
	"調査日時",
}

// StoreReportColumns returns the header row of the store count report,
// with one narrow column per prefecture when requested.
func StoreReportColumns(includePrefectures bool) []string {
	columns := append([]string{}, storeBaseColumns...)
	if includePrefectures {
		columns = append(columns, geo.Prefectures...)
	}
	return append(columns, storeSuffixColumns...)
}

// WriteStoreReport writes store count investigations to an XLSX file. Rows
// are colored by confidence band; prefecture cells show ○ for presence,
// × for confirmed absence and ? when the distribution says nothing.
func WriteStoreReport(results []model.StoreInvestigationResult, path string, includePrefectures bool) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("店舗調査結果")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	columns := StoreReportColumns(includePrefectures)
	writeHeader(sheet, columns)

	for _, r := range results {
		color := confidenceColor(r.Confidence)
		if r.NeedsVerification {
			color = colorReview
		}
		style := fillStyle(color)

		row := sheet.AddRow()
		addStringCell(row, r.CompanyName, style)
		addIntCell(row, r.TotalStores, style)
		addOptionalInt(row, r.DirectStores, style)
		addOptionalInt(row, r.FranchiseStores, style)
		addStringCell(row, string(r.InvestigationMode), style)
		addStringCell(row, percent(r.Confidence), style)
		addStringCell(row, boolCell(r.NeedsVerification), style)

		if includePrefectures {
			for _, pref := range geo.Prefectures {
				count, ok := r.PrefectureDistribution[pref]
				switch {
				case ok && count > 0:
					addStringCell(row, "○", style)
				case ok:
					addStringCell(row, "×", style)
				default:
					addStringCell(row, "?", style)
				}
			}
		}

		addStringCell(row, joinLines(r.SourceURLs), style)
		addStringCell(row, r.Notes, style)
		addStringCell(row, formatTime(r.InvestigationDate), style)
	}

	if err := setColumnWidths(sheet, storeReportWidths(columns)); err != nil {
		return err
	}
	zap.L().Info("store report written",
		zap.String("path", path),
		zap.Int("rows", len(results)))
	return saveWorkbook(f, path)
}

func addOptionalInt(row *xlsx.Row, value *int, style *xlsx.Style) {
	if value == nil {
		addStringCell(row, "", style)
		return
	}
	addIntCell(row, *value, style)
}

func storeReportWidths(columns []string) []float64 {
	prefSet := map[string]bool{}
	for _, p := range geo.Prefectures {
		prefSet[p] = true
	}
	widths := make([]float64, len(columns))
	for i, name := range columns {
		switch {
		case name == "企業名":
			widths[i] = 25
		case name == "総店舗数" || name == "直営店" || name == "FC店":
			widths[i] = 10
		case name == "調査モード" || name == "信頼度" || name == "要確認フラグ":
			widths[i] = 12
		case name == "ソースURL":
			widths[i] = 50
		case name == "備考":
			widths[i] = 40
		case name == "調査日時":
			widths[i] = 20
		case prefSet[name]:
			widths[i] = 6
		default:
			widths[i] = 15
		}
	}
	return widths
}

var storeListColumns = []string{
	"店舗名",
	"住所",
	"電話番号",
	"都道府県",
	"営業時間",
	"URL",
}

// WriteStoreList writes scraped store locations to an XLSX file, one row
// per store, with the scrape summary in the sheet name's company column.
func WriteStoreList(result model.ScrapingResult, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("店舗一覧")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeHeader(sheet, append([]string{"企業名"}, storeListColumns...))

	for _, s := range result.Stores {
		row := sheet.AddRow()
		addStringCell(row, result.CompanyName, nil)
		addStringCell(row, s.StoreName, nil)
		addStringCell(row, s.Address, nil)
		addStringCell(row, s.Phone, nil)
		addStringCell(row, s.Prefecture, nil)
		addStringCell(row, s.BusinessHours, nil)
		addStringCell(row, s.URL, nil)
	}

	widths := []float64{25, 25, 40, 15, 10, 25, 40}
	if err := setColumnWidths(sheet, widths); err != nil {
		return err
	}
	zap.L().Info("store list written",
		zap.String("path", path),
		zap.String("company", result.CompanyName),
		zap.Int("stores", len(result.Stores)))
	return saveWorkbook(f, path)
}

var newcomerColumns = []string{
	"プレイヤー名",
	"公式URL",
	"運営会社",
	"参入時期",
	"信頼度",
	"検証状態",
	"根拠",
	"情報ソース",
}

// WriteNewcomerReport writes newcomer candidates to an XLSX file. URL
// verification failures get the review fill so a human checks them first.
func WriteNewcomerReport(candidates []model.NewcomerCandidate, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("新規参入候補")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeHeader(sheet, newcomerColumns)

	for _, c := range candidates {
		color := confidenceColor(c.Confidence)
		if c.VerificationStatus == model.VerificationURLError {
			color = colorReview
		}
		style := fillStyle(color)

		row := sheet.AddRow()
		addStringCell(row, c.PlayerName, style)
		addStringCell(row, c.OfficialURL, style)
		addStringCell(row, c.CompanyName, style)
		addStringCell(row, c.EntryDateApprox, style)
		addStringCell(row, percent(c.Confidence), style)
		addStringCell(row, string(c.VerificationStatus), style)
		addStringCell(row, c.Reason, style)
		addStringCell(row, joinLines(c.SourceURLs), style)
	}

	widths := []float64{25, 40, 25, 15, 10, 12, 40, 40}
	if err := setColumnWidths(sheet, widths); err != nil {
		return err
	}
	zap.L().Info("newcomer report written",
		zap.String("path", path),
		zap.Int("rows", len(candidates)))
	return saveWorkbook(f, path)
}
