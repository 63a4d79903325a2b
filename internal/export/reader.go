package export

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/model"
)

// Column header patterns in priority order. Exact-match forms come first
// so a sheet with both サービス名 and 企業名 picks the service name.
var (
	playerNamePatterns = compilePatterns(
		`^サービス名$`, `^プレイヤー名$`, `^ブランド名$`, `^企業名$`, `^会社名$`,
		`サービス名`, `プレイヤー名`, `ブランド名`,
		`(?i)player.*name`, `(?i)service.*name`, `(?i)brand`,
	)
	urlPatterns = compilePatterns(
		`^URL$`, `^公式URL$`, `^公式サイト$`, `^ホームページ$`, `^HP$`,
		`URL`, `公式URL`, `公式サイト`, `ホームページ`, `HP`,
		`(?i)official.*url`, `(?i)website`, `(?i)site`,
	)
	companyPatterns = compilePatterns(
		`^事業者名$`, `^運営会社$`, `^運営元$`,
		`事業者名`, `事業者`, `運営会社`, `運営元`,
		`(?i)operator`, `(?i)company`,
	)
)

// Keywords that mark a row as the header row.
var headerKeywords = []string{
	"サービス名", "プレイヤー名", "ブランド名", "企業名", "会社名",
	"事業者名", "調査票用No", "調査対象",
}

const headerScanRows = 15

func compilePatterns(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// PlayerRow is one player read from a list workbook, keeping the original
// row number and any columns the mapper did not recognize.
type PlayerRow struct {
	RowIndex    int
	PlayerName  string
	OfficialURL string
	CompanyName string
	Extra       map[string]string
}

// Players converts rows to the investigation input type.
func Players(rows []PlayerRow, industry string) []model.Player {
	out := make([]model.Player, len(rows))
	for i, r := range rows {
		out[i] = model.Player{
			PlayerName:  r.PlayerName,
			OfficialURL: r.OfficialURL,
			CompanyName: r.CompanyName,
			Industry:    industry,
		}
	}
	return out
}

// ReadPlayerList reads a player list workbook. The header row is found by
// keyword scoring over the first rows, then name, URL and company columns
// are matched by pattern. Rows without a player name are skipped.
func ReadPlayerList(path string) ([]PlayerRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("export: %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("export: %s is empty", path)
	}

	headerIdx := findHeaderRow(sheet)
	header := rowStrings(sheet.Rows[headerIdx])
	nameCol := matchColumn(header, playerNamePatterns)
	urlCol := matchColumn(header, urlPatterns)
	companyCol := matchColumn(header, companyPatterns)
	nameDetected := nameCol >= 0

	if nameCol < 0 {
		// First column fallback keeps hand-rolled sheets loadable.
		nameCol = 0
		zap.L().Warn("player name column not detected, using first column",
			zap.String("path", path))
	}

	var players []PlayerRow
	for i := headerIdx + 1; i < len(sheet.Rows); i++ {
		cells := rowStrings(sheet.Rows[i])
		name := cellAt(cells, nameCol)
		if name == "" {
			continue
		}
		if isDigits(name) && !nameDetected {
			continue
		}
		row := PlayerRow{
			RowIndex:    i + 1,
			PlayerName:  name,
			OfficialURL: cellAt(cells, urlCol),
			CompanyName: cellAt(cells, companyCol),
			Extra:       map[string]string{},
		}
		for col, colName := range header {
			colName = strings.TrimSpace(colName)
			if colName == "" || col == nameCol || col == urlCol || col == companyCol {
				continue
			}
			if v := cellAt(cells, col); v != "" {
				row.Extra[colName] = v
			}
		}
		players = append(players, row)
	}
	return players, nil
}

// findHeaderRow scores early rows by header keyword hits and returns the
// best one. A sheet with no recognizable header falls back to the first row.
func findHeaderRow(sheet *xlsx.Sheet) int {
	best, bestScore := 0, 0
	limit := len(sheet.Rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		text := strings.Join(rowStrings(sheet.Rows[i]), " ")
		score := 0
		for _, kw := range headerKeywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func matchColumn(header []string, patterns []*regexp.Regexp) int {
	for _, re := range patterns {
		for col, name := range header {
			if re.MatchString(strings.TrimSpace(name)) {
				return col
			}
		}
	}
	return -1
}

func rowStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = strings.TrimSpace(cell.String())
	}
	return cells
}

func cellAt(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
