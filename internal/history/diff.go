package history

import (
	"fmt"
	"strings"
)

// DiffItem describes one change between two runs.
type DiffItem struct {
	PlayerName string `json:"player_name"`
	Field      string `json:"field,omitempty"`
	Before     string `json:"before,omitempty"`
	After      string `json:"after,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// DiffReport compares a previous run against the current one.
type DiffReport struct {
	PreviousRecord   string     `json:"previous_record"`
	PreviousPhase    string     `json:"previous_phase"`
	CurrentPhase     string     `json:"current_phase"`
	NewPlayers       []DiffItem `json:"new_players"`
	RemovedPlayers   []DiffItem `json:"removed_players"`
	NewAlerts        []DiffItem `json:"new_alerts"`
	ResolvedAlerts   []DiffItem `json:"resolved_alerts"`
	AttributeChanges []DiffItem `json:"attribute_changes"`
}

// TotalChanges counts every change across all categories.
func (r *DiffReport) TotalChanges() int {
	return len(r.NewPlayers) + len(r.RemovedPlayers) +
		len(r.NewAlerts) + len(r.ResolvedAlerts) + len(r.AttributeChanges)
}

// Alert levels in escalation order.
var alertOrder = []string{"正常", "情報", "警告", "緊急"}

func alertRank(level string) int {
	for i, a := range alertOrder {
		if strings.Contains(level, a) {
			return i
		}
	}
	return -1
}

// playerName picks the stable display name of one result row.
func playerName(row map[string]any) string {
	for _, key := range []string{"player_name_original", "player_name", "company_name"} {
		if v, ok := row[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// SamePlayer reports whether two names refer to the same player. Exact
// matches and close fuzzy matches both count; minor renames like added
// suffixes stay under one player.
func SamePlayer(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return similarity(a, b) >= 0.8
}

// similarity is the ratio of matched runes to total runes, using the
// longest common subsequence of the two names.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// ComputeDiff compares previous and current result rows and reports
// added and removed players, alert level movement, and attribute flips.
func ComputeDiff(previous *CheckRecord, prevRows, curRows []map[string]any, currentPhase string) *DiffReport {
	report := &DiffReport{CurrentPhase: currentPhase}
	if previous != nil {
		report.PreviousRecord = previous.RecordID
		report.PreviousPhase = previous.Phase
	}

	prevByName := map[string]map[string]any{}
	for _, row := range prevRows {
		if name := playerName(row); name != "" {
			prevByName[name] = row
		}
	}
	curByName := map[string]map[string]any{}
	for _, row := range curRows {
		if name := playerName(row); name != "" {
			curByName[name] = row
		}
	}

	matchPrev := map[string]string{} // current name -> previous name
	for curName := range curByName {
		if _, ok := prevByName[curName]; ok {
			matchPrev[curName] = curName
			continue
		}
		for prevName := range prevByName {
			if SamePlayer(curName, prevName) {
				matchPrev[curName] = prevName
				break
			}
		}
	}
	matched := map[string]bool{}
	for _, prevName := range matchPrev {
		matched[prevName] = true
	}

	for curName, curRow := range curByName {
		prevName, ok := matchPrev[curName]
		if !ok {
			report.NewPlayers = append(report.NewPlayers, DiffItem{
				PlayerName: curName,
				Detail:     "前回の調査に存在しない新規プレイヤー",
			})
			continue
		}
		prevRow := prevByName[prevName]

		prevAlert, _ := prevRow["alert_level"].(string)
		curAlert, _ := curRow["alert_level"].(string)
		prevRank, curRank := alertRank(prevAlert), alertRank(curAlert)
		if prevRank >= 0 && curRank >= 0 && prevRank != curRank {
			item := DiffItem{
				PlayerName: curName,
				Field:      "alert_level",
				Before:     prevAlert,
				After:      curAlert,
			}
			if curRank > prevRank {
				report.NewAlerts = append(report.NewAlerts, item)
			} else {
				report.ResolvedAlerts = append(report.ResolvedAlerts, item)
			}
		}

		report.AttributeChanges = append(report.AttributeChanges,
			attributeDiff(curName, prevRow, curRow)...)
	}

	for prevName := range prevByName {
		if !matched[prevName] {
			report.RemovedPlayers = append(report.RemovedPlayers, DiffItem{
				PlayerName: prevName,
				Detail:     "今回の調査に存在しない",
			})
		}
	}
	return report
}

func attributeDiff(name string, prevRow, curRow map[string]any) []DiffItem {
	prevMatrix, _ := prevRow["attribute_matrix"].(map[string]any)
	curMatrix, _ := curRow["attribute_matrix"].(map[string]any)
	if prevMatrix == nil && curMatrix == nil {
		return nil
	}
	var items []DiffItem
	for attr, curVal := range curMatrix {
		prevVal, ok := prevMatrix[attr]
		if !ok {
			continue
		}
		before, after := markOf(prevVal), markOf(curVal)
		if before != after {
			items = append(items, DiffItem{
				PlayerName: name,
				Field:      attr,
				Before:     before,
				After:      after,
				Detail:     fmt.Sprintf("%s: %s → %s", attr, before, after),
			})
		}
	}
	return items
}

// markOf renders a tri-state attribute value the way the matrix sheets do.
func markOf(v any) string {
	b, ok := v.(bool)
	if !ok {
		return "?"
	}
	if b {
		return "○"
	}
	return "×"
}
