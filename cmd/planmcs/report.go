package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/mrsinham/planmcs/internal/pipeline"
	"github.com/mrsinham/planmcs/internal/plan"
	"github.com/mrsinham/planmcs/internal/util"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = cellStyle.Foreground(lipgloss.Color("42"))
	partialStyle = cellStyle.Foreground(lipgloss.Color("214"))
	failedStyle  = cellStyle.Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

const statusColumn = 2

func statusStyle(s string) lipgloss.Style {
	switch s {
	case plan.StatusSuccess.String():
		return successStyle
	case plan.StatusPartial.String():
		return partialStyle
	default:
		return failedStyle
	}
}

// writeTable renders one row per file followed by warnings and requested
// attribute values.
func writeTable(w io.Writer, results []pipeline.FileResult, tags []util.TagInfo) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{filepath.Base(r.Path), humanize.Bytes(uint64(r.Size)), r.Status().String(), "-", "-", "-", "-"}
		if r.Result != nil {
			row[3] = strconv.Itoa(len(r.Result.Plan.Beams))
			row[4] = strconv.FormatFloat(r.Result.Plan.TotalMU(), 'f', 1, 64)
			row[5] = strconv.FormatFloat(r.Result.Score.MCS, 'f', 4, 64)
			row[6] = strconv.Itoa(len(r.Result.Warnings))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("FILE", "SIZE", "STATUS", "BEAMS", "MU", "MCS", "WARNINGS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusColumn && row >= 0 && row < len(rows) {
				return statusStyle(rows[row][statusColumn])
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	for _, r := range results {
		if r.Result == nil {
			continue
		}
		var lines []string
		for _, issue := range r.Result.Issues {
			lines = append(lines, "issue: "+issue.Message)
		}
		for _, warning := range r.Result.Warnings {
			lines = append(lines, "warning: "+warning)
		}
		for _, info := range tags {
			lines = append(lines, fmt.Sprintf("%s: %s", info.Name, strings.Join(util.Values(r.Result.Tree, info), ", ")))
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintln(w, filepath.Base(r.Path))
		for _, l := range lines {
			fmt.Fprintln(w, mutedStyle.Render("  "+l))
		}
	}
	return nil
}

// fileReport is the JSON form of one file's result.
type fileReport struct {
	Path    string              `json:"path"`
	Size    int64               `json:"size"`
	Status  plan.Status         `json:"status"`
	Error   string              `json:"error,omitempty"`
	Beams   int                 `json:"beams"`
	TotalMU float64             `json:"total_mu"`
	Result  *pipeline.Result    `json:"result,omitempty"`
	Tags    map[string][]string `json:"tags,omitempty"`
}

func writeJSON(w io.Writer, results []pipeline.FileResult, tags []util.TagInfo) error {
	reports := make([]fileReport, 0, len(results))
	for _, r := range results {
		rep := fileReport{Path: r.Path, Size: r.Size, Status: r.Status(), Result: r.Result}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		if r.Result != nil {
			rep.Beams = len(r.Result.Plan.Beams)
			rep.TotalMU = r.Result.Plan.TotalMU()
			if len(tags) > 0 {
				rep.Tags = make(map[string][]string, len(tags))
				for _, info := range tags {
					rep.Tags[info.Name] = util.Values(r.Result.Tree, info)
				}
			}
		}
		reports = append(reports, rep)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
