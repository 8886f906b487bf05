// Package table converts tasksync records into rows for table output.
package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/tasksync/pkg/models"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// TodosToTableData converts todos to table format. Wide adds the
// description and timestamps.
func TodosToTableData(todos []models.Todo, wide bool) Data {
	headers := []string{"ID", "Title", "Done", "Priority", "Project", "Due"}
	if wide {
		headers = append(headers, "Description", "Updated")
	}

	rows := make([][]string, 0, len(todos))
	for _, t := range todos {
		row := []string{
			shortID(t.ID),
			t.Title,
			check(t.Completed),
			string(t.Priority),
			dash(shortID(t.ProjectID)),
			dash(formatDate(t.DueDate)),
		}
		if wide {
			row = append(row, dash(truncate(t.Description, 40)), formatTime(t.UpdatedAt))
		}
		rows = append(rows, row)
	}

	align := []Align{AlignLeft, AlignLeft, AlignCenter, AlignLeft, AlignLeft, AlignLeft}
	if wide {
		align = append(align, AlignLeft, AlignLeft)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ProjectsToTableData converts the project listing to table format, own
// projects first in display order.
func ProjectsToTableData(list models.ProjectList, wide bool) Data {
	headers := []string{"#", "ID", "Name", "Owner", "Members", "Shared"}
	if wide {
		headers = append(headers, "Description", "Updated")
	}

	var rows [][]string
	add := func(i int, p models.Project, shared bool) {
		names := make([]string, len(p.Members))
		for j, m := range p.Members {
			names[j] = m.Name
		}
		row := []string{
			strconv.Itoa(i + 1),
			shortID(p.ID),
			p.Name,
			p.OwnerID,
			strings.Join(names, ", "),
			check(shared),
		}
		if wide {
			row = append(row, dash(truncate(p.Description, 40)), formatTime(p.UpdatedAt))
		}
		rows = append(rows, row)
	}
	for i, p := range list.MyProjects {
		add(i, p, false)
	}
	for i, p := range list.SharedProjects {
		add(len(list.MyProjects)+i, p, true)
	}

	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignCenter}
	if wide {
		align = append(align, AlignLeft, AlignLeft)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// NotificationsToTableData converts an inbox to table format.
func NotificationsToTableData(ns []models.Notification) Data {
	rows := make([][]string, 0, len(ns))
	for _, n := range ns {
		unread := "●"
		if n.Read {
			unread = ""
		}
		rows = append(rows, []string{unread, string(n.Type), n.Message, formatTime(n.CreatedAt)})
	}
	return Data{
		Headers:         []string{"", "Type", "Message", "When"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignLeft},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func check(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
