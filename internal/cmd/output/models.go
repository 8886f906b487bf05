package output

import (
	"io"

	"github.com/agentstation/tasksync/internal/cmd/table"
	"github.com/agentstation/tasksync/pkg/models"
)

// Todos writes todos in format. Table formats get the row view; the
// structured formats get the records themselves.
func Todos(w io.Writer, format Format, todos []models.Todo) error {
	return write(w, format, todos, func(wide bool) Data { return table.TodosToTableData(todos, wide) })
}

// Projects writes a project listing in format.
func Projects(w io.Writer, format Format, list models.ProjectList) error {
	return write(w, format, list, func(wide bool) Data { return table.ProjectsToTableData(list, wide) })
}

// Notifications writes an inbox in format.
func Notifications(w io.Writer, format Format, ns []models.Notification) error {
	return write(w, format, ns, func(bool) Data { return table.NotificationsToTableData(ns) })
}

func write(w io.Writer, format Format, records any, rows func(wide bool) Data) error {
	formatter := NewFormatter(format)
	switch format {
	case FormatTable, FormatWide, "":
		return formatter.Format(w, rows(format == FormatWide))
	default:
		return formatter.Format(w, records)
	}
}
