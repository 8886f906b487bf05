// Package status provides the status command, a one-shot REST snapshot
// of the user's todos, projects and notifications.
package status

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/tasksync/internal/appcontext"
	"github.com/agentstation/tasksync/internal/cmd/output"
	"github.com/agentstation/tasksync/pkg/api"
	"github.com/agentstation/tasksync/pkg/models"
)

// Flags holds the status command flags.
type Flags struct {
	Project string
	Only    string
}

// Sections that --only accepts.
const (
	SectionTodos         = "todos"
	SectionProjects      = "projects"
	SectionNotifications = "notifications"
)

// NewCommand creates the status command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: "core",
		Short:   "Print a snapshot of todos, projects and notifications",
		Args:    cobra.NoArgs,
		Example: `  tasksync status                     # Everything visible to you
  tasksync status --project p-123     # Todos of one project
  tasksync status --only projects -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.Project == "" {
				flags.Project = app.Project()
			}
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			client, err := app.API()
			if err != nil {
				return err
			}
			return Run(cmd.Context(), cmd.OutOrStdout(), client, output.DetectFormat(string(format)), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Project, "project", "p", "", "Only show todos of this project")
	cmd.Flags().StringVar(&flags.Only, "only", "", "Only show one section: todos, projects, notifications")

	return cmd
}

// Snapshot is the structured-format shape of a full status.
type Snapshot struct {
	Todos         []models.Todo         `json:"todos" yaml:"todos"`
	Projects      models.ProjectList    `json:"projects" yaml:"projects"`
	Notifications []models.Notification `json:"notifications" yaml:"notifications"`
}

// Run fetches the requested sections and writes them to w.
func Run(ctx context.Context, w io.Writer, client *api.Client, format output.Format, flags *Flags) error {
	switch flags.Only {
	case "", SectionTodos, SectionProjects, SectionNotifications:
	default:
		return fmt.Errorf("invalid section %q: must be one of: todos, projects, notifications", flags.Only)
	}
	all := flags.Only == ""

	var snap Snapshot
	var err error
	if all || flags.Only == SectionTodos {
		if snap.Todos, err = fetchTodos(ctx, client, flags.Project); err != nil {
			return err
		}
	}
	if all || flags.Only == SectionProjects {
		if snap.Projects, err = client.FetchProjects(ctx); err != nil {
			return err
		}
	}
	if all || flags.Only == SectionNotifications {
		if snap.Notifications, err = client.FetchNotifications(ctx); err != nil {
			return err
		}
	}

	tables := format == output.FormatTable || format == output.FormatWide || format == ""
	switch {
	case !tables && all:
		return output.NewFormatter(format).Format(w, snap)
	case flags.Only == SectionTodos:
		return output.Todos(w, format, snap.Todos)
	case flags.Only == SectionProjects:
		return output.Projects(w, format, snap.Projects)
	case flags.Only == SectionNotifications:
		return output.Notifications(w, format, snap.Notifications)
	}

	fmt.Fprintf(w, "Todos\n")
	if err := output.Todos(w, format, snap.Todos); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nProjects\n")
	if err := output.Projects(w, format, snap.Projects); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nNotifications (%d unread)\n", unread(snap.Notifications))
	return output.Notifications(w, format, snap.Notifications)
}

func fetchTodos(ctx context.Context, client *api.Client, projectID string) ([]models.Todo, error) {
	if projectID != "" {
		return client.FetchProjectTodos(ctx, projectID)
	}
	return client.FetchTodos(ctx)
}

func unread(ns []models.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}
