// Package auth provides the login and logout commands that manage the
// credentials file.
package auth

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tasksync/internal/appcontext"
	"github.com/agentstation/tasksync/pkg/api"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/session"
)

// NewCommands creates the login and logout commands.
func NewCommands(app appcontext.Interface) []*cobra.Command {
	return []*cobra.Command{newLoginCommand(app), newLogoutCommand(app)}
}

// LoginFlags holds the login command flags.
type LoginFlags struct {
	Token    string
	User     string
	NoVerify bool
}

func newLoginCommand(app appcontext.Interface) *cobra.Command {
	flags := &LoginFlags{}

	cmd := &cobra.Command{
		Use:     "login",
		GroupID: "management",
		Short:   "Store a bearer token in the credentials file",
		Args:    cobra.NoArgs,
		Example: `  tasksync login --token alice-token --user alice
  tasksync login --token $TOKEN --user me --no-verify`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file := app.CredentialsFile()
			if err := Login(cmd.Context(), app.APIURL(), file, flags); err != nil {
				return err
			}
			app.Logger().Debug().Str("path", file.Path()).Str("user_id", flags.User).Msg("Credentials saved")
			cmd.Printf("Logged in as %s (%s)\n", flags.User, file.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&flags.User, "user", "", "Your user id, used to recognise events about yourself")
	cmd.Flags().BoolVar(&flags.NoVerify, "no-verify", false, "Save without checking the token against the backend")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// Login checks the token against the backend at apiURL, unless disabled,
// and writes it to file.
func Login(ctx context.Context, apiURL string, file *session.FileCredentials, flags *LoginFlags) error {
	if flags.Token == "" {
		return errors.NewValidationError("token", flags.Token, "cannot be empty")
	}
	if flags.User == "" {
		return errors.NewValidationError("user", flags.User, "cannot be empty")
	}

	if !flags.NoVerify {
		client, err := api.New(apiURL, session.Static{BearerToken: flags.Token, User: flags.User})
		if err != nil {
			return err
		}
		// Any authenticated read proves the token
		if _, err := client.FetchNotifications(ctx); err != nil {
			return fmt.Errorf("verifying token: %w", err)
		}
	}

	return file.Save(session.StoredCredentials{Token: flags.Token, UserID: flags.User})
}

func newLogoutCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		GroupID: "management",
		Short:   "Remove the credentials file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file := app.CredentialsFile()
			if err := file.Clear(); err != nil {
				return err
			}
			cmd.Printf("Logged out (%s removed)\n", file.Path())
			return nil
		},
	}
}
