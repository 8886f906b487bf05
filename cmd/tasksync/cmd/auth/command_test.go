package auth

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/internal/appcontext"
	"github.com/agentstation/tasksync/internal/server/servertest"
	"github.com/agentstation/tasksync/pkg/errors"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginLogout(t *testing.T) {
	backend := servertest.New(t)
	app := &appcontext.Mock{
		APIURLValue:     backend.APIURL,
		CredentialsPath: filepath.Join(t.TempDir(), "creds.yaml"),
	}
	cmds := NewCommands(app)
	require.Len(t, cmds, 2)

	out, err := run(t, cmds[0], "--token", servertest.AliceToken, "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	token, ok := app.Credentials().Token()
	assert.True(t, ok)
	assert.Equal(t, servertest.AliceToken, token)
	assert.Equal(t, "alice", app.Credentials().UserID())

	out, err = run(t, cmds[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, ok = app.Credentials().Token()
	assert.False(t, ok)
}

func TestLoginRejectsBadToken(t *testing.T) {
	backend := servertest.New(t)
	app := &appcontext.Mock{
		APIURLValue:     backend.APIURL,
		CredentialsPath: filepath.Join(t.TempDir(), "creds.yaml"),
	}

	err := Login(context.Background(), app.APIURL(), app.CredentialsFile(), &LoginFlags{Token: "wrong", User: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifying token")

	_, ok := app.CredentialsFile().Token()
	assert.False(t, ok, "nothing saved")
}

func TestLoginNoVerify(t *testing.T) {
	app := &appcontext.Mock{CredentialsPath: filepath.Join(t.TempDir(), "creds.yaml")}

	err := Login(context.Background(), "http://127.0.0.1:1/api", app.CredentialsFile(), &LoginFlags{Token: "t", User: "u", NoVerify: true})
	require.NoError(t, err)

	token, ok := app.CredentialsFile().Token()
	assert.True(t, ok)
	assert.Equal(t, "t", token)
}

func TestLoginValidation(t *testing.T) {
	file := (&appcontext.Mock{CredentialsPath: filepath.Join(t.TempDir(), "c.yaml")}).CredentialsFile()

	err := Login(context.Background(), "", file, &LoginFlags{User: "u", NoVerify: true})
	assert.True(t, errors.IsValidationError(err))

	err = Login(context.Background(), "", file, &LoginFlags{Token: "t", NoVerify: true})
	assert.True(t, errors.IsValidationError(err))
}

func TestLoginRequiresFlags(t *testing.T) {
	cmds := NewCommands(&appcontext.Mock{})
	_, err := run(t, cmds[0])
	assert.ErrorContains(t, err, "required flag")
}
