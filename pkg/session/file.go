package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
)

// StoredCredentials is the on-disk shape of the credentials file.
type StoredCredentials struct {
	Token  string `yaml:"token"`
	UserID string `yaml:"user_id"`
}

// FileCredentials reads the bearer credential from a YAML file. The file is
// re-read on every call so a token refreshed by another process is picked
// up on the next connection attempt.
type FileCredentials struct {
	path string
}

// NewFileCredentials returns credentials backed by path. A leading ~ is
// expanded to the user's home directory.
func NewFileCredentials(path string) *FileCredentials {
	if path == "" {
		path = constants.DefaultCredentialsPath
	}
	return &FileCredentials{path: ExpandPath(path)}
}

// Path returns the resolved file location.
func (f *FileCredentials) Path() string { return f.path }

// Load reads the file. A missing file yields empty credentials and no error.
func (f *FileCredentials) Load() (StoredCredentials, error) {
	var c StoredCredentials
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, errors.WrapIO("read", f.path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, errors.WrapParse("yaml", f.path, err)
	}
	return c, nil
}

// Save writes the credentials with owner-only permissions.
func (f *FileCredentials) Save(c StoredCredentials) error {
	if c.Token == "" {
		return errors.NewValidationError("token", nil, "cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(f.path), err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.WrapParse("yaml", f.path, err)
	}
	if err := os.WriteFile(f.path, data, constants.SecureFilePermissions); err != nil {
		return errors.WrapIO("write", f.path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(f.path, constants.SecureFilePermissions); err != nil {
		return errors.WrapIO("chmod", f.path, err)
	}
	return nil
}

// Clear removes the file. Clearing absent credentials is not an error.
func (f *FileCredentials) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", f.path, err)
	}
	return nil
}

// Token implements Credentials.
func (f *FileCredentials) Token() (string, bool) {
	c, err := f.Load()
	if err != nil || c.Token == "" {
		return "", false
	}
	return c.Token, true
}

// UserID implements Credentials.
func (f *FileCredentials) UserID() string {
	c, _ := f.Load()
	return c.UserID
}

// ExpandPath expands a path that may start with ~ to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
