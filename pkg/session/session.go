// Package session provides the collaborators the realtime core consults
// about the signed-in user: where the bearer credential comes from, which
// project is on screen, and how to navigate away from it.
package session

import "sync"

// Credentials supplies the bearer token and the local user's id. Token is
// called immediately before every connection attempt and REST request, so
// implementations should return the freshest value they have.
type Credentials interface {
	Token() (string, bool)
	UserID() string
}

// Static is a fixed credential, used when a token is passed on the command
// line or in tests.
type Static struct {
	BearerToken string
	User        string
}

// Token implements Credentials.
func (s Static) Token() (string, bool) { return s.BearerToken, s.BearerToken != "" }

// UserID implements Credentials.
func (s Static) UserID() string { return s.User }

// Navigator moves the user away from the project they are viewing.
type Navigator interface {
	RedirectHome()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// RedirectHome implements Navigator.
func (f NavigatorFunc) RedirectHome() { f() }

// View tracks the project the user currently has open.
type View struct {
	mu      sync.RWMutex
	project string
	nav     Navigator
}

// NewView creates a view with nothing open. nav may be nil.
func NewView(nav Navigator) *View {
	return &View{nav: nav}
}

// Open marks projectID as being viewed. An empty id means the aggregate
// todo list is on screen.
func (v *View) Open(projectID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.project = projectID
}

// CurrentProject returns the project being viewed, if any.
func (v *View) CurrentProject() (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.project, v.project != ""
}

// RedirectHome leaves the current project and notifies the navigator.
func (v *View) RedirectHome() {
	v.mu.Lock()
	v.project = ""
	nav := v.nav
	v.mu.Unlock()

	if nav != nil {
		nav.RedirectHome()
	}
}

// Ensure implementations satisfy their interfaces at compile time
var (
	_ Credentials = Static{}
	_ Credentials = (*FileCredentials)(nil)
	_ Navigator   = NavigatorFunc(nil)
	_ Navigator   = (*View)(nil)
)
