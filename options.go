package tasksync

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
	"github.com/agentstation/tasksync/pkg/realtime"
	"github.com/agentstation/tasksync/pkg/session"
)

// options holds the configuration assembled by New.
type options struct {
	apiURL         string
	credentials    session.Credentials
	navigator      session.Navigator
	httpClient     *http.Client
	logger         *zerolog.Logger
	managerOptions []realtime.Option
}

func defaults() *options {
	return &options{
		apiURL: constants.DefaultAPIURL,
	}
}

// Option is a function that configures a Client.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithAPIBase sets the REST API base, e.g. https://tasks.example.com/api.
// The realtime endpoint is derived from it.
func WithAPIBase(url string) Option {
	return func(o *options) error {
		if url == "" {
			return errors.NewValidationError("api_url", url, "cannot be empty")
		}
		o.apiURL = url
		return nil
	}
}

// WithCredentials sets the source of the bearer token and local user id.
func WithCredentials(creds session.Credentials) Option {
	return func(o *options) error {
		if creds == nil {
			return errors.NewValidationError("credentials", nil, "cannot be nil")
		}
		o.credentials = creds
		return nil
	}
}

// WithToken is shorthand for fixed credentials.
func WithToken(token, userID string) Option {
	return WithCredentials(session.Static{BearerToken: token, User: userID})
}

// WithNavigator is told when the user is removed from the project they are viewing.
func WithNavigator(nav session.Navigator) Option {
	return func(o *options) error {
		o.navigator = nav
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used for REST calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		o.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger. Components log through children of it.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

// WithManagerOptions passes options through to the connection manager,
// e.g. a custom scheduler or dialer. Hooks set here replace the ones the
// client installs.
func WithManagerOptions(opts ...realtime.Option) Option {
	return func(o *options) error {
		o.managerOptions = append(o.managerOptions, opts...)
		return nil
	}
}
