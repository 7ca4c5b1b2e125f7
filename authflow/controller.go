// Package authflow drives the login and signup request cycle and hands
// successful logins to the credential store.
package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-crm/apiclient"
	"github.com/jrsteele09/go-crm/credentials"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Navigation targets
const (
	RouteDashboard = "/dashboard"
	RouteLogin     = "/login"
)

// User-visible messages
const (
	MsgLoginFallback   = "Something went wrong"
	MsgSignupFallback  = "Something went wrong"
	MsgSignupNoReply   = "Server error, please try again"
	MsgSignupSuccess   = "Signup successful! Redirecting to login..."
	MsgSessionNotSaved = "Could not save your session"
)

// DefaultSignupRedirectDelay is the pause between a successful signup and the
// move to the login route.
const DefaultSignupRedirectDelay = 2 * time.Second

// State of the controller's current or last submission. Succeeded and Failed
// hold until the next submission, which they accept just like Idle.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	return [...]string{"idle", "pending", "succeeded", "failed"}[s]
}

type Credentials struct {
	Email    string
	Password string
}

type Profile struct {
	Name     string
	Email    string
	Password string
}

// AuthAPI is the subset of the API client the controller needs.
type AuthAPI interface {
	Login(ctx context.Context, req apiclient.LoginRequest) (*apiclient.LoginResponse, error)
	Signup(ctx context.Context, req apiclient.SignupRequest) (*apiclient.SignupResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// SessionStore is satisfied by *credentials.Store.
type SessionStore interface {
	Save(session credentials.Session) error
	Load() (credentials.Session, bool, error)
	Clear() error
}

// Navigator receives route changes.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Controller manages one authentication submission at a time. A submit made
// while another is pending is refused with errors.ErrSubmissionInProgress.
type Controller struct {
	api       AuthAPI
	store     SessionStore
	navigator Navigator
	logger    zerolog.Logger

	redirectDelay time.Duration

	mu            sync.Mutex
	state         State
	message       string
	signupForm    Profile
	redirectTimer *time.Timer
	closed        bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSignupRedirectDelay overrides the post-signup pause (primarily for testing)
func WithSignupRedirectDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.redirectDelay = d
	}
}

// WithLogger sets the logger, defaulting to the global zerolog logger.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller.
func NewController(api AuthAPI, store SessionStore, navigator Navigator, options ...ControllerOption) *Controller {
	c := &Controller{
		api:           api,
		store:         store,
		navigator:     navigator,
		logger:        log.Logger,
		redirectDelay: DefaultSignupRedirectDelay,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a submission is in flight.
func (c *Controller) Pending() bool {
	return c.State() == StatePending
}

// Message returns the last user-visible status or error text.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// SignupForm returns the signup form fields as they currently stand.
func (c *Controller) SignupForm() Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signupForm
}

// SubmitLogin authenticates and, on success, saves the session then navigates
// to the dashboard. Nothing is navigated if the session cannot be saved.
func (c *Controller) SubmitLogin(ctx context.Context, creds Credentials) error {
	if err := c.begin(); err != nil {
		return err
	}

	resp, err := c.api.Login(ctx, apiclient.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return c.fail(classifyLogin(err))
	}

	session := credentials.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if !session.Complete() {
		return c.fail(&Failure{
			Kind:    NetworkOrUnknown,
			Message: MsgLoginFallback,
			Err:     crmerrors.Wrapf(crmerrors.ErrInvalidToken, "login response missing session fields"),
		})
	}

	if err := c.store.Save(session); err != nil {
		c.logger.Err(err).Msg("failed to persist session")
		c.finish(StateFailed, MsgSessionNotSaved)
		return err
	}

	c.finish(StateSucceeded, "")
	c.logger.Info().Str("email", creds.Email).Msg("login succeeded")
	c.navigator.Navigate(RouteDashboard)
	return nil
}

// SubmitSignup registers an account. On success the form is cleared and a
// single navigation to the login route is scheduled after the redirect delay.
func (c *Controller) SubmitSignup(ctx context.Context, profile Profile) error {
	if err := c.begin(); err != nil {
		return err
	}
	c.mu.Lock()
	c.signupForm = profile
	c.mu.Unlock()

	_, err := c.api.Signup(ctx, apiclient.SignupRequest{Name: profile.Name, Email: profile.Email, Password: profile.Password})
	if err != nil {
		return c.fail(classifySignup(err))
	}

	c.mu.Lock()
	c.state = StateSucceeded
	c.message = MsgSignupSuccess
	c.signupForm = Profile{}
	c.scheduleRedirectLocked()
	c.mu.Unlock()

	c.logger.Info().Str("email", profile.Email).Msg("signup succeeded")
	return nil
}

// Restore loads a previously persisted session, as done once at start-up.
func (c *Controller) Restore() (credentials.Session, bool, error) {
	session, ok, err := c.store.Load()
	if err != nil {
		c.logger.Err(err).Msg("failed to restore session")
		return credentials.Session{}, false, err
	}
	return session, ok, nil
}

// Logout revokes the refresh token on a best-effort basis, clears the stored
// session and navigates to the login route.
func (c *Controller) Logout(ctx context.Context) error {
	session, ok, err := c.store.Load()
	if err != nil {
		c.logger.Warn().Err(err).Msg("could not read session before logout")
	}
	if ok {
		if err := c.api.Logout(ctx, session.RefreshToken); err != nil {
			c.logger.Warn().Err(err).Msg("server-side logout failed")
		}
	}

	if err := c.store.Clear(); err != nil {
		c.logger.Err(err).Msg("failed to clear session")
		return err
	}
	c.navigator.Navigate(RouteLogin)
	return nil
}

// Close cancels a scheduled post-signup navigation that has not fired yet.
// It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.redirectTimer != nil {
		c.redirectTimer.Stop()
		c.redirectTimer = nil
	}
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StatePending {
		return crmerrors.ErrSubmissionInProgress
	}
	c.state = StatePending
	c.message = ""
	return nil
}

func (c *Controller) finish(state State, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.message = message
}

func (c *Controller) fail(f *Failure) error {
	c.logger.Warn().Err(f.Err).Str("kind", f.Kind.String()).Msg(f.Message)
	c.finish(StateFailed, f.Message)
	return f
}

func (c *Controller) scheduleRedirectLocked() {
	if c.closed {
		return
	}
	if c.redirectTimer != nil {
		c.redirectTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(c.redirectDelay, func() {
		c.mu.Lock()
		if c.closed || c.redirectTimer != timer {
			c.mu.Unlock()
			return
		}
		c.redirectTimer = nil
		c.mu.Unlock()

		c.navigator.Navigate(RouteLogin)
	})
	c.redirectTimer = timer
}

func classifyLogin(err error) *Failure {
	var apiErr *apiclient.APIError
	if crmerrors.As(err, &apiErr) && apiErr.Message != "" {
		return &Failure{Kind: ServerRejected, Message: apiErr.Message, Err: err}
	}
	return &Failure{Kind: NetworkOrUnknown, Message: MsgLoginFallback, Err: err}
}

func classifySignup(err error) *Failure {
	var apiErr *apiclient.APIError
	if !crmerrors.As(err, &apiErr) {
		return &Failure{Kind: NetworkOrUnknown, Message: MsgSignupNoReply, Err: err}
	}
	if apiErr.ErrorText != "" {
		return &Failure{Kind: ServerRejected, Message: apiErr.ErrorText, Err: err}
	}
	return &Failure{Kind: NetworkOrUnknown, Message: MsgSignupFallback, Err: err}
}
