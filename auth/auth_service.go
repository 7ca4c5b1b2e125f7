package auth

import (
	"context"
	"strings"
	"time"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/token/jwt"
	"github.com/jrsteele09/go-crm/token/refresh"
	"github.com/jrsteele09/go-crm/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LoginResult is everything the login endpoint hands back to the client.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *users.User
}

// AccountService provides login, signup and logout for CRM users.
type AccountService struct {
	users   users.UserRepo
	tokens  *jwt.Creator
	refresh *refresh.Manager
	nowTime func() time.Time // injectable for testing
}

// AccountServiceOption defines a function type to modify the AccountService instance.
type AccountServiceOption func(*AccountService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AccountServiceOption {
	return func(as *AccountService) {
		as.nowTime = nowFunc
	}
}

// NewAccountService initializes a new AccountService with required dependencies.
func NewAccountService(
	userRepo users.UserRepo,
	tokens *jwt.Creator,
	refreshTokens *refresh.Manager,
	options ...AccountServiceOption,
) (*AccountService, error) {
	if userRepo == nil {
		return nil, errors.New("[NewAccountService] Users repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAccountService] token creator is required")
	}
	if refreshTokens == nil {
		return nil, errors.New("[NewAccountService] refresh token manager is required")
	}

	as := &AccountService{
		users:   userRepo,
		tokens:  tokens,
		refresh: refreshTokens,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Login checks the credentials and issues an access and refresh token pair.
// Unknown emails and wrong passwords both return errors.ErrInvalidCredentials.
func (as *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = users.NormaliseEmail(email)
	if err := ValidateUserCredentials(email, password); err != nil {
		return nil, crmerrors.Wrapf(crmerrors.ErrInvalidCredentials, "%v", err)
	}

	user, err := as.users.GetByEmail(ctx, email)
	if crmerrors.Is(err, crmerrors.ErrUserNotFound) {
		return nil, crmerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "[AccountService.Login] GetByEmail")
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, crmerrors.Wrapf(crmerrors.ErrInvalidCredentials, "%v", UserPasswordsDontMatchErr)
	}

	accessToken, err := as.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[AccountService.Login] CreateAccessToken")
	}
	refreshToken, err := as.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[AccountService.Login] refresh.Create")
	}

	now := as.nowTime()
	if err := as.users.SetLastLogin(ctx, user.ID, now); err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	} else {
		user.LastLogin = now
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Signup registers a new account. Validation failures are a *ValidationError
// and a taken email returns errors.ErrUserExists.
func (as *AccountService) Signup(ctx context.Context, name, email, password string) (*users.User, error) {
	name = strings.TrimSpace(name)
	email = users.NormaliseEmail(email)
	if err := ValidateSignup(name, email, password); err != nil {
		return nil, &ValidationError{Err: err}
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[AccountService.Signup] HashPassword")
	}

	user := &users.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		DateJoined:   as.nowTime(),
	}
	if err := as.users.Insert(ctx, user); err != nil {
		if crmerrors.Is(err, crmerrors.ErrUserExists) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[AccountService.Signup] Insert")
	}
	return user, nil
}

// Logout revokes the user's refresh token. An unknown token is not an error,
// but a token issued to another user is refused.
func (as *AccountService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	rt, err := as.refresh.Get(ctx, refreshToken)
	if crmerrors.Is(err, crmerrors.ErrInvalidRefreshToken) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[AccountService.Logout] refresh.Get")
	}
	if rt.UserID != userID {
		return crmerrors.Wrapf(crmerrors.ErrInvalidRefreshToken, "%v", RefreshTokenOwnerErr)
	}
	return errors.Wrap(as.refresh.Revoke(ctx, refreshToken), "[AccountService.Logout] refresh.Revoke")
}

// Authenticate verifies a bearer access token.
func (as *AccountService) Authenticate(accessToken string) (*jwt.AccessClaims, error) {
	return as.tokens.Verify(accessToken)
}
