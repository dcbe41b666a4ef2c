package authflow

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-resource-client/resources"
	"github.com/goliatone/go-resource-client/session"
	"github.com/rs/zerolog"
)

var (
	// ErrNoResetEmail means VerifyOTP ran before ForgotPassword.
	ErrNoResetEmail = errors.New("no password reset in progress; request a code first")
	// ErrNoResetToken means ResetPassword ran before VerifyOTP.
	ErrNoResetToken = errors.New("reset code not verified")
	// ErrNotLoggedIn means there is no stored access token.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Flow drives login and the forgot, verify, reset sequence, keeping tokens
// and the pending reset email in the session store.
type Flow struct {
	auth    *resources.Auth
	profile *resources.Profile
	store   session.Store
	logger  zerolog.Logger
}

// New creates a flow.
func New(auth *resources.Auth, profile *resources.Profile, store session.Store, logger zerolog.Logger) *Flow {
	return &Flow{
		auth:    auth,
		profile: profile,
		store:   store,
		logger:  logger.With().Str("component", "authflow").Logger(),
	}
}

// Token returns the stored access token, or "" when logged out. It has the
// shape of a transport token source.
func (f *Flow) Token(ctx context.Context) (string, error) {
	return session.Lookup(ctx, f.store, session.KeyAccessToken)
}

// Login authenticates and stores the access token.
func (f *Flow) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return validation.Errors{"email": err}
	}
	if err := validation.Validate(password, validation.Required); err != nil {
		return validation.Errors{"password": err}
	}

	token, err := f.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := f.store.Set(ctx, session.KeyAccessToken, token); err != nil {
		return err
	}
	f.logger.Info().Str("email", email).Msg("logged in")
	return nil
}

// Logout forgets the access token.
func (f *Flow) Logout(ctx context.Context) error {
	return f.store.Delete(ctx, session.KeyAccessToken)
}

// ForgotPassword requests a reset code and remembers the email for VerifyOTP.
func (f *Flow) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return validation.Errors{"email": err}
	}
	if err := f.auth.ForgotPassword(ctx, email); err != nil {
		return err
	}
	return f.store.Set(ctx, session.KeyResetEmail, email)
}

// VerifyOTP exchanges the emailed code for a reset token.
func (f *Flow) VerifyOTP(ctx context.Context, otp string) error {
	email, err := session.Lookup(ctx, f.store, session.KeyResetEmail)
	if err != nil {
		return err
	}
	if email == "" {
		return ErrNoResetEmail
	}
	otp = strings.TrimSpace(otp)
	if err := ValidateOTP(otp); err != nil {
		return validation.Errors{"otp": err}
	}

	token, err := f.auth.VerifyOTP(ctx, email, otp)
	if err != nil {
		return err
	}
	return f.store.Set(ctx, session.KeyResetToken, token)
}

// ResetPassword sets the new password. Invalid input is rejected before any
// request is made; on success the reset state is cleared.
func (f *Flow) ResetPassword(ctx context.Context, newPassword, confirmPassword string) error {
	if err := (PasswordReset{NewPassword: newPassword, ConfirmPassword: confirmPassword}).Validate(); err != nil {
		return err
	}

	token, err := session.Lookup(ctx, f.store, session.KeyResetToken)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNoResetToken
	}

	if err := f.auth.ResetPassword(ctx, token, newPassword, confirmPassword); err != nil {
		return err
	}

	for _, key := range []string{session.KeyResetToken, session.KeyResetEmail} {
		if err := f.store.Delete(ctx, key); err != nil {
			f.logger.Warn().Err(err).Str("key", key).Msg("failed to clear reset state")
		}
	}
	return nil
}

// ChangePassword replaces the signed-in administrator's password.
func (f *Flow) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	form := PasswordChange{OldPassword: oldPassword, NewPassword: newPassword, ConfirmPassword: confirmPassword}
	if err := form.Validate(); err != nil {
		return err
	}

	token, err := f.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotLoggedIn
	}
	return f.profile.ChangePassword(ctx, oldPassword, newPassword)
}
