package resources

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/goliatone/go-resource-client/transport"
)

// ErrNoToken is returned when a successful auth response carries no token.
var ErrNoToken = errors.New("response did not include a token")

// Auth wraps the login and password reset endpoints.
type Auth struct {
	service
}

// Login exchanges credentials for an access token.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	res, err := a.write(ctx, OpLogin, writeArgs{body: map[string]string{
		"email":    email,
		"password": password,
	}})
	if err != nil {
		return "", err
	}
	return extractToken(res.Body, "accessToken", "token")
}

// ForgotPassword asks the API to email a one-time code.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	_, err := a.write(ctx, OpForgotPassword, writeArgs{body: map[string]string{"email": email}})
	return err
}

// VerifyOTP exchanges the emailed code for a reset token.
func (a *Auth) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	res, err := a.write(ctx, OpVerifyOTP, writeArgs{body: map[string]string{
		"email": email,
		"otp":   otp,
	}})
	if err != nil {
		return "", err
	}
	return extractToken(res.Body, "token", "resetToken")
}

// ResetPassword sets a new password, authorised by resetToken.
func (a *Auth) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	_, err := a.write(ctx, OpResetPassword, writeArgs{
		body: map[string]string{
			"newPassword":     newPassword,
			"confirmPassword": confirmPassword,
		},
		headers: map[string]string{"Authorization": "Bearer " + resetToken},
	})
	return err
}

// extractToken looks for the first non-empty field among names, first
// under "data" and then at the top level.
func extractToken(body []byte, names ...string) (string, error) {
	var payload map[string]any
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return "", transport.NewDecodeError(err)
	}

	scopes := []map[string]any{}
	if data, ok := payload["data"].(map[string]any); ok {
		scopes = append(scopes, data)
	}
	scopes = append(scopes, payload)

	for _, scope := range scopes {
		for _, name := range names {
			if s, ok := scope[name].(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", ErrNoToken
}
