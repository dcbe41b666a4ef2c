package authflow

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-resource-client/resources"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// PasswordReset is the reset form: a new password and its confirmation.
type PasswordReset struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate rejects short passwords and mismatched confirmation.
func (p PasswordReset) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.NewPassword, validation.Required, validation.Length(resources.MinPasswordLength, 0)),
		validation.Field(&p.ConfirmPassword, validation.Required, validation.In(p.NewPassword).Error("passwords do not match")),
	)
}

// PasswordChange is the change form for a signed-in administrator.
type PasswordChange struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the old password is present and the new one is acceptable.
func (p PasswordChange) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.OldPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(resources.MinPasswordLength, 0)),
		validation.Field(&p.ConfirmPassword, validation.Required, validation.In(p.NewPassword).Error("passwords do not match")),
	)
}

// ValidateOTP requires exactly six digits.
func ValidateOTP(otp string) error {
	return validation.Validate(otp,
		validation.Required.Error("code is required"),
		validation.Match(otpPattern).Error("code must be 6 digits"),
	)
}
