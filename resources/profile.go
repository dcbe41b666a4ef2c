package resources

import (
	"context"

	"github.com/goliatone/go-resource-client/transport"
)

type profileData struct {
	Admin Admin `json:"admin"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
}

// Profile is the signed-in administrator's own account.
type Profile struct {
	service
}

// Get returns the signed-in administrator.
func (p *Profile) Get(ctx context.Context) (Admin, error) {
	data, err := readData[profileData](ctx, p.service, nil)
	return data.Admin, err
}

// Update edits the profile fields.
func (p *Profile) Update(ctx context.Context, in ProfileUpdate) error {
	_, err := p.write(ctx, OpUpdate, writeArgs{body: in})
	return err
}

// UpdateAvatar uploads a new avatar image.
func (p *Profile) UpdateAvatar(ctx context.Context, file transport.File) error {
	file.Field = "avatar"
	_, err := p.write(ctx, OpAvatar, writeArgs{form: &transport.Form{Files: []transport.File{file}}})
	return err
}

// ChangePassword replaces the password. Callers validate the new password.
func (p *Profile) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := p.write(ctx, OpChangePassword, writeArgs{body: map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}})
	return err
}
