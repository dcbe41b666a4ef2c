package resources

import (
	"context"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-resource-client/transport"
)

// MinPasswordLength is the shortest password accepted client-side.
const MinPasswordLength = 6

// Admin is an administrator account.
type Admin struct {
	ID           string    `json:"_id"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	Role         string    `json:"role"`
	Avatar       string    `json:"avatar"`
	ProfileImage string    `json:"profileImage"`
	Image        string    `json:"image"`
	Photo        string    `json:"photo"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Designation is the display label for the admin's role.
func (a Admin) Designation() string {
	if a.Role == "admin" {
		return "Admin"
	}
	return "Super Admin"
}

// AvatarPath returns the first image field the API populated.
func (a Admin) AvatarPath() string {
	for _, p := range []string{a.Avatar, a.ProfileImage, a.Image, a.Photo} {
		if p != "" {
			return p
		}
	}
	return ""
}

// NewAdmin is the registration form for an administrator.
type NewAdmin struct {
	Fullname        string `json:"fullname"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Avatar          *transport.File
}

// Validate checks the form before anything is sent.
func (n NewAdmin) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Fullname, validation.Required),
		validation.Field(&n.Email, validation.Required, is.Email),
		validation.Field(&n.Password, validation.Required, validation.Length(MinPasswordLength, 0)),
		validation.Field(&n.ConfirmPassword, validation.Required, validation.In(n.Password).Error("passwords do not match")),
	)
}

func (n NewAdmin) form() *transport.Form {
	f := &transport.Form{Fields: map[string]string{
		"fullname": n.Fullname,
		"email":    n.Email,
		"mobile":   n.Mobile,
		"password": n.Password,
	}}
	if n.Avatar != nil {
		avatar := *n.Avatar
		avatar.Field = "avatar"
		f.Files = append(f.Files, avatar)
	}
	return f
}

// AdminUpdate carries the editable admin fields.
type AdminUpdate struct {
	Fullname string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Admins manages administrator accounts.
type Admins struct {
	service
}

// List returns every administrator.
func (a *Admins) List(ctx context.Context, params url.Values) ([]Admin, error) {
	return readData[[]Admin](ctx, a.service, params)
}

// Create registers a new administrator after validating the form.
func (a *Admins) Create(ctx context.Context, in NewAdmin) (Admin, error) {
	if err := in.Validate(); err != nil {
		return Admin{}, err
	}
	env, err := writeData[Admin](ctx, a.service, OpCreate, writeArgs{form: in.form()})
	return env.Data, err
}

// Update edits administrator id.
func (a *Admins) Update(ctx context.Context, id string, in AdminUpdate) (Admin, error) {
	env, err := writeData[Admin](ctx, a.service, OpUpdate, writeArgs{id: id, body: in})
	return env.Data, err
}

// Delete removes administrator id.
func (a *Admins) Delete(ctx context.Context, id string) error {
	_, err := a.write(ctx, OpDelete, writeArgs{id: id})
	return err
}
