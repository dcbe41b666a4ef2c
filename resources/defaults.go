package resources

import (
	"net/http"

	"github.com/goliatone/go-resource-client/resourceclient"
)

// Built-in resource names.
const (
	ResourceAdmins       = "admins"
	ResourceProfile      = "profile"
	ResourceBlogs        = "blogs"
	ResourcePrivacy      = "privacy"
	ResourceTerms        = "terms"
	ResourceAbout        = "about"
	ResourceTeamMembers  = "team_members"
	ResourceAppointments = "appointments"
	ResourceAuth         = "auth"
)

func tags(t ...resourceclient.Tag) []resourceclient.Tag { return t }

func legalDoc(name, path string, tag resourceclient.Tag) Definition {
	return Definition{
		Name:     name,
		Provides: tag,
		Operations: map[OpName]Operation{
			OpGet:    {Method: http.MethodGet, Path: path},
			OpCreate: {Method: http.MethodPost, Path: path, Invalidates: tags(tag)},
			OpUpdate: {Method: http.MethodPatch, Path: path, Invalidates: tags(tag)},
		},
	}
}

// DefaultDefinitions returns the endpoint table of the admin API.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:     ResourceAdmins,
			Provides: TagAdmin,
			Operations: map[OpName]Operation{
				OpList:   {Method: http.MethodGet, Path: "/admin/all-admins"},
				OpCreate: {Method: http.MethodPost, Path: "/admin/register", Invalidates: tags(TagAdmin), Multipart: true},
				OpUpdate: {Method: http.MethodPatch, Path: "/admin/edit-admin/{id}", Invalidates: tags(TagAdmin)},
				OpDelete: {Method: http.MethodDelete, Path: "/admin/delete-admin/{id}", Invalidates: tags(TagAdmin)},
			},
		},
		{
			Name:     ResourceProfile,
			Provides: TagProfile,
			Operations: map[OpName]Operation{
				OpGet:            {Method: http.MethodGet, Path: "/admin/profile"},
				OpUpdate:         {Method: http.MethodPatch, Path: "/admin/update-profile", Invalidates: tags(TagProfile, TagAdmin)},
				OpAvatar:         {Method: http.MethodPatch, Path: "/admin/update-avatar", Invalidates: tags(TagProfile, TagAdmin), Multipart: true},
				OpChangePassword: {Method: http.MethodPatch, Path: "/admin/change-password"},
			},
		},
		{
			Name:     ResourceBlogs,
			Provides: TagBlog,
			Operations: map[OpName]Operation{
				OpList:   {Method: http.MethodGet, Path: "/blogs"},
				OpCreate: {Method: http.MethodPost, Path: "/blogs", Invalidates: tags(TagBlog), Multipart: true},
				OpUpdate: {Method: http.MethodPatch, Path: "/blogs/{id}", Invalidates: tags(TagBlog), Multipart: true},
				OpDelete: {Method: http.MethodDelete, Path: "/blogs/{id}", Invalidates: tags(TagBlog)},
			},
		},
		legalDoc(ResourcePrivacy, "/legal-docs/privacy-policy", TagPrivacy),
		legalDoc(ResourceTerms, "/legal-docs/terms-conditions", TagTerms),
		legalDoc(ResourceAbout, "/legal-docs/about-us", TagAbout),
		{
			Name:     ResourceTeamMembers,
			Provides: TagUser,
			Operations: map[OpName]Operation{
				OpList:   {Method: http.MethodGet, Path: "/team-members"},
				OpCreate: {Method: http.MethodPost, Path: "/team-members", Invalidates: tags(TagUser)},
				OpUpdate: {Method: http.MethodPatch, Path: "/team-members/{id}", Invalidates: tags(TagUser)},
				OpDelete: {Method: http.MethodDelete, Path: "/team-members/delete/{id}", Invalidates: tags(TagUser)},
			},
		},
		{
			Name:     ResourceAppointments,
			Provides: TagAppointments,
			Operations: map[OpName]Operation{
				OpList: {Method: http.MethodGet, Path: "/appointments"},
			},
		},
		{
			Name: ResourceAuth,
			Operations: map[OpName]Operation{
				OpLogin:          {Method: http.MethodPost, Path: "/admin/login", Invalidates: tags(TagAdmin)},
				OpForgotPassword: {Method: http.MethodPost, Path: "/admin/forgot-password"},
				OpVerifyOTP:      {Method: http.MethodPost, Path: "/admin/verify-reset-otp"},
				OpResetPassword:  {Method: http.MethodPost, Path: "/admin/reset-password", Invalidates: tags(TagAdmin)},
			},
		},
	}
}

// DefaultRegistry returns a registry of DefaultDefinitions.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(DefaultDefinitions()...)
}
