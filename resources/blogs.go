package resources

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/goliatone/go-resource-client/transport"
)

// Blog is a blog post as returned by the API.
type Blog struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	Author        string    `json:"author"`
	Status        string    `json:"status"`
	CoverImage    string    `json:"coverImage"`
	Views         int       `json:"views"`
	Likes         int       `json:"likes"`
	Comments      int       `json:"comments"`
	PublishedDate string    `json:"publishedDate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BlogInput is the multipart form for creating or editing a post. Empty
// fields are not sent, so an edit only changes what is set.
type BlogInput struct {
	Title    string
	Content  string
	Category string
	Author   string
	Status   string
	Cover    *transport.File
}

func (in BlogInput) form() *transport.Form {
	f := &transport.Form{Fields: map[string]string{}}
	for k, v := range map[string]string{
		"title":    in.Title,
		"content":  in.Content,
		"category": in.Category,
		"author":   in.Author,
		"status":   in.Status,
	} {
		if v != "" {
			f.Fields[k] = v
		}
	}
	if in.Cover != nil {
		cover := *in.Cover
		cover.Field = "coverImage"
		f.Files = append(f.Files, cover)
	}
	return f
}

// Blogs manages blog posts.
type Blogs struct {
	service
}

// List returns every post.
func (b *Blogs) List(ctx context.Context, params url.Values) ([]Blog, error) {
	return readData[[]Blog](ctx, b.service, params)
}

// Create publishes a new post.
func (b *Blogs) Create(ctx context.Context, in BlogInput) (Blog, error) {
	if in.Title == "" {
		return Blog{}, errors.New("blog title is required")
	}
	env, err := writeData[Blog](ctx, b.service, OpCreate, writeArgs{form: in.form()})
	return env.Data, err
}

// Update edits post id.
func (b *Blogs) Update(ctx context.Context, id string, in BlogInput) (Blog, error) {
	env, err := writeData[Blog](ctx, b.service, OpUpdate, writeArgs{id: id, form: in.form()})
	return env.Data, err
}

// Delete removes post id.
func (b *Blogs) Delete(ctx context.Context, id string) error {
	_, err := b.write(ctx, OpDelete, writeArgs{id: id})
	return err
}
