package transport

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"

	"github.com/bytedance/sonic"
)

// Request describes one call against the API. Path is relative to the
// configured base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Form    *Form
	Headers map[string]string
}

// Response is a successful (2xx) reply.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

// Transport executes requests. Implementations return *Error for every failure.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Form is a multipart body: plain fields plus zero or more file parts.
type Form struct {
	Fields map[string]string
	Files  []File
}

// File is one uploaded part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// encodeBody renders the request body once so retries can resend it.
func encodeBody(r *Request) ([]byte, string, error) {
	if r.Form != nil {
		return encodeMultipart(r.Form)
	}
	if r.Body == nil {
		return nil, "", nil
	}
	if raw, ok := r.Body.([]byte); ok {
		return raw, "application/json", nil
	}
	data, err := sonic.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, "application/json", nil
}

func encodeMultipart(form *Form) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	names := make([]string, 0, len(form.Fields))
	for name := range form.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.WriteField(name, form.Fields[name]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	for _, f := range form.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
