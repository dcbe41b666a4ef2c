package media

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goliatone/go-resource-client/transport"
)

const (
	DefaultMaxUploadBytes int64 = 5 << 20
	DefaultAvatarSize           = 640
)

var (
	ErrEmptyUpload = errors.New("upload is empty")
	ErrNotImage    = errors.New("upload is not an image")
	ErrTooLarge    = errors.New("upload is too large")
)

// UploadError describes a rejected upload.
type UploadError struct {
	Name   string
	Detail string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Detail)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ValidateImage checks that data is an image no larger than maxBytes and
// returns its sniffed MIME type. maxBytes <= 0 uses DefaultMaxUploadBytes.
func ValidateImage(name string, data []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if len(data) == 0 {
		return "", &UploadError{Name: name, Detail: "file is empty", Err: ErrEmptyUpload}
	}
	if int64(len(data)) > maxBytes {
		return "", &UploadError{
			Name:   name,
			Detail: fmt.Sprintf("file is %s, the limit is %s", humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(maxBytes))),
			Err:    ErrTooLarge,
		}
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", &UploadError{Name: name, Detail: fmt.Sprintf("%s is not an image", mime.String()), Err: ErrNotImage}
	}
	return mime.String(), nil
}

// LoadImage reads and validates an image file for upload.
func LoadImage(path string, maxBytes int64) (transport.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return transport.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	mime, err := ValidateImage(name, data, maxBytes)
	if err != nil {
		return transport.File{}, err
	}
	return transport.File{Name: name, ContentType: mime, Data: data}, nil
}

// NormalizeAvatar centre-crops data to a square no larger than size pixels
// and re-encodes it as JPEG. size <= 0 uses DefaultAvatarSize.
func NormalizeAvatar(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultAvatarSize
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	img := imaging.CropCenter(src, side, side)
	if side > size {
		img = imaging.Resize(img, size, size, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// AvatarFile normalizes an already validated image into a JPEG upload.
func AvatarFile(f transport.File, size int) (transport.File, error) {
	data, err := NormalizeAvatar(f.Data, size)
	if err != nil {
		return transport.File{}, err
	}
	name := strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + ".jpg"
	return transport.File{Field: f.Field, Name: name, ContentType: "image/jpeg", Data: data}, nil
}
