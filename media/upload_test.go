package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goliatone/go-resource-client/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	data := testPNG(t, 4, 4)

	mime, err := ValidateImage("a.png", data, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = ValidateImage("empty.png", nil, 0)
	assert.ErrorIs(t, err, ErrEmptyUpload)

	_, err = ValidateImage("notes.txt", []byte("just some text"), 0)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = ValidateImage("big.png", data, 10)
	require.ErrorIs(t, err, ErrTooLarge)

	var upErr *UploadError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "big.png", upErr.Name)
	assert.True(t, strings.Contains(upErr.Error(), "10 B"), upErr.Error())
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(path, testPNG(t, 8, 8), 0o644))

	f, err := LoadImage(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "cover.png", f.Name)
	assert.Equal(t, "image/png", f.ContentType)
	assert.NotEmpty(t, f.Data)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.Error(t, err)
}

func TestNormalizeAvatar(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		wantSide int
	}{
		{"landscape below cap", 300, 200, 200},
		{"portrait below cap", 120, 400, 120},
		{"above cap", 1000, 800, 640},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NormalizeAvatar(testPNG(t, tt.w, tt.h), 0)
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", mimetype.Detect(out).String())

			img, err := imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSide, img.Bounds().Dx())
			assert.Equal(t, tt.wantSide, img.Bounds().Dy())
		})
	}

	_, err := NormalizeAvatar([]byte("nope"), 0)
	assert.Error(t, err)
}

func TestAvatarFile(t *testing.T) {
	f, err := AvatarFile(transport.File{Field: "avatar", Name: "me.png", Data: testPNG(t, 50, 50)}, 32)
	require.NoError(t, err)
	assert.Equal(t, "me.jpg", f.Name)
	assert.Equal(t, "image/jpeg", f.ContentType)
	assert.Equal(t, "avatar", f.Field)
}
