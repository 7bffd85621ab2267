package imagecodec

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanlumi/internal/domain/entity"
	"hanlumi/pkg/errors"
)

func writePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "pic.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestEncodeDataURISmallImagePassesThrough(t *testing.T) {
	uri, err := EncodeDataURI(writePNG(t, 320, 240))
	require.NoError(t, err)

	assert.True(t, entity.IsImageContent(uri))
	img := decodeDataURI(t, uri)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestEncodeDataURIDownscalesLargeImage(t *testing.T) {
	uri, err := EncodeDataURI(writePNG(t, 2560, 1440))
	require.NoError(t, err)

	img := decodeDataURI(t, uri)
	assert.LessOrEqual(t, img.Bounds().Dx(), maxDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), maxDimension)
	// Aspect ratio survives the fit.
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 720, img.Bounds().Dy())
}

func TestEncodeDataURIMissingFile(t *testing.T) {
	_, err := EncodeDataURI(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestEncodeDataURINotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))
	_, err := EncodeDataURI(path)
	assert.Error(t, err)
}
