package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeResult(t *testing.T, res *Result) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img
}

func TestProcessValidation(t *testing.T) {
	small := encodeJPEG(t, 10, 10)

	tests := []struct {
		name        string
		data        []byte
		filename    string
		contentType string
		wantReason  string
	}{
		{
			name:        "oversized payload",
			data:        make([]byte, MaxFileSize+1),
			filename:    "big.jpg",
			contentType: "image/jpeg",
			wantReason:  "exceeds",
		},
		{
			name:        "disallowed content type",
			data:        small,
			filename:    "doc.jpg",
			contentType: "text/plain",
			wantReason:  "content type",
		},
		{
			name:        "disallowed extension",
			data:        small,
			filename:    "photo.tiff",
			contentType: "image/jpeg",
			wantReason:  "extension",
		},
		{
			name:        "missing filename",
			data:        small,
			filename:    "",
			contentType: "image/jpeg",
			wantReason:  "filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(tt.data, tt.filename, tt.contentType, "p1")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Reason, tt.wantReason)
		})
	}
}

func TestProcessRejectsCorruptBytes(t *testing.T) {
	_, err := Process([]byte("definitely not an image"), "fake.jpg", "image/jpeg", "p1")

	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
}

func TestProcessKeepsSmallDimensions(t *testing.T) {
	res, err := Process(encodeJPEG(t, 800, 600), "photo.jpg", "image/jpeg", "p1")
	require.NoError(t, err)

	img := decodeResult(t, res)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestProcessCropsOversizedImages(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"wide landscape", 2400, 900},
		{"tall portrait", 700, 3000},
		{"large square", 1600, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Process(encodeJPEG(t, tt.w, tt.h), "photo.jpg", "image/jpeg", "p1")
			require.NoError(t, err)

			img := decodeResult(t, res)
			assert.Equal(t, MaxDimension, img.Bounds().Dx())
			assert.Equal(t, MaxDimension, img.Bounds().Dy())
		})
	}
}

func TestProcessFlattensTransparencyToWhite(t *testing.T) {
	data := encodePNG(t, 50, 50, color.RGBA{0, 0, 0, 0})

	res, err := Process(data, "transparent.png", "image/png", "p1")
	require.NoError(t, err)

	img := decodeResult(t, res)
	r, g, b, _ := img.At(25, 25).RGBA()
	// JPEG is lossy; just check it landed near white, not near black.
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestProcessAcceptsGIF(t *testing.T) {
	res, err := Process(encodeGIF(t, 40, 40), "anim.gif", "image/gif", "p1")
	require.NoError(t, err)
	decodeResult(t, res)
}

func TestGeneratedFilenames(t *testing.T) {
	res1, err := Process(encodeJPEG(t, 10, 10), "a.jpg", "image/jpeg", "prod-42")
	require.NoError(t, err)
	res2, err := Process(encodeJPEG(t, 10, 10), "a.jpg", "image/jpeg", "prod-42")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res1.Filename, "product_prod-42_"))
	assert.True(t, strings.HasSuffix(res1.Filename, ".jpg"))
	assert.NotEqual(t, res1.Filename, res2.Filename)
}

func TestExtensionCheckIsCaseInsensitive(t *testing.T) {
	_, err := Process(encodeJPEG(t, 10, 10), "PHOTO.JPG", "image/jpeg", "p1")
	assert.NoError(t, err)
}
