package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxFileSize is the largest accepted upload, in bytes.
	MaxFileSize = 10 * 1024 * 1024

	// MaxDimension is the maximum width or height for stored images.
	MaxDimension = 1200

	// JPEGQuality is the compression quality for the re-encoded output.
	JPEGQuality = 85
)

// AllowedMIMETypes lists the accepted declared content types.
var AllowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AllowedExtensions lists the accepted upload filename extensions.
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidationError reports an upload the client can fix: too large, wrong
// declared type, wrong extension, or a missing filename.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid image upload: " + e.Reason
}

// DecodeError reports bytes that could not be decoded as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decoding image: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Result is the normalized image payload.
type Result struct {
	Data     []byte
	Filename string
}

// Process validates and normalizes a raw upload: checks size, declared
// content type and extension, decodes the bytes, honours any embedded EXIF
// orientation, center-crops to MaxDimension when oversized, flattens
// transparency onto white, and re-encodes as JPEG. Persistence is the
// caller's responsibility.
func Process(data []byte, filename, contentType, productID string) (*Result, error) {
	if err := validate(data, filename, contentType); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	img = applyOrientation(img, readOrientation(data))

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = resizeCrop(img, MaxDimension)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: generateFilename(productID),
	}, nil
}

func validate(data []byte, filename, contentType string) error {
	if len(data) > MaxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("file exceeds %d MiB", MaxFileSize/(1024*1024))}
	}
	if !AllowedMIMETypes[contentType] {
		return &ValidationError{Reason: "unsupported content type " + contentType}
	}
	if filename == "" {
		return &ValidationError{Reason: "filename is required"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return &ValidationError{Reason: "unsupported file extension " + ext}
	}
	return nil
}

// generateFilename builds a collision-resistant name owned by a product.
// The extension always matches the output encoding.
func generateFilename(productID string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("product_%s_%s.jpg", productID, suffix)
}

// readOrientation extracts the EXIF orientation tag, returning 1 (upright)
// when the data carries no usable EXIF block.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// applyOrientation bakes the EXIF orientation into the pixels so the output
// never depends on viewer-side metadata handling.
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation == 1 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var dst *image.RGBA
	if orientation >= 5 {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch orientation {
			case 2: // mirrored horizontally
				dst.Set(w-1-x, y, c)
			case 3: // rotated 180
				dst.Set(w-1-x, h-1-y, c)
			case 4: // mirrored vertically
				dst.Set(x, h-1-y, c)
			case 5: // mirrored and rotated 270 CW
				dst.Set(y, x, c)
			case 6: // rotated 90 CW
				dst.Set(h-1-y, x, c)
			case 7: // mirrored and rotated 90 CW
				dst.Set(h-1-y, w-1-x, c)
			case 8: // rotated 270 CW
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}

// resizeCrop scales the image to cover a maxDim square and center-crops the
// overflow of the longer axis. Uses high-quality Catmull-Rom interpolation.
func resizeCrop(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Crop the source to a centered square so the scale below lands on
	// exactly maxDim x maxDim without distortion.
	side := w
	if h < side {
		side = h
	}
	srcX := bounds.Min.X + (w-side)/2
	srcY := bounds.Min.Y + (h-side)/2
	src := image.Rect(srcX, srcY, srcX+side, srcY+side)

	dst := image.NewRGBA(image.Rect(0, 0, maxDim, maxDim))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, src, xdraw.Over, nil)
	return dst
}

// flatten composites the image over a white background, dropping any alpha
// channel before JPEG encoding.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}
