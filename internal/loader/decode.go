package loader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for content that is not a recognised image type.
var ErrNotImage = errors.New("not an image")

// maxImageBytes bounds a single layer download.
const maxImageBytes = 64 << 20

// Decode sniffs the content type before decoding so that, for example, an
// HTML error page served in place of an image fails with ErrNotImage.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !filetype.IsImage(data) {
		return nil, "", ErrNotImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", kind.Extension, err)
	}
	return img, format, nil
}
