package drawing

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DefaultMinImageBytes is the decoded size an image must exceed to be treated as a drawing.
// An untouched canvas encodes to far less than this.
const DefaultMinImageBytes = 1000

const defaultMIMEType = "image/jpeg"

var ErrInvalidImage = errors.New("the image appears to be empty or invalid")

// Image is a decoded data URL payload.
type Image struct {
	MIMEType string
	Data     []byte
}

// DecodeDataURL splits a base64 data URL into its media type and bytes.
// A media type that is not image/* is replaced with image/jpeg.
func DecodeDataURL(dataURL string) (Image, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return Image{}, fmt.Errorf("data URL has no payload separator: %w", ErrInvalidImage)
	}
	if !strings.HasPrefix(header, "data:") {
		return Image{}, fmt.Errorf("data URL must start with data: %w", ErrInvalidImage)
	}
	mediaType, params, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	if !strings.Contains(params, "base64") {
		return Image{}, fmt.Errorf("data URL is not base64 encoded: %w", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("base64.DecodeString > %w: %w", err, ErrInvalidImage)
	}

	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = defaultMIMEType
	}
	return Image{
		MIMEType: mediaType,
		Data:     data,
	}, nil
}

// EncodeDataURL is the inverse of DecodeDataURL.
func EncodeDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ValidateImage decodes dataURL and rejects payloads of minBytes bytes or fewer.
func ValidateImage(dataURL string, minBytes int) (Image, error) {
	if dataURL == "" {
		return Image{}, fmt.Errorf("image is missing: %w", ErrInvalidImage)
	}
	image, err := DecodeDataURL(dataURL)
	if err != nil {
		return Image{}, err
	}
	if len(image.Data) <= minBytes {
		return Image{}, fmt.Errorf("decoded image has %d bytes, want more than %d: %w", len(image.Data), minBytes, ErrInvalidImage)
	}
	return image, nil
}
