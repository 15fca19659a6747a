package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

// ImageInfo describes an accepted image upload.
type ImageInfo struct {
	MimeType string
	Width    int
	Height   int
}

// ValidateImage checks that data is at most maxBytes long and decodes as
// one of gif, jpeg, png or webp.
func ValidateImage(data []byte, maxBytes int64) (ImageInfo, error) {
	if int64(len(data)) > maxBytes {
		return ImageInfo{}, fmt.Errorf("%w: %d bytes (limit %gMB)", ErrPayloadTooLarge, len(data), FormatSizeMB(maxBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %s", ErrInvalidMimeType, http.DetectContentType(data))
	}

	return ImageInfo{
		MimeType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// FormatSizeMB converts bytes to megabytes for user-friendly error messages.
func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
