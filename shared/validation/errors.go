package validation

import "errors"

// ErrPayloadTooLarge is returned when an upload exceeds its size limit
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrInvalidMimeType is returned when an upload is not an accepted image type
var ErrInvalidMimeType = errors.New("invalid MIME type")
