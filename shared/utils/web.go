package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/errors"
)

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("body is invalid json: %w", err)
	}
	return nil
}

// ParseErrorBody turns a non-2xx response body into an ErrorWithStatusCode.
// JSON bodies contribute message, details and field errors; any other body
// is used verbatim as the message when it is short plain text.
func ParseErrorBody(statusCode int, body []byte) *errors.ErrorWithStatusCode {
	e := &errors.ErrorWithStatusCode{StatusCode: statusCode}

	var parsed api.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		e.Details = parsed.Details
		e.FieldErrors = parsed.Errors
		switch {
		case parsed.Message != "":
			e.Message = parsed.Message
		case parsed.Error != "":
			e.Message = parsed.Error
		}
		return e
	}

	text := strings.TrimSpace(string(body))
	if text != "" && !strings.HasPrefix(text, "<") && len(text) <= 512 {
		e.Message = text
	}
	return e
}

// StatusText is the fallback description of a status code without a body.
func StatusText(statusCode int) string {
	return fmt.Sprintf("backend returned status %d %s", statusCode, http.StatusText(statusCode))
}
