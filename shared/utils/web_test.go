package utils

import (
	"net/http"
	"strings"
	"testing"

	"github.com/forumstartup/forum/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	type TestStruct struct {
		Field1 string `json:"field1"`
		Field2 int    `json:"field2"`
	}

	tests := []struct {
		name     string
		body     string
		expected TestStruct
		wantErr  bool
	}{
		{
			name:     "Valid JSON",
			body:     `{"field1": "value", "field2": 123}`,
			expected: TestStruct{Field1: "value", Field2: 123},
		},
		{
			name:    "Invalid JSON",
			body:    `{"field1": "value", "field2": 123`, // Missing closing brace
			wantErr: true,
		},
		{
			name:     "Empty Body",
			body:     "",
			expected: TestStruct{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TestStruct
			err := Decode(strings.NewReader(tt.body), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected *errors.ErrorWithStatusCode
	}{
		{
			name:     "message body",
			status:   http.StatusForbidden,
			body:     `{"message":"You are not authorized to perform this action."}`,
			expected: &errors.ErrorWithStatusCode{Message: "You are not authorized to perform this action.", StatusCode: http.StatusForbidden},
		},
		{
			name:     "error body",
			status:   http.StatusNotFound,
			body:     `{"error":"Post not found"}`,
			expected: &errors.ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound},
		},
		{
			name:     "details body",
			status:   http.StatusInternalServerError,
			body:     `{"error":"Internal error","details":"User is blocked"}`,
			expected: &errors.ErrorWithStatusCode{Message: "Internal error", Details: "User is blocked", StatusCode: http.StatusInternalServerError},
		},
		{
			name:   "field errors",
			status: http.StatusBadRequest,
			body:   `{"errors":{"title":"The title must be between 16 and 64 symbols."}}`,
			expected: &errors.ErrorWithStatusCode{
				StatusCode:  http.StatusBadRequest,
				FieldErrors: map[string]string{"title": "The title must be between 16 and 64 symbols."},
			},
		},
		{
			name:     "plain text",
			status:   http.StatusConflict,
			body:     "Username already exists\n",
			expected: &errors.ErrorWithStatusCode{Message: "Username already exists", StatusCode: http.StatusConflict},
		},
		{
			name:     "html page is not a message",
			status:   http.StatusBadGateway,
			body:     "<html><body>Bad Gateway</body></html>",
			expected: &errors.ErrorWithStatusCode{StatusCode: http.StatusBadGateway},
		},
		{
			name:     "empty",
			status:   http.StatusUnauthorized,
			body:     "",
			expected: &errors.ErrorWithStatusCode{StatusCode: http.StatusUnauthorized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseErrorBody(tt.status, []byte(tt.body)))
		})
	}
}
