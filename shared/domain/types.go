package domain

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

type (
	Email    = string
	Password = string
	Username = string
	RoleName = string

	UserId    = int64
	PostId    = int64
	CommentId = int64
	TagName   = string
)

// backend serializes LocalDateTime without a zone
const localDateTimeLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a time decoded from either RFC 3339 or the backend's
// zone-less local form. Zone-less values are taken as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(localDateTimeLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("cannot parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
