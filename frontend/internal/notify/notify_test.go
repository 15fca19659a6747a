package notify

import (
	"bytes"
	"testing"

	"github.com/forumstartup/forum/shared/logger"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Success("Profile updated successfully!")
	r.Error("Image must be under 2MB")

	assert.Equal(t, []Message{
		{Level: LevelSuccess, Text: "Profile updated successfully!"},
		{Level: LevelError, Text: "Image must be under 2MB"},
	}, r.Drain())
	assert.Empty(t, r.Drain())
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeTo(&buf, "info", true)
	t.Cleanup(func() { logger.Initialize("info", false) })

	NewLog().Success("saved")
	assert.Contains(t, buf.String(), `"msg":"saved"`)
	assert.Contains(t, buf.String(), `"component":"notify"`)
}
