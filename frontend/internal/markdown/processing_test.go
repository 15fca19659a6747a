package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "emphasis",
			input:    "**bold** and *em* and ~~gone~~",
			contains: []string{"<strong>bold</strong>", "<em>em</em>", "<del>gone</del>"},
		},
		{
			name:     "fenced code is escaped",
			input:    "```\n<b>x</b>\n```",
			contains: []string{"<pre><code>", "&lt;b&gt;x&lt;/b&gt;"},
		},
		{
			name:     "raw html is dropped",
			input:    "hi <script>alert(1)</script><img src=x onerror=alert(1)>",
			contains: []string{"hi"},
			absent:   []string{"<script", "onerror", "alert(1)</script>"},
		},
		{
			name:     "bare urls become links",
			input:    "see https://example.com/docs",
			contains: []string{`href="https://example.com/docs"`, "nofollow", "noopener", `target="_blank"`},
		},
		{
			name:   "javascript links are removed",
			input:  "[click](javascript:alert(1))",
			absent: []string{"javascript:"},
		},
		{
			name:     "line breaks are kept",
			input:    "first\nsecond",
			contains: []string{"first<br>", "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Render(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.absent {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{name: "short text unchanged", input: "hello world", n: 20, expected: "hello world"},
		{name: "markup stripped", input: "**Go** & `chi`\n\n> quoted", n: 0, expected: "Go & chi quoted"},
		{name: "cut with ellipsis", input: "one two three four", n: 7, expected: "one two…"},
		{name: "counts characters not bytes", input: "ééééé", n: 3, expected: "ééé…"},
		{name: "empty", input: "", n: 5, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Excerpt(tt.input, tt.n))
		})
	}
}

func TestHasPayload(t *testing.T) {
	r := New()

	assert.True(t, r.HasPayload("hello"))
	assert.True(t, r.HasPayload("```\ncode\n```"))
	assert.False(t, r.HasPayload("   \n\n  "))
	assert.False(t, r.HasPayload("```\n```"))
	assert.False(t, r.HasPayload("<script>alert(1)</script>"))
	assert.False(t, r.HasPayload(strings.Repeat("\n", 10)))
}
