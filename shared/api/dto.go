package api

import (
	"net/url"
	"strconv"
)

// Request DTOs for posts, comments and tags

type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentId *int64 `json:"parentId,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type AddTagsRequest struct {
	Tags []string `json:"tags"`
}

type RemoveTagRequest struct {
	Tag string `json:"tag"`
}

// ErrorResponse covers every error body the backend produces:
// {"error": ...}, {"error": ..., "details": ...}, {"message": ...}
// and {"errors": {field: message}}.
type ErrorResponse struct {
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
	Details string            `json:"details,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ListParams are the paging parameters of a listing. A nil field is
// left out of the query so the backend applies its own default.
type ListParams struct {
	Page        *int
	Size        *int
	Sort        *string
	SearchQuery *string
}

func (p ListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "size", p.Size)
	setString(v, "sort", p.Sort)
	setString(v, "searchQuery", p.SearchQuery)
	return v
}

// Int and String make optional parameters inline: api.ListParams{Page: api.Int(2)}.
func Int(v int) *int { return &v }

func String(v string) *string { return &v }

func setInt(v url.Values, key string, val *int) {
	if val != nil {
		v.Set(key, strconv.Itoa(*val))
	}
}

func setString(v url.Values, key string, val *string) {
	if val != nil {
		v.Set(key, *val)
	}
}
