package comments

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/api"
	"github.com/forumstartup/forum/shared/domain"
	"github.com/forumstartup/forum/shared/validation"
)

const (
	MsgPostIdMissing = "Post ID is missing"
	MsgCreateFailed  = "Failed to post comment"
	MsgEditFailed    = "Failed to edit comment"
	MsgDeleteFailed  = "Failed to delete"
)

var errPostIdMissing = stderrors.New(MsgPostIdMissing)

// Form is a comment being written. A nil ParentId is a top-level comment.
type Form struct {
	Content  string
	PostId   domain.PostId
	ParentId *domain.CommentId
}

// IsReply reports whether the form answers another comment.
func (f Form) IsReply() bool {
	return f.ParentId != nil && *f.ParentId != 0
}

// Editor writes, edits and deletes comments.
type Editor struct {
	Form state.Cell[Form]
	*state.Tracker

	client  Client
	session Session
}

func NewEditor(client Client, session Session) *Editor {
	return &Editor{
		Tracker: state.NewTracker("comment_editor"),
		client:  client,
		session: session,
	}
}

func (e *Editor) validate(form Form) func() validation.Errors {
	return func() validation.Errors {
		return validation.CommentRules.Validate(validation.Values{validation.FieldContent: form.Content})
	}
}

func postIdPresent(form Form) func() error {
	return func() error {
		if form.PostId == 0 {
			return errPostIdMissing
		}
		return nil
	}
}

// reset clears what was typed, keeping the post.
func (e *Editor) reset() {
	e.Form.Update(func(f Form) Form {
		return Form{PostId: f.PostId}
	})
}

// Create posts the form as a new comment or reply.
func (e *Editor) Create(ctx context.Context) (*domain.Comment, bool) {
	form := e.Form.Get()
	req := api.CreateCommentRequest{Content: strings.TrimSpace(form.Content)}
	if form.IsReply() {
		parent := *form.ParentId
		req.ParentId = &parent
	}
	return state.Run(ctx, e.Tracker, state.Action[*domain.Comment]{
		Name:         "comment_create",
		Validate:     e.validate(form),
		Precondition: postIdPresent(form),
		Call: func(ctx context.Context) (*domain.Comment, error) {
			return e.client.CreateComment(ctx, form.PostId, req)
		},
		Apply:    func(*domain.Comment) { e.reset() },
		Fallback: MsgCreateFailed,
	})
}

// Edit saves the form's content over comment id.
func (e *Editor) Edit(ctx context.Context, id domain.CommentId) (*domain.Comment, bool) {
	form := e.Form.Get()
	req := api.UpdateCommentRequest{Content: strings.TrimSpace(form.Content)}
	return state.Run(ctx, e.Tracker, state.Action[*domain.Comment]{
		Name:         "comment_edit",
		Validate:     e.validate(form),
		Precondition: postIdPresent(form),
		Call: func(ctx context.Context) (*domain.Comment, error) {
			return e.client.UpdateComment(ctx, id, req)
		},
		Apply:    func(*domain.Comment) { e.reset() },
		Fallback: MsgEditFailed,
	})
}

func (e *Editor) Delete(ctx context.Context, id domain.CommentId) bool {
	return e.remove(ctx, "comment_delete", func(ctx context.Context) error { return e.client.DeleteComment(ctx, id) })
}

// AdminDelete removes any comment as an administrator.
func (e *Editor) AdminDelete(ctx context.Context, id domain.CommentId) bool {
	return e.remove(ctx, "comment_admin_delete", func(ctx context.Context) error { return e.client.AdminDeleteComment(ctx, id) })
}

func (e *Editor) remove(ctx context.Context, name string, call func(ctx context.Context) error) bool {
	_, ok := state.Run(ctx, e.Tracker, state.Action[struct{}]{
		Name:     name,
		Call:     func(ctx context.Context) (struct{}, error) { return struct{}{}, call(ctx) },
		Fallback: MsgDeleteFailed,
	})
	return ok
}

// StartReply points the form at a comment to answer.
func (e *Editor) StartReply(postId domain.PostId, parentId domain.CommentId) {
	e.Form.Set(Form{PostId: postId, ParentId: &parentId})
}

func (e *Editor) CancelReply() {
	e.reset()
}

func (e *Editor) IsOwn(c domain.Comment) bool {
	return c.OwnedBy(e.session.CurrentUser())
}

// CanDelete allows authors and administrators.
func (e *Editor) CanDelete(c domain.Comment) bool {
	if e.session.CurrentUser() == nil {
		return false
	}
	return e.IsOwn(c) || e.session.HasRole(domain.RoleAdmin)
}
