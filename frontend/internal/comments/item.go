package comments

import (
	"context"

	"github.com/forumstartup/forum/frontend/internal/notify"
	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/domain"
)

const deletePrompt = "Delete?"

// Item is the view logic of one rendered comment.
type Item struct {
	Comment state.Cell[domain.Comment]
	Editing state.Cell[bool]
	*Editor

	postId domain.PostId
	thread *Thread
}

// NewItem binds a comment of postId. thread, when set, is kept in step
// with edits and deletions.
func NewItem(c domain.Comment, postId domain.PostId, client Client, session Session, thread *Thread) *Item {
	it := &Item{
		Editor: NewEditor(client, session),
		postId: postId,
		thread: thread,
	}
	it.Comment.Set(c)
	return it
}

func (it *Item) isAdmin() bool {
	return it.session.HasRole(domain.RoleAdmin)
}

// CanEdit allows the author of a comment that is not deleted.
func (it *Item) CanEdit() bool {
	c := it.Comment.Get()
	return it.IsOwn(c) && !c.Deleted
}

// CanDelete allows the author or an administrator, while not deleted.
func (it *Item) CanDelete() bool {
	c := it.Comment.Get()
	return (it.IsOwn(c) || it.isAdmin()) && !c.Deleted
}

func (it *Item) StartEdit() {
	it.Editing.Set(true)
	it.Form.Set(Form{PostId: it.postId, Content: it.Comment.Get().Content})
}

func (it *Item) CancelEdit() {
	it.Editing.Set(false)
	it.reset()
}

// SubmitEdit saves the edit and leaves edit mode on success.
func (it *Item) SubmitEdit(ctx context.Context) (*domain.Comment, bool) {
	updated, ok := it.Edit(ctx, it.Comment.Get().Id)
	if !ok {
		return nil, false
	}
	it.Editing.Set(false)
	if updated != nil && updated.Id != 0 {
		it.Comment.Set(*updated)
		if it.thread != nil {
			it.thread.Replace(*updated)
		}
	}
	return updated, true
}

// HandleDelete deletes the comment after confirmation, through the admin
// endpoint when the user is an administrator.
func (it *Item) HandleDelete(ctx context.Context, confirm notify.Confirm) bool {
	if confirm != nil && !confirm(deletePrompt) {
		return false
	}
	id := it.Comment.Get().Id
	var ok bool
	if it.isAdmin() {
		ok = it.AdminDelete(ctx, id)
	} else {
		ok = it.Delete(ctx, id)
	}
	if !ok {
		return false
	}
	c := it.Comment.Update(func(c domain.Comment) domain.Comment {
		c.Deleted = true
		return c
	})
	if it.thread != nil {
		it.thread.Replace(c)
	}
	return true
}
