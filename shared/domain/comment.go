package domain

type Comment struct {
	Id                 CommentId  `json:"id"`
	PostId             PostId     `json:"postId"`
	ParentId           *CommentId `json:"parentId"`
	CreatorId          UserId     `json:"creatorId"`
	CreatorUsername    Username   `json:"creatorUsername"`
	Content            string     `json:"content"`
	LikesCount         int        `json:"likesCount"`
	LikedByCurrentUser bool       `json:"likedByCurrentUser,omitempty"`
	Deleted            bool       `json:"deleted"`
	DeletedAt          Timestamp  `json:"deletedAt"`
	DeletedById        *UserId    `json:"deletedById"`
	DeletedByUsername  string     `json:"deletedByUsername,omitempty"`
	CreatedAt          Timestamp  `json:"createdAt"`
	UpdatedAt          Timestamp  `json:"updatedAt"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentId != nil
}

func (c *Comment) OwnedBy(u *CurrentUser) bool {
	return c != nil && u != nil && u.Id != 0 && c.CreatorId == u.Id
}
