package domain

type Post struct {
	Id                 PostId    `json:"postId"`
	CreatorId          UserId    `json:"creatorId"`
	CreatorUsername    Username  `json:"creatorUsername"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	LikesCount         int       `json:"likesCount"`
	LikedByCurrentUser bool      `json:"likedByCurrentUser"`
	Tags               []TagName `json:"tags,omitempty"`
	CreatedAt          Timestamp `json:"createdAt"`
	UpdatedAt          Timestamp `json:"updatedAt"`
}

func (p *Post) OwnedBy(u *CurrentUser) bool {
	return p != nil && u != nil && u.Id != 0 && p.CreatorId == u.Id
}
