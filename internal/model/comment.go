package model

import "time"

// CommentEntity 对应 comments 表中的一行
type CommentEntity struct {
	ID         string
	PostID     string
	UserID     string
	Content    string
	CreatedAt  int64
	LikesCount int
}

// Comment 是反规范化后的评论视图
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	UserID     string    `json:"userId"`
	User       *User     `json:"user,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	LikesCount int       `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
}

// ToComment 把存储行映射为视图
func (e *CommentEntity) ToComment(user *User) *Comment {
	return &Comment{
		ID:         e.ID,
		PostID:     e.PostID,
		UserID:     e.UserID,
		User:       user,
		Content:    e.Content,
		CreatedAt:  MillisToTime(e.CreatedAt),
		LikesCount: e.LikesCount,
	}
}

// CommentEntityFromComment 由视图还原存储行
func CommentEntityFromComment(c *Comment) *CommentEntity {
	return &CommentEntity{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt.UnixMilli(),
		LikesCount: c.LikesCount,
	}
}
