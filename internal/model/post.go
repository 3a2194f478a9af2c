package model

import "time"

// PostEntity 对应 posts 表中的一行
// originalPostId 指向被转发的原帖，删除原帖时置空（SET NULL）
type PostEntity struct {
	ID             string
	UserID         string
	Content        string
	ImageURL       *string
	CreatedAt      int64
	LikesCount     int
	CommentsCount  int
	RepostsCount   int
	OriginalPostID *string
}

// Post 是反规范化后的帖子视图
// OriginalPost 只解析一层：原帖的视图不再继续解析它自己的原帖
type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	User          *User     `json:"user,omitempty"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"imageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	RepostsCount  int       `json:"repostsCount"`
	IsLiked       bool      `json:"isLiked"`
	IsReposted    bool      `json:"isReposted"`
	OriginalPost  *Post     `json:"originalPost,omitempty"`
}

// ToPost 把存储行映射为视图；未解析的关联传 nil
func (e *PostEntity) ToPost(user *User, originalPost *Post) *Post {
	return &Post{
		ID:            e.ID,
		UserID:        e.UserID,
		User:          user,
		Content:       e.Content,
		ImageURL:      e.ImageURL,
		CreatedAt:     MillisToTime(e.CreatedAt),
		LikesCount:    e.LikesCount,
		CommentsCount: e.CommentsCount,
		RepostsCount:  e.RepostsCount,
		OriginalPost:  originalPost,
	}
}

// PostEntityFromPost 由视图还原存储行，丢弃内嵌对象只保留外键
func PostEntityFromPost(p *Post) *PostEntity {
	var originalPostID *string
	if p.OriginalPost != nil {
		id := p.OriginalPost.ID
		originalPostID = &id
	}
	return &PostEntity{
		ID:             p.ID,
		UserID:         p.UserID,
		Content:        p.Content,
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt.UnixMilli(),
		LikesCount:     p.LikesCount,
		CommentsCount:  p.CommentsCount,
		RepostsCount:   p.RepostsCount,
		OriginalPostID: originalPostID,
	}
}
