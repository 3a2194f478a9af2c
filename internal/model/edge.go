package model

// LikeEntity 表示 (userId, postId) 点赞边，复合主键
type LikeEntity struct {
	UserID    string
	PostID    string
	CreatedAt int64
}

// CommentLikeEntity 表示 (userId, commentId) 评论点赞边，复合主键
type CommentLikeEntity struct {
	UserID    string
	CommentID string
	CreatedAt int64
}

// FollowEntity 表示有向关注边：follower 关注 following
type FollowEntity struct {
	FollowerID  string
	FollowingID string
	CreatedAt   int64
}
