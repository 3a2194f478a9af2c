package interfaces

import "museart-backend/internal/model"

// CommentRepository 接口定义了评论仓库应该实现的方法
type CommentRepository interface {
	Insert(comment *model.CommentEntity) error
	Update(comment *model.CommentEntity) error
	Delete(id string) error
	GetByID(id string) (*model.CommentEntity, error)
	GetAll() ([]model.CommentEntity, error)
	GetByPostID(postID string) ([]model.CommentEntity, error)
	GetByUserID(userID string) ([]model.CommentEntity, error)
	LikesCount(commentID string) (int, error)
	IsLiked(userID, commentID string) (bool, error)
	IncrementLikesCount(commentID string) error
	DecrementLikesCount(commentID string) error
}

// CommentLikeRepository 接口定义了评论点赞仓库应该实现的方法
type CommentLikeRepository interface {
	Insert(like *model.CommentLikeEntity) error
	Delete(userID, commentID string) error
	Get(userID, commentID string) (*model.CommentLikeEntity, error)
	Exists(userID, commentID string) (bool, error)
}
