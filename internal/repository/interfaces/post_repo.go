package interfaces

import "museart-backend/internal/model"

// PostRepository 接口定义了帖子仓库应该实现的方法
type PostRepository interface {
	Insert(post *model.PostEntity) error
	Update(post *model.PostEntity) error
	Delete(id string) error
	GetByID(id string) (*model.PostEntity, error)
	GetAll() ([]model.PostEntity, error)
	GetByUserID(userID string) ([]model.PostEntity, error)
	Feed(userID string) ([]model.PostEntity, error)
	Search(query string) ([]model.PostEntity, error)
	LikesCount(postID string) (int, error)
	CommentsCount(postID string) (int, error)
	RepostsCount(postID string) (int, error)
	IsLiked(userID, postID string) (bool, error)
	IsReposted(userID, postID string) (bool, error)
	IncrementLikesCount(postID string) error
	DecrementLikesCount(postID string) error
	IncrementCommentsCount(postID string) error
	DecrementCommentsCount(postID string) error
	IncrementRepostsCount(postID string) error
	DecrementRepostsCount(postID string) error
}

// LikeRepository 接口定义了点赞仓库应该实现的方法
type LikeRepository interface {
	Insert(like *model.LikeEntity) error
	Delete(userID, postID string) error
	Get(userID, postID string) (*model.LikeEntity, error)
	Exists(userID, postID string) (bool, error)
	GetAll() ([]model.LikeEntity, error)
	GetByPostID(postID string) ([]model.LikeEntity, error)
}
