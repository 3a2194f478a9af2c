package interfaces

import "museart-backend/internal/model"

// UserRepository 接口定义了用户仓库应该实现的方法
type UserRepository interface {
	Insert(user *model.UserEntity) error
	Update(user *model.UserEntity) error
	Delete(id string) error
	GetByID(id string) (*model.UserEntity, error)
	GetByUsername(username string) (*model.UserEntity, error)
	GetByEmail(email string) (*model.UserEntity, error)
	GetByEmailAndPassword(email, password string) (*model.UserEntity, error)
	GetAll() ([]model.UserEntity, error)
	Search(query string) ([]model.UserEntity, error)
	FollowersCount(userID string) (int, error)
	FollowingCount(userID string) (int, error)
	PostsCount(userID string) (int, error)
	IsFollowing(followerID, followingID string) (bool, error)
}

// FollowRepository 接口定义了关注关系仓库应该实现的方法
type FollowRepository interface {
	Insert(follow *model.FollowEntity) error
	Delete(followerID, followingID string) error
	Get(followerID, followingID string) (*model.FollowEntity, error)
	Exists(followerID, followingID string) (bool, error)
	GetAll() ([]model.FollowEntity, error)
	Followers(userID string) ([]model.UserEntity, error)
	Following(userID string) ([]model.UserEntity, error)
}
