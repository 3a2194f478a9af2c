package model

import "time"

// UserEntity 对应 users 表中的一行
// 注意：密码以明文存储，仅为演示目的（原系统的既定简化）
type UserEntity struct {
	ID              string
	Username        string
	DisplayName     string
	Bio             string
	ProfileImageURL string
	FollowersCount  int
	FollowingCount  int
	PostsCount      int
	IsVerified      bool
	Email           string
	Password        string
	CreatedAt       int64 // Unix 毫秒
}

// User 是反规范化后的用户视图，不携带凭据
type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	Bio             string `json:"bio"`
	ProfileImageURL string `json:"profileImageUrl"`
	FollowersCount  int    `json:"followersCount"`
	FollowingCount  int    `json:"followingCount"`
	PostsCount      int    `json:"postsCount"`
	IsVerified      bool   `json:"isVerified"`
	IsFollowing     bool   `json:"isFollowing"`
}

// ToUser 把存储行映射为视图
func (e *UserEntity) ToUser() *User {
	return &User{
		ID:              e.ID,
		Username:        e.Username,
		DisplayName:     e.DisplayName,
		Bio:             e.Bio,
		ProfileImageURL: e.ProfileImageURL,
		FollowersCount:  e.FollowersCount,
		FollowingCount:  e.FollowingCount,
		PostsCount:      e.PostsCount,
		IsVerified:      e.IsVerified,
	}
}

// UserEntityFromUser 由视图还原存储行；视图不含凭据，由调用方补齐
func UserEntityFromUser(u *User, email, password string) *UserEntity {
	return &UserEntity{
		ID:              u.ID,
		Username:        u.Username,
		DisplayName:     u.DisplayName,
		Bio:             u.Bio,
		ProfileImageURL: u.ProfileImageURL,
		FollowersCount:  u.FollowersCount,
		FollowingCount:  u.FollowingCount,
		PostsCount:      u.PostsCount,
		IsVerified:      u.IsVerified,
		Email:           email,
		Password:        password,
		CreatedAt:       NowMillis(),
	}
}

// NowMillis 返回当前 Unix 毫秒时间戳
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime 把 Unix 毫秒转换为 time.Time
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
