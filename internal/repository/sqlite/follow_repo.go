package sqlite

import (
	"database/sql"

	"museart-backend/internal/model"
)

// followRepository 实现了 FollowRepository 接口
type followRepository struct {
	db *DB
}

// NewFollowRepository 创建一个新的 followRepository 实例
func NewFollowRepository(db *DB) *followRepository {
	return &followRepository{db}
}

// Insert 以复合主键为准插入或覆盖一条关注边
func (r *followRepository) Insert(follow *model.FollowEntity) error {
	query := `INSERT INTO follows (follower_id, following_id, created_at)
	          VALUES (?, ?, ?)
	          ON CONFLICT(follower_id, following_id) DO UPDATE SET created_at = excluded.created_at`
	_, err := r.db.conn.Exec(query, follow.FollowerID, follow.FollowingID, follow.CreatedAt)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("follows")
	return nil
}

// Delete 删除一条关注边
func (r *followRepository) Delete(followerID, followingID string) error {
	_, err := r.db.conn.Exec(
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("follows")
	return nil
}

// Get 查找一条关注边；不存在时返回 (nil, nil)
func (r *followRepository) Get(followerID, followingID string) (*model.FollowEntity, error) {
	var f model.FollowEntity
	err := r.db.conn.QueryRow(
		`SELECT follower_id, following_id, created_at FROM follows
		 WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID).Scan(&f.FollowerID, &f.FollowingID, &f.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// Exists 判断关注边是否存在
func (r *followRepository) Exists(followerID, followingID string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
		followerID, followingID).Scan(&exists)
	return exists, err
}

// GetAll 返回全部关注边，供镜像导出使用
func (r *followRepository) GetAll() ([]model.FollowEntity, error) {
	rows, err := r.db.conn.Query(`SELECT follower_id, following_id, created_at FROM follows`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var follows []model.FollowEntity
	for rows.Next() {
		var f model.FollowEntity
		if err := rows.Scan(&f.FollowerID, &f.FollowingID, &f.CreatedAt); err != nil {
			return nil, err
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}

// Followers 返回关注了该用户的用户列表
func (r *followRepository) Followers(userID string) ([]model.UserEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT u.id, u.username, u.display_name, u.bio, u.profile_image_url,
		        u.followers_count, u.following_count, u.posts_count, u.is_verified,
		        u.email, u.password, u.created_at
		 FROM users u INNER JOIN follows f ON u.id = f.follower_id
		 WHERE f.following_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// Following 返回该用户关注的用户列表
func (r *followRepository) Following(userID string) ([]model.UserEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT u.id, u.username, u.display_name, u.bio, u.profile_image_url,
		        u.followers_count, u.following_count, u.posts_count, u.is_verified,
		        u.email, u.password, u.created_at
		 FROM users u INNER JOIN follows f ON u.id = f.following_id
		 WHERE f.follower_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}
