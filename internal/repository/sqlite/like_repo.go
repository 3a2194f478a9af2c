package sqlite

import (
	"database/sql"

	"museart-backend/internal/model"
)

// likeRepository 实现了 LikeRepository 接口
type likeRepository struct {
	db *DB
}

// NewLikeRepository 创建一个新的 likeRepository 实例
func NewLikeRepository(db *DB) *likeRepository {
	return &likeRepository{db}
}

// Insert 以复合主键为准插入或覆盖一条点赞边
func (r *likeRepository) Insert(like *model.LikeEntity) error {
	query := `INSERT INTO likes (user_id, post_id, created_at)
	          VALUES (?, ?, ?)
	          ON CONFLICT(user_id, post_id) DO UPDATE SET created_at = excluded.created_at`
	_, err := r.db.conn.Exec(query, like.UserID, like.PostID, like.CreatedAt)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("likes")
	return nil
}

// Delete 删除一条点赞边
func (r *likeRepository) Delete(userID, postID string) error {
	_, err := r.db.conn.Exec(
		`DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("likes")
	return nil
}

// Get 查找一条点赞边；不存在时返回 (nil, nil)
func (r *likeRepository) Get(userID, postID string) (*model.LikeEntity, error) {
	var l model.LikeEntity
	err := r.db.conn.QueryRow(
		`SELECT user_id, post_id, created_at FROM likes WHERE user_id = ? AND post_id = ?`,
		userID, postID).Scan(&l.UserID, &l.PostID, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Exists 判断点赞边是否存在
func (r *likeRepository) Exists(userID, postID string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = ? AND post_id = ?)`,
		userID, postID).Scan(&exists)
	return exists, err
}

// GetAll 返回全部点赞边，供镜像导出使用
func (r *likeRepository) GetAll() ([]model.LikeEntity, error) {
	rows, err := r.db.conn.Query(`SELECT user_id, post_id, created_at FROM likes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []model.LikeEntity
	for rows.Next() {
		var l model.LikeEntity
		if err := rows.Scan(&l.UserID, &l.PostID, &l.CreatedAt); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// GetByPostID 返回帖子收到的点赞边
func (r *likeRepository) GetByPostID(postID string) ([]model.LikeEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT user_id, post_id, created_at FROM likes WHERE post_id = ?`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []model.LikeEntity
	for rows.Next() {
		var l model.LikeEntity
		if err := rows.Scan(&l.UserID, &l.PostID, &l.CreatedAt); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}
