package sqlite

import (
	"database/sql"

	"museart-backend/internal/model"
)

// commentLikeRepository 实现了 CommentLikeRepository 接口
type commentLikeRepository struct {
	db *DB
}

// NewCommentLikeRepository 创建一个新的 commentLikeRepository 实例
func NewCommentLikeRepository(db *DB) *commentLikeRepository {
	return &commentLikeRepository{db}
}

// Insert 以复合主键为准插入或覆盖一条评论点赞边
func (r *commentLikeRepository) Insert(like *model.CommentLikeEntity) error {
	query := `INSERT INTO comment_likes (user_id, comment_id, created_at)
	          VALUES (?, ?, ?)
	          ON CONFLICT(user_id, comment_id) DO UPDATE SET created_at = excluded.created_at`
	_, err := r.db.conn.Exec(query, like.UserID, like.CommentID, like.CreatedAt)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("comment_likes")
	return nil
}

// Delete 删除一条评论点赞边
func (r *commentLikeRepository) Delete(userID, commentID string) error {
	_, err := r.db.conn.Exec(
		`DELETE FROM comment_likes WHERE user_id = ? AND comment_id = ?`, userID, commentID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("comment_likes")
	return nil
}

// Get 查找一条评论点赞边；不存在时返回 (nil, nil)
func (r *commentLikeRepository) Get(userID, commentID string) (*model.CommentLikeEntity, error) {
	var l model.CommentLikeEntity
	err := r.db.conn.QueryRow(
		`SELECT user_id, comment_id, created_at FROM comment_likes
		 WHERE user_id = ? AND comment_id = ?`,
		userID, commentID).Scan(&l.UserID, &l.CommentID, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Exists 判断评论点赞边是否存在
func (r *commentLikeRepository) Exists(userID, commentID string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM comment_likes WHERE user_id = ? AND comment_id = ?)`,
		userID, commentID).Scan(&exists)
	return exists, err
}
