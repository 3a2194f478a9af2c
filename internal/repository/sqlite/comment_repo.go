package sqlite

import (
	"database/sql"
	"fmt"

	"museart-backend/internal/model"
)

const commentColumns = `id, post_id, user_id, content, created_at, likes_count`

// commentRepository 实现了 CommentRepository 接口
type commentRepository struct {
	db *DB
}

// NewCommentRepository 创建一个新的 commentRepository 实例
func NewCommentRepository(db *DB) *commentRepository {
	return &commentRepository{db}
}

func scanComment(row rowScanner) (*model.CommentEntity, error) {
	var c model.CommentEntity
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.LikesCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComments(rows *sql.Rows) ([]model.CommentEntity, error) {
	defer rows.Close()
	var comments []model.CommentEntity
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描评论行失败: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// Insert 以主键为准插入或覆盖一条评论
func (r *commentRepository) Insert(comment *model.CommentEntity) error {
	query := `INSERT INTO comments (` + commentColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            post_id = excluded.post_id,
	            user_id = excluded.user_id,
	            content = excluded.content,
	            created_at = excluded.created_at,
	            likes_count = excluded.likes_count`
	_, err := r.db.conn.Exec(query,
		comment.ID, comment.PostID, comment.UserID, comment.Content,
		comment.CreatedAt, comment.LikesCount)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("comments")
	return nil
}

// Update 更新评论；主键不存在时静默变为空操作
func (r *commentRepository) Update(comment *model.CommentEntity) error {
	query := `UPDATE comments SET post_id = ?, user_id = ?, content = ?, created_at = ?,
	          likes_count = ? WHERE id = ?`
	_, err := r.db.conn.Exec(query,
		comment.PostID, comment.UserID, comment.Content, comment.CreatedAt,
		comment.LikesCount, comment.ID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("comments")
	return nil
}

// Delete 删除评论，其点赞级联删除
func (r *commentRepository) Delete(id string) error {
	_, err := r.db.conn.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("comments", "comment_likes")
	return nil
}

// GetByID 通过ID查找评论；不存在时返回 (nil, nil)
func (r *commentRepository) GetByID(id string) (*model.CommentEntity, error) {
	row := r.db.conn.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	comment, err := scanComment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return comment, nil
}

// GetAll 返回全部评论，按创建时间倒序
func (r *commentRepository) GetAll() ([]model.CommentEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT ` + commentColumns + ` FROM comments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}

// GetByPostID 返回帖子下的评论，按创建时间倒序
func (r *commentRepository) GetByPostID(postID string) ([]model.CommentEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY created_at DESC`,
		postID)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}

// GetByUserID 返回用户发表的评论，按创建时间倒序
func (r *commentRepository) GetByUserID(userID string) ([]model.CommentEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+commentColumns+` FROM comments WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}

// LikesCount 从评论点赞边实时统计
func (r *commentRepository) LikesCount(commentID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?`, commentID).Scan(&count)
	return count, err
}

// IsLiked 判断用户是否点赞过该评论
func (r *commentRepository) IsLiked(userID, commentID string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM comment_likes WHERE user_id = ? AND comment_id = ?)`,
		userID, commentID).Scan(&exists)
	return exists, err
}

// bumpLikesCount 在单个事务内完成读-改-写；递减不做下界保护
func (r *commentRepository) bumpLikesCount(commentID string, delta int) error {
	tx, err := r.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT likes_count FROM comments WHERE id = ?`, commentID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return tx.Commit()
		}
		return err
	}

	_, err = tx.Exec(`UPDATE comments SET likes_count = ? WHERE id = ?`, current+delta, commentID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	r.db.notifier.Notify("comments")
	return nil
}

func (r *commentRepository) IncrementLikesCount(commentID string) error {
	return r.bumpLikesCount(commentID, 1)
}

func (r *commentRepository) DecrementLikesCount(commentID string) error {
	return r.bumpLikesCount(commentID, -1)
}
