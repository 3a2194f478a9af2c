package sqlite

import (
	"database/sql"
	"fmt"

	"museart-backend/internal/model"
	"museart-backend/internal/util"

	"go.uber.org/zap"
)

const postColumns = `id, user_id, content, image_url, created_at,
	likes_count, comments_count, reposts_count, original_post_id`

// postRepository 实现了 PostRepository 接口
type postRepository struct {
	db *DB
}

// NewPostRepository 创建一个新的 postRepository 实例
func NewPostRepository(db *DB) *postRepository {
	return &postRepository{db}
}

func scanPost(row rowScanner) (*model.PostEntity, error) {
	var p model.PostEntity
	var imageURL, originalPostID sql.NullString
	err := row.Scan(
		&p.ID, &p.UserID, &p.Content, &imageURL, &p.CreatedAt,
		&p.LikesCount, &p.CommentsCount, &p.RepostsCount, &originalPostID,
	)
	if err != nil {
		return nil, err
	}
	p.ImageURL = nullToPtr(imageURL)
	p.OriginalPostID = nullToPtr(originalPostID)
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]model.PostEntity, error) {
	defer rows.Close()
	var posts []model.PostEntity
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描帖子行失败: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// Insert 以主键为准插入或覆盖一个帖子
func (r *postRepository) Insert(post *model.PostEntity) error {
	query := `INSERT INTO posts (` + postColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            user_id = excluded.user_id,
	            content = excluded.content,
	            image_url = excluded.image_url,
	            created_at = excluded.created_at,
	            likes_count = excluded.likes_count,
	            comments_count = excluded.comments_count,
	            reposts_count = excluded.reposts_count,
	            original_post_id = excluded.original_post_id`
	_, err := r.db.conn.Exec(query,
		post.ID, post.UserID, post.Content, ptrToNull(post.ImageURL), post.CreatedAt,
		post.LikesCount, post.CommentsCount, post.RepostsCount, ptrToNull(post.OriginalPostID))
	if err != nil {
		util.Logger.Error("插入帖子失败", zap.Error(err), zap.String("post_id", post.ID))
		return err
	}
	r.db.notifier.Notify("posts")
	return nil
}

// Update 更新帖子；主键不存在时静默变为空操作
func (r *postRepository) Update(post *model.PostEntity) error {
	query := `UPDATE posts SET user_id = ?, content = ?, image_url = ?, created_at = ?,
	          likes_count = ?, comments_count = ?, reposts_count = ?, original_post_id = ?
	          WHERE id = ?`
	_, err := r.db.conn.Exec(query,
		post.UserID, post.Content, ptrToNull(post.ImageURL), post.CreatedAt,
		post.LikesCount, post.CommentsCount, post.RepostsCount,
		ptrToNull(post.OriginalPostID), post.ID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("posts")
	return nil
}

// Delete 删除帖子，评论和点赞级联删除，指向它的转发的 original_post_id 被置空
func (r *postRepository) Delete(id string) error {
	_, err := r.db.conn.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.String("post_id", id))
		return err
	}
	r.db.notifier.Notify("posts", "comments", "likes", "comment_likes")
	return nil
}

// GetByID 通过ID查找帖子；不存在时返回 (nil, nil)
func (r *postRepository) GetByID(id string) (*model.PostEntity, error) {
	row := r.db.conn.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// GetAll 返回全部帖子，按创建时间倒序
func (r *postRepository) GetAll() ([]model.PostEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// GetByUserID 返回指定用户的帖子，按创建时间倒序
func (r *postRepository) GetByUserID(userID string) ([]model.PostEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+postColumns+` FROM posts WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// Feed 返回用户关注对象的帖子，按创建时间倒序
func (r *postRepository) Feed(userID string) ([]model.PostEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT p.id, p.user_id, p.content, p.image_url, p.created_at,
		        p.likes_count, p.comments_count, p.reposts_count, p.original_post_id
		 FROM posts p
		 INNER JOIN follows f ON p.user_id = f.following_id
		 WHERE f.follower_id = ?
		 ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// Search 按内容模糊搜索
func (r *postRepository) Search(query string) ([]model.PostEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+postColumns+` FROM posts WHERE content LIKE ? ORDER BY created_at DESC`,
		"%"+query+"%")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// LikesCount 从点赞边实时统计
func (r *postRepository) LikesCount(postID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&count)
	return count, err
}

// CommentsCount 实时统计帖子的评论数
func (r *postRepository) CommentsCount(postID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&count)
	return count, err
}

// RepostsCount 实时统计帖子的转发数
func (r *postRepository) RepostsCount(postID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM posts WHERE original_post_id = ?`, postID).Scan(&count)
	return count, err
}

// IsLiked 判断用户是否点赞过该帖子
func (r *postRepository) IsLiked(userID, postID string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = ? AND post_id = ?)`,
		userID, postID).Scan(&exists)
	return exists, err
}

// IsReposted 判断用户是否转发过该帖子
func (r *postRepository) IsReposted(userID, postID string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM posts WHERE user_id = ? AND original_post_id = ?)`,
		userID, postID).Scan(&exists)
	return exists, err
}

// bumpCounter 在单个事务内完成读-改-写，保证并发下计数不丢失。
// 行不存在时提交空事务，保持与 update 一致的静默语义。
// 递减不做下界保护，沿用原系统行为。
func (r *postRepository) bumpCounter(postID, column string, delta int) error {
	tx, err := r.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(
		`SELECT `+column+` FROM posts WHERE id = ?`, postID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return tx.Commit()
		}
		return err
	}

	_, err = tx.Exec(`UPDATE posts SET `+column+` = ? WHERE id = ?`, current+delta, postID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	r.db.notifier.Notify("posts")
	return nil
}

func (r *postRepository) IncrementLikesCount(postID string) error {
	return r.bumpCounter(postID, "likes_count", 1)
}

func (r *postRepository) DecrementLikesCount(postID string) error {
	return r.bumpCounter(postID, "likes_count", -1)
}

func (r *postRepository) IncrementCommentsCount(postID string) error {
	return r.bumpCounter(postID, "comments_count", 1)
}

func (r *postRepository) DecrementCommentsCount(postID string) error {
	return r.bumpCounter(postID, "comments_count", -1)
}

func (r *postRepository) IncrementRepostsCount(postID string) error {
	return r.bumpCounter(postID, "reposts_count", 1)
}

func (r *postRepository) DecrementRepostsCount(postID string) error {
	return r.bumpCounter(postID, "reposts_count", -1)
}
