package sqlite

import (
	"database/sql"
	"fmt"

	"museart-backend/internal/model"
	"museart-backend/internal/util"

	"go.uber.org/zap"
)

const userColumns = `id, username, display_name, bio, profile_image_url,
	followers_count, following_count, posts_count, is_verified, email, password, created_at`

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.UserEntity, error) {
	var u model.UserEntity
	err := row.Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.Bio, &u.ProfileImageURL,
		&u.FollowersCount, &u.FollowingCount, &u.PostsCount, &u.IsVerified,
		&u.Email, &u.Password, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUsers(rows *sql.Rows) ([]model.UserEntity, error) {
	defer rows.Close()
	var users []model.UserEntity
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描用户行失败: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Insert 以主键为准插入或覆盖一个用户
func (r *userRepository) Insert(user *model.UserEntity) error {
	query := `INSERT INTO users (` + userColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            username = excluded.username,
	            display_name = excluded.display_name,
	            bio = excluded.bio,
	            profile_image_url = excluded.profile_image_url,
	            followers_count = excluded.followers_count,
	            following_count = excluded.following_count,
	            posts_count = excluded.posts_count,
	            is_verified = excluded.is_verified,
	            email = excluded.email,
	            password = excluded.password,
	            created_at = excluded.created_at`
	_, err := r.db.conn.Exec(query,
		user.ID, user.Username, user.DisplayName, user.Bio, user.ProfileImageURL,
		user.FollowersCount, user.FollowingCount, user.PostsCount, user.IsVerified,
		user.Email, user.Password, user.CreatedAt)
	if err != nil {
		util.Logger.Error("插入用户失败", zap.Error(err), zap.String("user_id", user.ID))
		return err
	}
	r.db.notifier.Notify("users")
	return nil
}

// Update 更新用户；主键不存在时静默变为空操作
func (r *userRepository) Update(user *model.UserEntity) error {
	query := `UPDATE users SET username = ?, display_name = ?, bio = ?, profile_image_url = ?,
	          followers_count = ?, following_count = ?, posts_count = ?, is_verified = ?,
	          email = ?, password = ?, created_at = ?
	          WHERE id = ?`
	_, err := r.db.conn.Exec(query,
		user.Username, user.DisplayName, user.Bio, user.ProfileImageURL,
		user.FollowersCount, user.FollowingCount, user.PostsCount, user.IsVerified,
		user.Email, user.Password, user.CreatedAt, user.ID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("users")
	return nil
}

// Delete 删除用户，其帖子、评论、点赞、关注、消息、会话、通知随之级联删除
func (r *userRepository) Delete(id string) error {
	_, err := r.db.conn.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.String("user_id", id))
		return err
	}
	// 级联触及的所有表都要广播
	r.db.notifier.Notify("users", "posts", "comments", "likes", "comment_likes",
		"follows", "messages", "chats", "notifications")
	return nil
}

// GetByID 通过ID查找用户；不存在时返回 (nil, nil)
func (r *userRepository) GetByID(id string) (*model.UserEntity, error) {
	row := r.db.conn.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername 通过用户名查找用户
func (r *userRepository) GetByUsername(username string) (*model.UserEntity, error) {
	row := r.db.conn.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail 通过邮箱查找用户
func (r *userRepository) GetByEmail(email string) (*model.UserEntity, error) {
	row := r.db.conn.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByEmailAndPassword 按邮箱和密码匹配用户，用于登录
func (r *userRepository) GetByEmailAndPassword(email, password string) (*model.UserEntity, error) {
	row := r.db.conn.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = ? AND password = ?`, email, password)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetAll 返回全部用户
func (r *userRepository) GetAll() ([]model.UserEntity, error) {
	rows, err := r.db.conn.Query(`SELECT ` + userColumns + ` FROM users`)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// Search 按用户名或昵称模糊搜索
func (r *userRepository) Search(query string) ([]model.UserEntity, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.conn.Query(
		`SELECT `+userColumns+` FROM users WHERE username LIKE ? OR display_name LIKE ?`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// FollowersCount 从关注边实时统计粉丝数，不读缓存列
func (r *userRepository) FollowersCount(userID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM follows WHERE following_id = ?`, userID).Scan(&count)
	return count, err
}

// FollowingCount 从关注边实时统计关注数
func (r *userRepository) FollowingCount(userID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID).Scan(&count)
	return count, err
}

// PostsCount 实时统计用户发帖数
func (r *userRepository) PostsCount(userID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM posts WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

// IsFollowing 判断 follower 是否关注了 following
func (r *userRepository) IsFollowing(followerID, followingID string) (bool, error) {
	var exists bool
	err := r.db.conn.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND following_id = ?)`,
		followerID, followingID).Scan(&exists)
	return exists, err
}
