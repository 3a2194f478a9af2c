package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB 持有进程内唯一的 SQLite 连接和表变更通知器。
// 由组装根显式构造并注入各仓库，不做全局单例。
type DB struct {
	conn     *sql.DB
	notifier *Notifier
}

// Open 打开（或创建）给定路径的 SQLite 数据库并建表。
// 打开时启用外键约束，级联删除与置空由数据库引擎执行。
func Open(path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	normalized := filepath.ToSlash(path)
	dsn := "file:" + normalized + "?cache=shared" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	d := &DB{conn: conn, notifier: NewNotifier()}
	if err := d.createSchema(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Subscribe 订阅给定表的变更信号；返回的取消函数必须被调用以释放监听者
func (d *DB) Subscribe(tables ...string) (<-chan struct{}, func()) {
	return d.notifier.Subscribe(tables...)
}

// Reset 删除所有表并重建。唯一的"迁移"策略就是整库重置。
func (d *DB) Reset() error {
	// 先删子表再删父表
	tables := []string{
		"chats", "messages", "notifications", "follows",
		"comment_likes", "likes", "comments", "posts", "users",
	}
	for _, t := range tables {
		if _, err := d.conn.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return fmt.Errorf("删除表 %s 失败: %w", t, err)
		}
	}
	if err := d.createSchema(); err != nil {
		return err
	}
	d.notifier.Notify(tables...)
	return nil
}

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			profile_image_url TEXT NOT NULL DEFAULT '',
			followers_count INTEGER NOT NULL DEFAULT 0,
			following_count INTEGER NOT NULL DEFAULT 0,
			posts_count INTEGER NOT NULL DEFAULT 0,
			is_verified INTEGER NOT NULL DEFAULT 0,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			image_url TEXT,
			created_at INTEGER NOT NULL,
			likes_count INTEGER NOT NULL DEFAULT 0,
			comments_count INTEGER NOT NULL DEFAULT 0,
			reposts_count INTEGER NOT NULL DEFAULT 0,
			original_post_id TEXT REFERENCES posts(id) ON DELETE SET NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_original_post_id ON posts(original_post_id);`,

		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			likes_count INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id);`,

		`CREATE TABLE IF NOT EXISTS likes (
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, post_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_likes_post_id ON likes(post_id);`,

		`CREATE TABLE IF NOT EXISTS comment_likes (
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			comment_id TEXT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, comment_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comment_likes_comment_id ON comment_likes(comment_id);`,

		`CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			following_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (follower_id, following_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_follows_following_id ON follows(following_id);`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			trigger_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			post_id TEXT,
			comment_id TEXT,
			created_at INTEGER NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_trigger_user_id ON notifications(trigger_user_id);`,

		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			image_url TEXT,
			created_at INTEGER NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender_id ON messages(sender_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver_id ON messages(receiver_id);`,

		`CREATE TABLE IF NOT EXISTS chats (
			id TEXT PRIMARY KEY,
			user1_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user2_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			last_message_id TEXT REFERENCES messages(id) ON DELETE SET NULL,
			unread_count INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user1_id ON chats(user1_id);`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user2_id ON chats(user2_id);`,
		`CREATE INDEX IF NOT EXISTS idx_chats_last_message_id ON chats(last_message_id);`,
	}

	for _, stmt := range stmts {
		if _, err := d.conn.Exec(stmt); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}
	return nil
}
