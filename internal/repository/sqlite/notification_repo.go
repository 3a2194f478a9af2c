package sqlite

import (
	"database/sql"
	"fmt"

	"museart-backend/internal/model"
)

const notificationColumns = `id, user_id, trigger_user_id, type, post_id, comment_id, created_at, is_read`

// notificationRepository 实现了 NotificationRepository 接口
type notificationRepository struct {
	db *DB
}

// NewNotificationRepository 创建一个新的 notificationRepository 实例
func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db}
}

func scanNotification(row rowScanner) (*model.NotificationEntity, error) {
	var n model.NotificationEntity
	var postID, commentID sql.NullString
	err := row.Scan(
		&n.ID, &n.UserID, &n.TriggerUserID, &n.Type, &postID, &commentID,
		&n.CreatedAt, &n.IsRead)
	if err != nil {
		return nil, err
	}
	n.PostID = nullToPtr(postID)
	n.CommentID = nullToPtr(commentID)
	return &n, nil
}

func scanNotifications(rows *sql.Rows) ([]model.NotificationEntity, error) {
	defer rows.Close()
	var notifications []model.NotificationEntity
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描通知行失败: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// Insert 以主键为准插入或覆盖一条通知
func (r *notificationRepository) Insert(notification *model.NotificationEntity) error {
	query := `INSERT INTO notifications (` + notificationColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            user_id = excluded.user_id,
	            trigger_user_id = excluded.trigger_user_id,
	            type = excluded.type,
	            post_id = excluded.post_id,
	            comment_id = excluded.comment_id,
	            created_at = excluded.created_at,
	            is_read = excluded.is_read`
	_, err := r.db.conn.Exec(query,
		notification.ID, notification.UserID, notification.TriggerUserID, notification.Type,
		ptrToNull(notification.PostID), ptrToNull(notification.CommentID),
		notification.CreatedAt, notification.IsRead)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("notifications")
	return nil
}

// Delete 删除通知
func (r *notificationRepository) Delete(id string) error {
	_, err := r.db.conn.Exec(`DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("notifications")
	return nil
}

// GetByID 通过ID查找通知；不存在时返回 (nil, nil)
func (r *notificationRepository) GetByID(id string) (*model.NotificationEntity, error) {
	row := r.db.conn.QueryRow(
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	notification, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return notification, nil
}

// GetAll 返回全部通知，供镜像导出使用
func (r *notificationRepository) GetAll() ([]model.NotificationEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT ` + notificationColumns + ` FROM notifications ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

// GetByUserID 返回发给用户的通知，按创建时间倒序
func (r *notificationRepository) GetByUserID(userID string) ([]model.NotificationEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

// Mentions 返回发给用户的提及通知
func (r *notificationRepository) Mentions(userID string) ([]model.NotificationEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? AND type = 'MENTION' ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

// MarkAsRead 将单条通知标记为已读
func (r *notificationRepository) MarkAsRead(id string) error {
	_, err := r.db.conn.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("notifications")
	return nil
}

// MarkAllAsRead 将用户的全部通知标记为已读
func (r *notificationRepository) MarkAllAsRead(userID string) error {
	_, err := r.db.conn.Exec(
		`UPDATE notifications SET is_read = 1 WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("notifications")
	return nil
}

// UnreadCount 统计用户未读通知数
func (r *notificationRepository) UnreadCount(userID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`,
		userID).Scan(&count)
	return count, err
}
