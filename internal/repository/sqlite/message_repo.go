package sqlite

import (
	"database/sql"
	"fmt"

	"museart-backend/internal/model"
)

const messageColumns = `id, sender_id, receiver_id, content, image_url, created_at, is_read`

// messageRepository 实现了 MessageRepository 接口
type messageRepository struct {
	db *DB
}

// NewMessageRepository 创建一个新的 messageRepository 实例
func NewMessageRepository(db *DB) *messageRepository {
	return &messageRepository{db}
}

func scanMessage(row rowScanner) (*model.MessageEntity, error) {
	var m model.MessageEntity
	var imageURL sql.NullString
	err := row.Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &imageURL, &m.CreatedAt, &m.IsRead)
	if err != nil {
		return nil, err
	}
	m.ImageURL = nullToPtr(imageURL)
	return &m, nil
}

func scanMessages(rows *sql.Rows) ([]model.MessageEntity, error) {
	defer rows.Close()
	var messages []model.MessageEntity
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描消息行失败: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// Insert 以主键为准插入或覆盖一条消息
func (r *messageRepository) Insert(message *model.MessageEntity) error {
	query := `INSERT INTO messages (` + messageColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            sender_id = excluded.sender_id,
	            receiver_id = excluded.receiver_id,
	            content = excluded.content,
	            image_url = excluded.image_url,
	            created_at = excluded.created_at,
	            is_read = excluded.is_read`
	_, err := r.db.conn.Exec(query,
		message.ID, message.SenderID, message.ReceiverID, message.Content,
		ptrToNull(message.ImageURL), message.CreatedAt, message.IsRead)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("messages")
	return nil
}

// Delete 删除消息，引用它的会话 last_message_id 被置空
func (r *messageRepository) Delete(id string) error {
	_, err := r.db.conn.Exec(`DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("messages", "chats")
	return nil
}

// GetByID 通过ID查找消息；不存在时返回 (nil, nil)
func (r *messageRepository) GetByID(id string) (*model.MessageEntity, error) {
	row := r.db.conn.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	message, err := scanMessage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return message, nil
}

// GetAll 返回全部消息，供镜像导出使用
func (r *messageRepository) GetAll() ([]model.MessageEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT ` + messageColumns + ` FROM messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// Between 返回两个用户之间的全部消息，按创建时间倒序
func (r *messageRepository) Between(userID1, userID2 string) ([]model.MessageEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+messageColumns+` FROM messages
		 WHERE (sender_id = ? AND receiver_id = ?)
		    OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY created_at DESC`,
		userID1, userID2, userID2, userID1)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// MarkAsRead 将单条消息标记为已读
func (r *messageRepository) MarkAsRead(id string) error {
	_, err := r.db.conn.Exec(`UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("messages")
	return nil
}

// MarkAllAsRead 将 otherUser 发给 user 的全部消息标记为已读
func (r *messageRepository) MarkAllAsRead(userID, otherUserID string) error {
	_, err := r.db.conn.Exec(
		`UPDATE messages SET is_read = 1 WHERE receiver_id = ? AND sender_id = ?`,
		userID, otherUserID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("messages")
	return nil
}

// UnreadCount 统计 otherUser 发给 user 的未读消息数
func (r *messageRepository) UnreadCount(userID, otherUserID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND sender_id = ? AND is_read = 0`,
		userID, otherUserID).Scan(&count)
	return count, err
}

// TotalUnreadCount 统计用户收到的全部未读消息数
func (r *messageRepository) TotalUnreadCount(userID string) (int, error) {
	var count int
	err := r.db.conn.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = 0`,
		userID).Scan(&count)
	return count, err
}
