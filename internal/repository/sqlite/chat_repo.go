package sqlite

import (
	"database/sql"
	"fmt"

	"museart-backend/internal/model"
)

const chatColumns = `id, user1_id, user2_id, last_message_id, unread_count, updated_at`

// chatRepository 实现了 ChatRepository 接口
type chatRepository struct {
	db *DB
}

// NewChatRepository 创建一个新的 chatRepository 实例
func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{db}
}

func scanChat(row rowScanner) (*model.ChatEntity, error) {
	var c model.ChatEntity
	var lastMessageID sql.NullString
	err := row.Scan(
		&c.ID, &c.User1ID, &c.User2ID, &lastMessageID, &c.UnreadCount, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.LastMessageID = nullToPtr(lastMessageID)
	return &c, nil
}

func scanChats(rows *sql.Rows) ([]model.ChatEntity, error) {
	defer rows.Close()
	var chats []model.ChatEntity
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描会话行失败: %w", err)
		}
		chats = append(chats, *c)
	}
	return chats, rows.Err()
}

// Insert 以主键为准插入或覆盖一个会话
func (r *chatRepository) Insert(chat *model.ChatEntity) error {
	query := `INSERT INTO chats (` + chatColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            user1_id = excluded.user1_id,
	            user2_id = excluded.user2_id,
	            last_message_id = excluded.last_message_id,
	            unread_count = excluded.unread_count,
	            updated_at = excluded.updated_at`
	_, err := r.db.conn.Exec(query,
		chat.ID, chat.User1ID, chat.User2ID, ptrToNull(chat.LastMessageID),
		chat.UnreadCount, chat.UpdatedAt)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("chats")
	return nil
}

// Delete 删除会话
func (r *chatRepository) Delete(id string) error {
	_, err := r.db.conn.Exec(`DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("chats")
	return nil
}

// GetByID 通过ID查找会话；不存在时返回 (nil, nil)
func (r *chatRepository) GetByID(id string) (*model.ChatEntity, error) {
	row := r.db.conn.QueryRow(`SELECT `+chatColumns+` FROM chats WHERE id = ?`, id)
	chat, err := scanChat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return chat, nil
}

// GetAll 返回全部会话，供镜像导出使用
func (r *chatRepository) GetAll() ([]model.ChatEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT ` + chatColumns + ` FROM chats ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanChats(rows)
}

// GetByUserID 返回用户参与的会话，按更新时间倒序
func (r *chatRepository) GetByUserID(userID string) ([]model.ChatEntity, error) {
	rows, err := r.db.conn.Query(
		`SELECT `+chatColumns+` FROM chats
		 WHERE user1_id = ? OR user2_id = ?
		 ORDER BY updated_at DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	return scanChats(rows)
}

// Between 查找两个用户之间的会话，两个方向都要查；不存在时返回 (nil, nil)
func (r *chatRepository) Between(userID1, userID2 string) (*model.ChatEntity, error) {
	row := r.db.conn.QueryRow(
		`SELECT `+chatColumns+` FROM chats
		 WHERE (user1_id = ? AND user2_id = ?)
		    OR (user1_id = ? AND user2_id = ?)`,
		userID1, userID2, userID2, userID1)
	chat, err := scanChat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return chat, nil
}

// UpdateUnreadCount 直接写入未读计数
func (r *chatRepository) UpdateUnreadCount(chatID string, unreadCount int) error {
	_, err := r.db.conn.Exec(
		`UPDATE chats SET unread_count = ? WHERE id = ?`, unreadCount, chatID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("chats")
	return nil
}

// UpdateLastMessage 更新会话的最后一条消息和更新时间
func (r *chatRepository) UpdateLastMessage(chatID, messageID string, updatedAt int64) error {
	_, err := r.db.conn.Exec(
		`UPDATE chats SET last_message_id = ?, updated_at = ? WHERE id = ?`,
		messageID, updatedAt, chatID)
	if err != nil {
		return err
	}
	r.db.notifier.Notify("chats")
	return nil
}

// IncrementUnreadCount 在单个事务内完成读-改-写；会话不存在时静默空操作
func (r *chatRepository) IncrementUnreadCount(chatID string) error {
	tx, err := r.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT unread_count FROM chats WHERE id = ?`, chatID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return tx.Commit()
		}
		return err
	}

	_, err = tx.Exec(`UPDATE chats SET unread_count = ? WHERE id = ?`, current+1, chatID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	r.db.notifier.Notify("chats")
	return nil
}

// ResetUnreadCount 将未读计数清零
func (r *chatRepository) ResetUnreadCount(chatID string) error {
	return r.UpdateUnreadCount(chatID, 0)
}
