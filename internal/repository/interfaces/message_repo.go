package interfaces

import "museart-backend/internal/model"

// MessageRepository 接口定义了私信仓库应该实现的方法
type MessageRepository interface {
	Insert(message *model.MessageEntity) error
	Delete(id string) error
	GetByID(id string) (*model.MessageEntity, error)
	GetAll() ([]model.MessageEntity, error)
	Between(userID1, userID2 string) ([]model.MessageEntity, error)
	MarkAsRead(id string) error
	MarkAllAsRead(userID, otherUserID string) error
	UnreadCount(userID, otherUserID string) (int, error)
	TotalUnreadCount(userID string) (int, error)
}

// ChatRepository 接口定义了会话仓库应该实现的方法
type ChatRepository interface {
	Insert(chat *model.ChatEntity) error
	Delete(id string) error
	GetByID(id string) (*model.ChatEntity, error)
	GetAll() ([]model.ChatEntity, error)
	GetByUserID(userID string) ([]model.ChatEntity, error)
	Between(userID1, userID2 string) (*model.ChatEntity, error)
	UpdateUnreadCount(chatID string, unreadCount int) error
	UpdateLastMessage(chatID, messageID string, updatedAt int64) error
	IncrementUnreadCount(chatID string) error
	ResetUnreadCount(chatID string) error
}
