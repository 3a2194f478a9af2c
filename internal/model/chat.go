package model

import "time"

// ChatEntity 对应 chats 表中的一行
// 一对用户之间至多存在一个会话，user1/user2 的顺序不做约定
type ChatEntity struct {
	ID            string
	User1ID       string
	User2ID       string
	LastMessageID *string
	UnreadCount   int
	UpdatedAt     int64
}

// Chat 是反规范化后的会话视图
type Chat struct {
	ID          string    `json:"id"`
	User1ID     string    `json:"user1Id"`
	User2ID     string    `json:"user2Id"`
	User1       *User     `json:"user1,omitempty"`
	User2       *User     `json:"user2,omitempty"`
	LastMessage *Message  `json:"lastMessage,omitempty"`
	UnreadCount int       `json:"unreadCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToChat 把存储行映射为视图
func (e *ChatEntity) ToChat(user1, user2 *User, lastMessage *Message) *Chat {
	return &Chat{
		ID:          e.ID,
		User1ID:     e.User1ID,
		User2ID:     e.User2ID,
		User1:       user1,
		User2:       user2,
		LastMessage: lastMessage,
		UnreadCount: e.UnreadCount,
		UpdatedAt:   MillisToTime(e.UpdatedAt),
	}
}

// ChatEntityFromChat 由视图还原存储行，内嵌的最后一条消息只保留其外键
func ChatEntityFromChat(c *Chat) *ChatEntity {
	var lastMessageID *string
	if c.LastMessage != nil {
		id := c.LastMessage.ID
		lastMessageID = &id
	}
	return &ChatEntity{
		ID:            c.ID,
		User1ID:       c.User1ID,
		User2ID:       c.User2ID,
		LastMessageID: lastMessageID,
		UnreadCount:   c.UnreadCount,
		UpdatedAt:     c.UpdatedAt.UnixMilli(),
	}
}
