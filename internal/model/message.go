package model

import "time"

// MessageEntity 对应 messages 表中的一行
type MessageEntity struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	ImageURL   *string
	CreatedAt  int64
	IsRead     bool
}

// Message 是反规范化后的私信视图
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Sender     *User     `json:"sender,omitempty"`
	Receiver   *User     `json:"receiver,omitempty"`
	Content    string    `json:"content"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	IsRead     bool      `json:"isRead"`
}

// ToMessage 把存储行映射为视图
func (e *MessageEntity) ToMessage(sender, receiver *User) *Message {
	return &Message{
		ID:         e.ID,
		SenderID:   e.SenderID,
		ReceiverID: e.ReceiverID,
		Sender:     sender,
		Receiver:   receiver,
		Content:    e.Content,
		ImageURL:   e.ImageURL,
		CreatedAt:  MillisToTime(e.CreatedAt),
		IsRead:     e.IsRead,
	}
}

// MessageEntityFromMessage 由视图还原存储行
func MessageEntityFromMessage(m *Message) *MessageEntity {
	return &MessageEntity{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		ImageURL:   m.ImageURL,
		CreatedAt:  m.CreatedAt.UnixMilli(),
		IsRead:     m.IsRead,
	}
}
