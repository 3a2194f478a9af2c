package model

import (
	"fmt"
	"time"
)

// NotificationType 是通知类型枚举，按名称持久化
type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationComment NotificationType = "COMMENT"
	NotificationRepost  NotificationType = "REPOST"
	NotificationFollow  NotificationType = "FOLLOW"
	NotificationMention NotificationType = "MENTION"
)

// ParseNotificationType 按存储名称解析枚举；未知值视为该次操作的致命错误
func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotificationLike, NotificationComment, NotificationRepost,
		NotificationFollow, NotificationMention:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("unknown notification type: %q", s)
}

// NotificationEntity 对应 notifications 表中的一行
type NotificationEntity struct {
	ID            string
	UserID        string // 接收者
	TriggerUserID string // 触发者
	Type          string
	PostID        *string
	CommentID     *string
	CreatedAt     int64
	IsRead        bool
}

// Notification 是反规范化后的通知视图
type Notification struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	TriggerUserID string           `json:"triggerUserId"`
	TriggerUser   *User            `json:"triggerUser,omitempty"`
	Type          NotificationType `json:"type"`
	PostID        *string          `json:"postId,omitempty"`
	CommentID     *string          `json:"commentId,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	IsRead        bool             `json:"isRead"`
}

// ToNotification 把存储行映射为视图；存储的类型名不合法时整个操作失败
func (e *NotificationEntity) ToNotification(triggerUser *User) (*Notification, error) {
	typ, err := ParseNotificationType(e.Type)
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:            e.ID,
		UserID:        e.UserID,
		TriggerUserID: e.TriggerUserID,
		TriggerUser:   triggerUser,
		Type:          typ,
		PostID:        e.PostID,
		CommentID:     e.CommentID,
		CreatedAt:     MillisToTime(e.CreatedAt),
		IsRead:        e.IsRead,
	}, nil
}

// NotificationEntityFromNotification 由视图还原存储行
func NotificationEntityFromNotification(n *Notification) *NotificationEntity {
	return &NotificationEntity{
		ID:            n.ID,
		UserID:        n.UserID,
		TriggerUserID: n.TriggerUserID,
		Type:          string(n.Type),
		PostID:        n.PostID,
		CommentID:     n.CommentID,
		CreatedAt:     n.CreatedAt.UnixMilli(),
		IsRead:        n.IsRead,
	}
}
