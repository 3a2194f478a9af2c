package interfaces

import "museart-backend/internal/model"

// NotificationRepository 接口定义了通知仓库应该实现的方法
type NotificationRepository interface {
	Insert(notification *model.NotificationEntity) error
	Delete(id string) error
	GetByID(id string) (*model.NotificationEntity, error)
	GetAll() ([]model.NotificationEntity, error)
	GetByUserID(userID string) ([]model.NotificationEntity, error)
	Mentions(userID string) ([]model.NotificationEntity, error)
	MarkAsRead(id string) error
	MarkAllAsRead(userID string) error
	UnreadCount(userID string) (int, error)
}

// ChangeFeed 接口对外暴露表级变更订阅
type ChangeFeed interface {
	Subscribe(tables ...string) (<-chan struct{}, func())
}
