package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"museart-backend/internal/errors"
	"museart-backend/internal/model"
	"museart-backend/internal/repository/interfaces"
	"museart-backend/internal/util"
)

// NotificationService 处理通知的读取与已读状态
type NotificationService struct {
	notificationRepo interfaces.NotificationRepository
	userRepo         interfaces.UserRepository
	changes          interfaces.ChangeFeed
}

// NewNotificationService 创建一个新的 NotificationService 实例
func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	userRepo interfaces.UserRepository,
	changes interfaces.ChangeFeed,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		changes:          changes,
	}
}

// CreateNotification 写入一条通知，收信人和触发方都必须存在
func (s *NotificationService) CreateNotification(userID, triggerUserID string, notificationType model.NotificationType, postID, commentID *string) error {
	for _, id := range []string{userID, triggerUserID} {
		user, err := s.userRepo.GetByID(id)
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "failed to load user", err)
		}
		if user == nil {
			return errors.New(errors.ErrUserNotFound, "user not found")
		}
	}
	entity := &model.NotificationEntity{
		ID:            uuid.NewString(),
		UserID:        userID,
		TriggerUserID: triggerUserID,
		Type:          string(notificationType),
		PostID:        postID,
		CommentID:     commentID,
		CreatedAt:     model.NowMillis(),
	}
	if err := s.notificationRepo.Insert(entity); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to create notification", err)
	}
	return nil
}

// GetNotificationByID 通过ID查找通知
func (s *NotificationService) GetNotificationByID(id string) (*model.Notification, error) {
	entity, err := s.notificationRepo.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load notification", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrNotificationNotFound, "notification not found")
	}
	trigger, err := s.userRepo.GetByID(entity.TriggerUserID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load trigger user", err)
	}
	var triggerView *model.User
	if trigger != nil {
		triggerView = trigger.ToUser()
	}
	notification, err := entity.ToNotification(triggerView)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "corrupt notification type", err)
	}
	return notification, nil
}

// Delete 删除一条通知
func (s *NotificationService) Delete(id string) error {
	entity, err := s.notificationRepo.GetByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load notification", err)
	}
	if entity == nil {
		return errors.New(errors.ErrNotificationNotFound, "notification not found")
	}
	if err := s.notificationRepo.Delete(id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete notification", err)
	}
	return nil
}

// UserNotifications 返回发给用户的通知，按时间倒序。
// 类型名损坏的行跳过并记日志，不让整个列表失败。
func (s *NotificationService) UserNotifications(userID string) ([]model.Notification, error) {
	entities, err := s.notificationRepo.GetByUserID(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load notifications", err)
	}
	return s.resolveNotifications(entities)
}

// Mentions 返回发给用户的提及通知
func (s *NotificationService) Mentions(userID string) ([]model.Notification, error) {
	entities, err := s.notificationRepo.Mentions(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load mentions", err)
	}
	return s.resolveNotifications(entities)
}

// MarkAsRead 将单条通知标记为已读
func (s *NotificationService) MarkAsRead(id string) error {
	entity, err := s.notificationRepo.GetByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load notification", err)
	}
	if entity == nil {
		return errors.New(errors.ErrNotificationNotFound, "notification not found")
	}
	if err := s.notificationRepo.MarkAsRead(id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to mark notification as read", err)
	}
	return nil
}

// MarkAllAsRead 将用户的全部通知标记为已读
func (s *NotificationService) MarkAllAsRead(userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to mark notifications as read", err)
	}
	return nil
}

// UnreadCount 返回用户未读通知数
func (s *NotificationService) UnreadCount(userID string) (int, error) {
	count, err := s.notificationRepo.UnreadCount(userID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "failed to count unread notifications", err)
	}
	return count, nil
}

// WatchNotifications 订阅用户的通知列表：先推当前结果，变更后重查再推
func (s *NotificationService) WatchNotifications(userID string) (<-chan []model.Notification, func()) {
	out := make(chan []model.Notification, 1)
	signals, cancel := s.changes.Subscribe("notifications", "users")

	push := func() {
		notifications, err := s.UserNotifications(userID)
		if err != nil {
			util.Logger.Warn("刷新通知列表失败", zap.Error(err))
			return
		}
		select {
		case out <- notifications:
		default:
			select {
			case <-out:
			default:
			}
			out <- notifications
		}
	}

	go func() {
		defer close(out)
		push()
		for range signals {
			push()
		}
	}()
	return out, cancel
}

func (s *NotificationService) resolveNotifications(entities []model.NotificationEntity) ([]model.Notification, error) {
	notifications := make([]model.Notification, 0, len(entities))
	for i := range entities {
		entity := &entities[i]

		trigger, err := s.userRepo.GetByID(entity.TriggerUserID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to load trigger user", err)
		}
		var triggerView *model.User
		if trigger != nil {
			triggerView = trigger.ToUser()
		}

		notification, err := entity.ToNotification(triggerView)
		if err != nil {
			util.Logger.Warn("通知类型不合法，跳过",
				zap.String("notificationId", entity.ID),
				zap.String("type", entity.Type), zap.Error(err))
			continue
		}
		notifications = append(notifications, *notification)
	}
	return notifications, nil
}
