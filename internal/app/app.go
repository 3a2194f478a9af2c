// Package app 把各个服务组装成一个对外的应用句柄，
// 上层（界面或嵌入方）只依赖这里，不直接接触仓库。
package app

import (
	"museart-backend/internal/mirror"
	"museart-backend/internal/repository/sqlite"
	"museart-backend/internal/service"
	"museart-backend/internal/session"
	"museart-backend/internal/storage"
	"museart-backend/internal/syncer"
)

// App 持有全部服务和同步器
type App struct {
	Users         *service.UserService
	Posts         *service.PostService
	Comments      *service.CommentService
	Messages      *service.MessageService
	Notifications *service.NotificationService
	Synchronizer  *syncer.Synchronizer
	Sessions      *session.Store
}

// New 用一个数据库句柄组装整个应用
func New(db *sqlite.DB, mirrorStore *mirror.Store, sessions *session.Store, images storage.ImageStore) *App {
	userRepo := sqlite.NewUserRepository(db)
	followRepo := sqlite.NewFollowRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	likeRepo := sqlite.NewLikeRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	commentLikeRepo := sqlite.NewCommentLikeRepository(db)
	notificationRepo := sqlite.NewNotificationRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	chatRepo := sqlite.NewChatRepository(db)

	return &App{
		Users:         service.NewUserService(userRepo, followRepo, notificationRepo, sessions),
		Posts:         service.NewPostService(postRepo, likeRepo, userRepo, notificationRepo, images, db),
		Comments:      service.NewCommentService(commentRepo, commentLikeRepo, postRepo, userRepo, notificationRepo),
		Messages:      service.NewMessageService(messageRepo, chatRepo, userRepo, images, db),
		Notifications: service.NewNotificationService(notificationRepo, userRepo, db),
		Synchronizer: syncer.New(
			userRepo, postRepo, commentRepo, likeRepo, followRepo,
			notificationRepo, messageRepo, chatRepo, mirrorStore),
		Sessions: sessions,
	}
}
