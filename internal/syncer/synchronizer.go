// Package syncer 在关系存储和 JSON 镜像之间做双向全量同步。
// 没有增量逻辑：每次导入导出都是一轮完整的整体替换。
package syncer

import (
	"fmt"

	"go.uber.org/zap"

	"museart-backend/internal/mirror"
	"museart-backend/internal/model"
	"museart-backend/internal/repository/interfaces"
	"museart-backend/internal/util"
)

// Synchronizer 持有双向同步需要的全部仓库和镜像存储
type Synchronizer struct {
	users         interfaces.UserRepository
	posts         interfaces.PostRepository
	comments      interfaces.CommentRepository
	likes         interfaces.LikeRepository
	follows       interfaces.FollowRepository
	notifications interfaces.NotificationRepository
	messages      interfaces.MessageRepository
	chats         interfaces.ChatRepository
	mirror        *mirror.Store
}

// New 创建一个新的 Synchronizer 实例
func New(
	users interfaces.UserRepository,
	posts interfaces.PostRepository,
	comments interfaces.CommentRepository,
	likes interfaces.LikeRepository,
	follows interfaces.FollowRepository,
	notifications interfaces.NotificationRepository,
	messages interfaces.MessageRepository,
	chats interfaces.ChatRepository,
	mirrorStore *mirror.Store,
) *Synchronizer {
	return &Synchronizer{
		users:         users,
		posts:         posts,
		comments:      comments,
		likes:         likes,
		follows:       follows,
		notifications: notifications,
		messages:      messages,
		chats:         chats,
		mirror:        mirrorStore,
	}
}

// ExportToMirror 把关系存储整体导出到镜像。
// 各集合独立导出：一个失败记日志后继续下一个，镜像中八个文件
// 始终齐全（空存储导出得到八个空数组）。
func (s *Synchronizer) ExportToMirror() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("导出镜像时发生未预期错误", zap.Any("panic", r))
		}
	}()

	if err := s.mirror.Initialize(); err != nil {
		util.Logger.Error("初始化镜像目录失败", zap.Error(err))
		return
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"users", s.exportUsers},
		{"posts", s.exportPosts},
		{"comments", s.exportComments},
		{"notifications", s.exportNotifications},
		{"messages", s.exportMessages},
		{"chats", s.exportChats},
		{"likes", s.exportLikes},
		{"follows", s.exportFollows},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			util.Logger.Error("导出集合失败",
				zap.String("collection", step.name), zap.Error(err))
		}
	}
	util.Logger.Info("镜像导出完成")
}

// ImportFromMirror 把镜像整体导入关系存储。
// 导入顺序满足外键约束：用户最先，边和会话最后。
func (s *Synchronizer) ImportFromMirror() error {
	if err := s.mirror.Initialize(); err != nil {
		return fmt.Errorf("初始化镜像目录失败: %w", err)
	}

	if err := s.importUsers(); err != nil {
		return err
	}
	if err := s.importPosts(); err != nil {
		return err
	}
	if err := s.importComments(); err != nil {
		return err
	}
	if err := s.importNotifications(); err != nil {
		return err
	}
	if err := s.importMessages(); err != nil {
		return err
	}
	if err := s.importChats(); err != nil {
		return err
	}
	if err := s.importLikes(); err != nil {
		return err
	}
	if err := s.importFollows(); err != nil {
		return err
	}

	util.Logger.Info("镜像导入完成")
	return nil
}

func (s *Synchronizer) exportUsers() error {
	entities, err := s.users.GetAll()
	if err != nil {
		return err
	}
	users := make([]model.User, 0, len(entities))
	for i := range entities {
		users = append(users, *entities[i].ToUser())
	}
	return s.mirror.SaveUsers(users)
}

func (s *Synchronizer) exportPosts() error {
	entities, err := s.posts.GetAll()
	if err != nil {
		return err
	}
	posts := make([]model.Post, 0, len(entities))
	for i := range entities {
		post, err := s.resolvePost(&entities[i], true)
		if err != nil {
			return err
		}
		posts = append(posts, *post)
	}
	return s.mirror.SavePosts(posts)
}

func (s *Synchronizer) exportComments() error {
	entities, err := s.comments.GetAll()
	if err != nil {
		return err
	}
	comments := make([]model.Comment, 0, len(entities))
	for i := range entities {
		author, err := s.userView(entities[i].UserID)
		if err != nil {
			return err
		}
		comments = append(comments, *entities[i].ToComment(author))
	}
	return s.mirror.SaveComments(comments)
}

func (s *Synchronizer) exportNotifications() error {
	entities, err := s.notifications.GetAll()
	if err != nil {
		return err
	}
	notifications := make([]model.Notification, 0, len(entities))
	for i := range entities {
		trigger, err := s.userView(entities[i].TriggerUserID)
		if err != nil {
			return err
		}
		notification, err := entities[i].ToNotification(trigger)
		if err != nil {
			// 类型名损坏的行跳过，不拖垮整个集合
			util.Logger.Warn("通知类型不合法，导出时跳过",
				zap.String("notificationId", entities[i].ID), zap.Error(err))
			continue
		}
		notifications = append(notifications, *notification)
	}
	return s.mirror.SaveNotifications(notifications)
}

func (s *Synchronizer) exportMessages() error {
	entities, err := s.messages.GetAll()
	if err != nil {
		return err
	}
	messages := make([]model.Message, 0, len(entities))
	for i := range entities {
		message, err := s.resolveMessage(&entities[i])
		if err != nil {
			return err
		}
		messages = append(messages, *message)
	}
	return s.mirror.SaveMessages(messages)
}

func (s *Synchronizer) exportChats() error {
	entities, err := s.chats.GetAll()
	if err != nil {
		return err
	}
	chats := make([]model.Chat, 0, len(entities))
	for i := range entities {
		entity := &entities[i]
		user1, err := s.userView(entity.User1ID)
		if err != nil {
			return err
		}
		user2, err := s.userView(entity.User2ID)
		if err != nil {
			return err
		}
		var lastMessage *model.Message
		if entity.LastMessageID != nil {
			messageEntity, err := s.messages.GetByID(*entity.LastMessageID)
			if err != nil {
				return err
			}
			if messageEntity != nil {
				lastMessage, err = s.resolveMessage(messageEntity)
				if err != nil {
					return err
				}
			}
		}
		chats = append(chats, *entity.ToChat(user1, user2, lastMessage))
	}
	return s.mirror.SaveChats(chats)
}

func (s *Synchronizer) exportLikes() error {
	entities, err := s.likes.GetAll()
	if err != nil {
		return err
	}
	likes := make([]mirror.Like, 0, len(entities))
	for _, e := range entities {
		likes = append(likes, mirror.Like{UserID: e.UserID, PostID: e.PostID})
	}
	return s.mirror.SaveLikes(likes)
}

func (s *Synchronizer) exportFollows() error {
	entities, err := s.follows.GetAll()
	if err != nil {
		return err
	}
	follows := make([]mirror.Follow, 0, len(entities))
	for _, e := range entities {
		follows = append(follows, mirror.Follow{
			FollowerID:  e.FollowerID,
			FollowingID: e.FollowingID,
		})
	}
	return s.mirror.SaveFollows(follows)
}

func (s *Synchronizer) importUsers() error {
	for _, user := range s.mirror.LoadUsers() {
		u := user
		// 镜像视图不携带凭据，导入时用占位凭据补齐
		entity := model.UserEntityFromUser(&u,
			u.Username+"@example.com", "password123")
		if err := s.users.Insert(entity); err != nil {
			return fmt.Errorf("导入用户失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) importPosts() error {
	// 转发帖的 original_post_id 外键指向同一张表，而镜像按时间倒序写出，
	// 所以分两趟导入：先不带原帖指针插入全部帖子，再补写指针
	reposts := make([]*model.PostEntity, 0)
	for _, post := range s.mirror.LoadPosts() {
		p := post
		entity := model.PostEntityFromPost(&p)
		if entity.OriginalPostID != nil {
			reposts = append(reposts, entity)
			stripped := *entity
			stripped.OriginalPostID = nil
			entity = &stripped
		}
		if err := s.posts.Insert(entity); err != nil {
			return fmt.Errorf("导入帖子失败: %w", err)
		}
	}
	for _, entity := range reposts {
		if err := s.posts.Insert(entity); err != nil {
			return fmt.Errorf("导入帖子失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) importComments() error {
	for _, comment := range s.mirror.LoadComments() {
		c := comment
		if err := s.comments.Insert(model.CommentEntityFromComment(&c)); err != nil {
			return fmt.Errorf("导入评论失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) importNotifications() error {
	for _, notification := range s.mirror.LoadNotifications() {
		n := notification
		if err := s.notifications.Insert(model.NotificationEntityFromNotification(&n)); err != nil {
			return fmt.Errorf("导入通知失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) importMessages() error {
	for _, message := range s.mirror.LoadMessages() {
		m := message
		if err := s.messages.Insert(model.MessageEntityFromMessage(&m)); err != nil {
			return fmt.Errorf("导入消息失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) importChats() error {
	for _, chat := range s.mirror.LoadChats() {
		c := chat
		if err := s.chats.Insert(model.ChatEntityFromChat(&c)); err != nil {
			return fmt.Errorf("导入会话失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) importLikes() error {
	for _, like := range s.mirror.LoadLikes() {
		// 创建时间不跨镜像保留，导入时取当前时间
		entity := &model.LikeEntity{
			UserID:    like.UserID,
			PostID:    like.PostID,
			CreatedAt: model.NowMillis(),
		}
		if err := s.likes.Insert(entity); err != nil {
			return fmt.Errorf("导入点赞失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) importFollows() error {
	for _, follow := range s.mirror.LoadFollows() {
		entity := &model.FollowEntity{
			FollowerID:  follow.FollowerID,
			FollowingID: follow.FollowingID,
			CreatedAt:   model.NowMillis(),
		}
		if err := s.follows.Insert(entity); err != nil {
			return fmt.Errorf("导入关注失败: %w", err)
		}
	}
	return nil
}

func (s *Synchronizer) userView(id string) (*model.User, error) {
	entity, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		// 悬空外键退化为缺失关联，不让整个集合失败
		return nil, nil
	}
	return entity.ToUser(), nil
}

func (s *Synchronizer) resolvePost(entity *model.PostEntity, withOriginal bool) (*model.Post, error) {
	author, err := s.userView(entity.UserID)
	if err != nil {
		return nil, err
	}
	var original *model.Post
	if withOriginal && entity.OriginalPostID != nil {
		originalEntity, err := s.posts.GetByID(*entity.OriginalPostID)
		if err != nil {
			return nil, err
		}
		if originalEntity != nil {
			original, err = s.resolvePost(originalEntity, false)
			if err != nil {
				return nil, err
			}
		}
	}
	return entity.ToPost(author, original), nil
}

func (s *Synchronizer) resolveMessage(entity *model.MessageEntity) (*model.Message, error) {
	sender, err := s.userView(entity.SenderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.userView(entity.ReceiverID)
	if err != nil {
		return nil, err
	}
	return entity.ToMessage(sender, receiver), nil
}
