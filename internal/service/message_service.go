package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"museart-backend/internal/errors"
	"museart-backend/internal/model"
	"museart-backend/internal/repository/interfaces"
	"museart-backend/internal/storage"
	"museart-backend/internal/util"
)

// MessageService 处理私信和会话：发送时负责会话的建立、
// 未读计数和最新消息指针的维护。
type MessageService struct {
	messageRepo interfaces.MessageRepository
	chatRepo    interfaces.ChatRepository
	userRepo    interfaces.UserRepository
	images      storage.ImageStore
	changes     interfaces.ChangeFeed
}

// NewMessageService 创建一个新的 MessageService 实例
func NewMessageService(
	messageRepo interfaces.MessageRepository,
	chatRepo interfaces.ChatRepository,
	userRepo interfaces.UserRepository,
	images storage.ImageStore,
	changes interfaces.ChangeFeed,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		images:      images,
		changes:     changes,
	}
}

// SendMessage 发送一条私信：没有会话时先建立，
// 然后更新会话的最新消息并递增未读计数。
func (s *MessageService) SendMessage(senderID, receiverID, content string, image []byte) (*model.Message, error) {
	receiver, err := s.userRepo.GetByID(receiverID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load user", err)
	}
	if receiver == nil {
		return nil, errors.New(errors.ErrUserNotFound, "receiver not found")
	}

	var imageURL *string
	if len(image) > 0 {
		url, err := s.images.Store(image)
		if err != nil {
			return nil, errors.Wrap(errors.ErrIO, "failed to store image", err)
		}
		imageURL = &url
	}

	entity := &model.MessageEntity{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		ImageURL:   imageURL,
		CreatedAt:  model.NowMillis(),
	}
	if err := s.messageRepo.Insert(entity); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create message", err)
	}

	chat, err := s.getOrCreateChat(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.UpdateLastMessage(chat.ID, entity.ID, entity.CreatedAt); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to update chat", err)
	}
	if err := s.chatRepo.IncrementUnreadCount(chat.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to bump unread count", err)
	}

	return s.resolveMessage(entity)
}

// CreateOrGetChat 返回两个用户之间的会话，不存在时建立。
// 查找对用户顺序对称，不会为同一对用户建出两个会话。
func (s *MessageService) CreateOrGetChat(userID1, userID2 string) (*model.Chat, error) {
	entity, err := s.getOrCreateChat(userID1, userID2)
	if err != nil {
		return nil, err
	}
	return s.resolveChat(entity)
}

func (s *MessageService) getOrCreateChat(userID1, userID2 string) (*model.ChatEntity, error) {
	entity, err := s.chatRepo.Between(userID1, userID2)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load chat", err)
	}
	if entity == nil {
		entity = &model.ChatEntity{
			ID:        uuid.NewString(),
			User1ID:   userID1,
			User2ID:   userID2,
			UpdatedAt: model.NowMillis(),
		}
		if err := s.chatRepo.Insert(entity); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to create chat", err)
		}
	}
	return entity, nil
}

// Conversation 返回两个用户之间的消息，按时间倒序
func (s *MessageService) Conversation(userID1, userID2 string) ([]model.Message, error) {
	entities, err := s.messageRepo.Between(userID1, userID2)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load messages", err)
	}
	messages := make([]model.Message, 0, len(entities))
	for i := range entities {
		message, err := s.resolveMessage(&entities[i])
		if err != nil {
			return nil, err
		}
		messages = append(messages, *message)
	}
	return messages, nil
}

// UserChats 返回用户参与的会话，按最近更新倒序
func (s *MessageService) UserChats(userID string) ([]model.Chat, error) {
	entities, err := s.chatRepo.GetByUserID(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load chats", err)
	}
	chats := make([]model.Chat, 0, len(entities))
	for i := range entities {
		chat, err := s.resolveChat(&entities[i])
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, nil
}

// MarkAsRead 标记单条消息已读，之后按剩余未读数修正会话计数
func (s *MessageService) MarkAsRead(messageID string) error {
	entity, err := s.messageRepo.GetByID(messageID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load message", err)
	}
	if entity == nil {
		return errors.New(errors.ErrMessageNotFound, "message not found")
	}

	if err := s.messageRepo.MarkAsRead(messageID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to mark message as read", err)
	}

	chat, err := s.chatRepo.Between(entity.SenderID, entity.ReceiverID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load chat", err)
	}
	if chat != nil {
		unread, err := s.messageRepo.UnreadCount(entity.ReceiverID, entity.SenderID)
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "failed to count unread messages", err)
		}
		if err := s.chatRepo.UpdateUnreadCount(chat.ID, unread); err != nil {
			return errors.Wrap(errors.ErrDatabase, "failed to update unread count", err)
		}
	}
	return nil
}

// MarkAllAsRead 标记 otherUserID 发给 userID 的全部消息已读，并清零会话计数
func (s *MessageService) MarkAllAsRead(userID, otherUserID string) error {
	if err := s.messageRepo.MarkAllAsRead(userID, otherUserID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to mark messages as read", err)
	}

	chat, err := s.chatRepo.Between(userID, otherUserID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load chat", err)
	}
	if chat != nil {
		if err := s.chatRepo.ResetUnreadCount(chat.ID); err != nil {
			return errors.Wrap(errors.ErrDatabase, "failed to reset unread count", err)
		}
	}
	return nil
}

// DeleteMessage 删除消息；若它是会话的最新消息，
// 指针由外键置空，这里再指回剩余的最新一条（如果有）。
func (s *MessageService) DeleteMessage(id string) error {
	entity, err := s.messageRepo.GetByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load message", err)
	}
	if entity == nil {
		return errors.New(errors.ErrMessageNotFound, "message not found")
	}

	if entity.ImageURL != nil {
		if ok := s.images.Delete(*entity.ImageURL); !ok {
			util.Logger.Warn("删除消息图片失败", zap.String("messageId", id))
		}
	}
	if err := s.messageRepo.Delete(id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete message", err)
	}

	chat, err := s.chatRepo.Between(entity.SenderID, entity.ReceiverID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load chat", err)
	}
	if chat == nil || chat.LastMessageID != nil {
		return nil
	}
	remaining, err := s.messageRepo.Between(entity.SenderID, entity.ReceiverID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load messages", err)
	}
	if len(remaining) > 0 {
		latest := remaining[0]
		if err := s.chatRepo.UpdateLastMessage(chat.ID, latest.ID, latest.CreatedAt); err != nil {
			return errors.Wrap(errors.ErrDatabase, "failed to update chat", err)
		}
	}
	return nil
}

// GetMessageByID 通过ID查找私信
func (s *MessageService) GetMessageByID(id string) (*model.Message, error) {
	entity, err := s.messageRepo.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load message", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrMessageNotFound, "message not found")
	}
	return s.resolveMessage(entity)
}

// GetChatByID 通过ID查找会话
func (s *MessageService) GetChatByID(id string) (*model.Chat, error) {
	entity, err := s.chatRepo.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load chat", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrChatNotFound, "chat not found")
	}
	return s.resolveChat(entity)
}

// DeleteChat 删除会话记录；消息本身不属于会话，保留不动
func (s *MessageService) DeleteChat(id string) error {
	entity, err := s.chatRepo.GetByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load chat", err)
	}
	if entity == nil {
		return errors.New(errors.ErrChatNotFound, "chat not found")
	}
	if err := s.chatRepo.Delete(id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete chat", err)
	}
	return nil
}

// UnreadCount 返回用户收到的来自指定对端的未读消息数
func (s *MessageService) UnreadCount(userID, otherUserID string) (int, error) {
	count, err := s.messageRepo.UnreadCount(userID, otherUserID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "failed to count unread messages", err)
	}
	return count, nil
}

// TotalUnreadCount 返回发给用户的未读消息总数
func (s *MessageService) TotalUnreadCount(userID string) (int, error) {
	count, err := s.messageRepo.TotalUnreadCount(userID)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, "failed to count unread messages", err)
	}
	return count, nil
}

// WatchConversation 订阅两个用户间的消息：先推当前结果，变更后重查再推
func (s *MessageService) WatchConversation(userID1, userID2 string) (<-chan []model.Message, func()) {
	out := make(chan []model.Message, 1)
	signals, cancel := s.changes.Subscribe("messages", "users")

	push := func() {
		messages, err := s.Conversation(userID1, userID2)
		if err != nil {
			util.Logger.Warn("刷新会话消息失败", zap.Error(err))
			return
		}
		select {
		case out <- messages:
		default:
			select {
			case <-out:
			default:
			}
			out <- messages
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

// WatchChats 订阅用户的会话列表
func (s *MessageService) WatchChats(userID string) (<-chan []model.Chat, func()) {
	out := make(chan []model.Chat, 1)
	signals, cancel := s.changes.Subscribe("chats", "messages", "users")

	push := func() {
		chats, err := s.UserChats(userID)
		if err != nil {
			util.Logger.Warn("刷新会话列表失败", zap.Error(err))
			return
		}
		select {
		case out <- chats:
		default:
			select {
			case <-out:
			default:
			}
			out <- chats
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

func (s *MessageService) resolveMessage(entity *model.MessageEntity) (*model.Message, error) {
	sender, err := s.userRepo.GetByID(entity.SenderID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load sender", err)
	}
	receiver, err := s.userRepo.GetByID(entity.ReceiverID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load receiver", err)
	}

	var senderView, receiverView *model.User
	if sender != nil {
		senderView = sender.ToUser()
	}
	if receiver != nil {
		receiverView = receiver.ToUser()
	}
	return entity.ToMessage(senderView, receiverView), nil
}

func (s *MessageService) resolveChat(entity *model.ChatEntity) (*model.Chat, error) {
	user1, err := s.userRepo.GetByID(entity.User1ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load chat user", err)
	}
	user2, err := s.userRepo.GetByID(entity.User2ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load chat user", err)
	}

	var user1View, user2View *model.User
	if user1 != nil {
		user1View = user1.ToUser()
	}
	if user2 != nil {
		user2View = user2.ToUser()
	}

	var lastMessageView *model.Message
	if entity.LastMessageID != nil {
		lastMessage, err := s.messageRepo.GetByID(*entity.LastMessageID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to load last message", err)
		}
		if lastMessage != nil {
			lastMessageView, err = s.resolveMessage(lastMessage)
			if err != nil {
				return nil, err
			}
		}
	}
	return entity.ToChat(user1View, user2View, lastMessageView), nil
}
