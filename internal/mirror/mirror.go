// Package mirror 维护一组与数据库并行的扁平 JSON 文件，
// 模拟远端数据源，供同步器导入导出使用。
package mirror

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"museart-backend/internal/model"
	"museart-backend/internal/util"
)

const (
	usersFile         = "users.json"
	postsFile         = "posts.json"
	commentsFile      = "comments.json"
	notificationsFile = "notifications.json"
	messagesFile      = "messages.json"
	chatsFile         = "chats.json"
	likesFile         = "likes.json"
	followsFile       = "follows.json"
)

var allFiles = []string{
	usersFile, postsFile, commentsFile, notificationsFile,
	messagesFile, chatsFile, likesFile, followsFile,
}

// Like 是点赞边在镜像文件中的形态
type Like struct {
	UserID string `json:"userId"`
	PostID string `json:"postId"`
}

// Follow 是关注边在镜像文件中的形态
type Follow struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
}

// Store 把每类数据整体读写到数据目录下的一个 JSON 数组文件
type Store struct {
	dataDir string
}

// NewStore 创建镜像存储；目录不存在时由 Initialize 创建
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Initialize 确保数据目录存在，并为缺失的文件写入空数组
func (s *Store) Initialize() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	for _, name := range allFiles {
		path := filepath.Join(s.dataDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// readCollection 宽容读取：文件缺失或内容损坏时返回空集合
func readCollection[T any](s *Store, name string) []T {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		util.Logger.Warn("镜像文件内容损坏，按空集合处理",
			zap.String("file", name), zap.Error(err))
		return nil
	}
	return items
}

// writeCollection 整体覆盖写入，格式化输出以便人工查看
func writeCollection[T any](s *Store, name string, items []T) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dataDir, name), data, 0o644)
}

func (s *Store) LoadUsers() []model.User   { return readCollection[model.User](s, usersFile) }
func (s *Store) LoadPosts() []model.Post   { return readCollection[model.Post](s, postsFile) }
func (s *Store) LoadComments() []model.Comment {
	return readCollection[model.Comment](s, commentsFile)
}
func (s *Store) LoadNotifications() []model.Notification {
	return readCollection[model.Notification](s, notificationsFile)
}
func (s *Store) LoadMessages() []model.Message {
	return readCollection[model.Message](s, messagesFile)
}
func (s *Store) LoadChats() []model.Chat { return readCollection[model.Chat](s, chatsFile) }
func (s *Store) LoadLikes() []Like       { return readCollection[Like](s, likesFile) }
func (s *Store) LoadFollows() []Follow   { return readCollection[Follow](s, followsFile) }

func (s *Store) SaveUsers(users []model.User) error {
	return writeCollection(s, usersFile, users)
}
func (s *Store) SavePosts(posts []model.Post) error {
	return writeCollection(s, postsFile, posts)
}
func (s *Store) SaveComments(comments []model.Comment) error {
	return writeCollection(s, commentsFile, comments)
}
func (s *Store) SaveNotifications(notifications []model.Notification) error {
	return writeCollection(s, notificationsFile, notifications)
}
func (s *Store) SaveMessages(messages []model.Message) error {
	return writeCollection(s, messagesFile, messages)
}
func (s *Store) SaveChats(chats []model.Chat) error {
	return writeCollection(s, chatsFile, chats)
}
func (s *Store) SaveLikes(likes []Like) error {
	return writeCollection(s, likesFile, likes)
}
func (s *Store) SaveFollows(follows []Follow) error {
	return writeCollection(s, followsFile, follows)
}

// AddUser 追加一个用户记录
func (s *Store) AddUser(user model.User) error {
	return writeCollection(s, usersFile, append(s.LoadUsers(), user))
}

// UpdateUser 按ID替换用户记录；不存在时不做任何事
func (s *Store) UpdateUser(user model.User) error {
	users := s.LoadUsers()
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			return writeCollection(s, usersFile, users)
		}
	}
	return nil
}

// AddPost 追加一条帖子记录
func (s *Store) AddPost(post model.Post) error {
	return writeCollection(s, postsFile, append(s.LoadPosts(), post))
}

// UpdatePost 按ID替换帖子记录；不存在时不做任何事
func (s *Store) UpdatePost(post model.Post) error {
	posts := s.LoadPosts()
	for i := range posts {
		if posts[i].ID == post.ID {
			posts[i] = post
			return writeCollection(s, postsFile, posts)
		}
	}
	return nil
}

// DeletePost 按ID移除帖子记录
func (s *Store) DeletePost(postID string) error {
	posts := s.LoadPosts()
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	return writeCollection(s, postsFile, kept)
}

// AddComment 追加一条评论记录
func (s *Store) AddComment(comment model.Comment) error {
	return writeCollection(s, commentsFile, append(s.LoadComments(), comment))
}

// DeleteComment 按ID移除评论记录
func (s *Store) DeleteComment(commentID string) error {
	comments := s.LoadComments()
	kept := comments[:0]
	for _, c := range comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	return writeCollection(s, commentsFile, kept)
}

// AddNotification 追加一条通知记录
func (s *Store) AddNotification(notification model.Notification) error {
	return writeCollection(s, notificationsFile,
		append(s.LoadNotifications(), notification))
}

// AddMessage 追加一条私信记录
func (s *Store) AddMessage(message model.Message) error {
	return writeCollection(s, messagesFile, append(s.LoadMessages(), message))
}

// AddChat 追加一条会话记录
func (s *Store) AddChat(chat model.Chat) error {
	return writeCollection(s, chatsFile, append(s.LoadChats(), chat))
}

// UpdateChat 按ID替换会话记录；不存在时不做任何事
func (s *Store) UpdateChat(chat model.Chat) error {
	chats := s.LoadChats()
	for i := range chats {
		if chats[i].ID == chat.ID {
			chats[i] = chat
			return writeCollection(s, chatsFile, chats)
		}
	}
	return nil
}

// GetUserByID 按ID查找用户记录；不存在时返回 nil
func (s *Store) GetUserByID(id string) *model.User {
	for _, u := range s.LoadUsers() {
		if u.ID == id {
			found := u
			return &found
		}
	}
	return nil
}

// GetPostByID 按ID查找帖子记录；不存在时返回 nil
func (s *Store) GetPostByID(id string) *model.Post {
	for _, p := range s.LoadPosts() {
		if p.ID == id {
			found := p
			return &found
		}
	}
	return nil
}

// GetCommentByID 按ID查找评论记录；不存在时返回 nil
func (s *Store) GetCommentByID(id string) *model.Comment {
	for _, c := range s.LoadComments() {
		if c.ID == id {
			found := c
			return &found
		}
	}
	return nil
}

// GetNotificationByID 按ID查找通知记录；不存在时返回 nil
func (s *Store) GetNotificationByID(id string) *model.Notification {
	for _, n := range s.LoadNotifications() {
		if n.ID == id {
			found := n
			return &found
		}
	}
	return nil
}

// GetMessageByID 按ID查找私信记录；不存在时返回 nil
func (s *Store) GetMessageByID(id string) *model.Message {
	for _, m := range s.LoadMessages() {
		if m.ID == id {
			found := m
			return &found
		}
	}
	return nil
}

// GetChatByID 按ID查找会话记录；不存在时返回 nil
func (s *Store) GetChatByID(id string) *model.Chat {
	for _, c := range s.LoadChats() {
		if c.ID == id {
			found := c
			return &found
		}
	}
	return nil
}

// UpdateComment 按ID替换评论记录；不存在时不做任何事
func (s *Store) UpdateComment(comment model.Comment) error {
	comments := s.LoadComments()
	for i := range comments {
		if comments[i].ID == comment.ID {
			comments[i] = comment
			return writeCollection(s, commentsFile, comments)
		}
	}
	return nil
}

// UpdateNotification 按ID替换通知记录；不存在时不做任何事
func (s *Store) UpdateNotification(notification model.Notification) error {
	notifications := s.LoadNotifications()
	for i := range notifications {
		if notifications[i].ID == notification.ID {
			notifications[i] = notification
			return writeCollection(s, notificationsFile, notifications)
		}
	}
	return nil
}

// UpdateMessage 按ID替换私信记录；不存在时不做任何事
func (s *Store) UpdateMessage(message model.Message) error {
	messages := s.LoadMessages()
	for i := range messages {
		if messages[i].ID == message.ID {
			messages[i] = message
			return writeCollection(s, messagesFile, messages)
		}
	}
	return nil
}

// DeleteNotification 按ID移除通知记录
func (s *Store) DeleteNotification(notificationID string) error {
	notifications := s.LoadNotifications()
	kept := notifications[:0]
	for _, n := range notifications {
		if n.ID != notificationID {
			kept = append(kept, n)
		}
	}
	return writeCollection(s, notificationsFile, kept)
}

// DeleteMessage 按ID移除私信记录
func (s *Store) DeleteMessage(messageID string) error {
	messages := s.LoadMessages()
	kept := messages[:0]
	for _, m := range messages {
		if m.ID != messageID {
			kept = append(kept, m)
		}
	}
	return writeCollection(s, messagesFile, kept)
}

// DeleteChat 按ID移除会话记录
func (s *Store) DeleteChat(chatID string) error {
	chats := s.LoadChats()
	kept := chats[:0]
	for _, c := range chats {
		if c.ID != chatID {
			kept = append(kept, c)
		}
	}
	return writeCollection(s, chatsFile, kept)
}

// AddLike 追加一条点赞边；已存在时不重复写
func (s *Store) AddLike(userID, postID string) error {
	likes := s.LoadLikes()
	for _, l := range likes {
		if l.UserID == userID && l.PostID == postID {
			return nil
		}
	}
	return writeCollection(s, likesFile, append(likes, Like{UserID: userID, PostID: postID}))
}

// RemoveLike 移除一条点赞边
func (s *Store) RemoveLike(userID, postID string) error {
	likes := s.LoadLikes()
	kept := likes[:0]
	for _, l := range likes {
		if l.UserID != userID || l.PostID != postID {
			kept = append(kept, l)
		}
	}
	return writeCollection(s, likesFile, kept)
}

// IsPostLiked 判断点赞边是否存在
func (s *Store) IsPostLiked(userID, postID string) bool {
	for _, l := range s.LoadLikes() {
		if l.UserID == userID && l.PostID == postID {
			return true
		}
	}
	return false
}

// AddFollow 追加一条关注边；已存在时不重复写
func (s *Store) AddFollow(followerID, followingID string) error {
	follows := s.LoadFollows()
	for _, f := range follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return nil
		}
	}
	return writeCollection(s, followsFile,
		append(follows, Follow{FollowerID: followerID, FollowingID: followingID}))
}

// RemoveFollow 移除一条关注边
func (s *Store) RemoveFollow(followerID, followingID string) error {
	follows := s.LoadFollows()
	kept := follows[:0]
	for _, f := range follows {
		if f.FollowerID != followerID || f.FollowingID != followingID {
			kept = append(kept, f)
		}
	}
	return writeCollection(s, followsFile, kept)
}

// IsFollowing 判断关注边是否存在
func (s *Store) IsFollowing(followerID, followingID string) bool {
	for _, f := range s.LoadFollows() {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true
		}
	}
	return false
}
