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

// PostService 处理帖子的创建、删除、点赞、转发与信息流查询
type PostService struct {
	postRepo         interfaces.PostRepository
	likeRepo         interfaces.LikeRepository
	userRepo         interfaces.UserRepository
	notificationRepo interfaces.NotificationRepository
	images           storage.ImageStore
	changes          interfaces.ChangeFeed
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(
	postRepo interfaces.PostRepository,
	likeRepo interfaces.LikeRepository,
	userRepo interfaces.UserRepository,
	notificationRepo interfaces.NotificationRepository,
	images storage.ImageStore,
	changes interfaces.ChangeFeed,
) *PostService {
	return &PostService{
		postRepo:         postRepo,
		likeRepo:         likeRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		images:           images,
		changes:          changes,
	}
}

// CreatePost 发布新帖子；image 不为空时先存储图片
func (s *PostService) CreatePost(userID, content string, image []byte) (*model.Post, error) {
	author, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load user", err)
	}
	if author == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}

	var imageURL *string
	if len(image) > 0 {
		url, err := s.images.Store(image)
		if err != nil {
			return nil, errors.Wrap(errors.ErrIO, "failed to store image", err)
		}
		imageURL = &url
	}

	entity := &model.PostEntity{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: model.NowMillis(),
	}
	if err := s.postRepo.Insert(entity); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create post", err)
	}
	return s.resolvePost(entity, userID, true)
}

// GetPostByID 返回解析后的帖子视图，转发源只解析一层
func (s *PostService) GetPostByID(id, currentUserID string) (*model.Post, error) {
	entity, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	return s.resolvePost(entity, currentUserID, true)
}

// DeletePost 删除帖子；帖子图片一并清理，子记录由级联删除负责
func (s *PostService) DeletePost(id string) error {
	entity, err := s.postRepo.GetByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	if entity == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}

	if entity.ImageURL != nil {
		if ok := s.images.Delete(*entity.ImageURL); !ok {
			util.Logger.Warn("删除帖子图片失败", zap.String("postId", id))
		}
	}
	if err := s.postRepo.Delete(id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete post", err)
	}
	return nil
}

// LikePost 点赞帖子并递增计数；重复点赞返回冲突错误
func (s *PostService) LikePost(userID, postID string) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}

	exists, err := s.likeRepo.Exists(userID, postID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check like state", err)
	}
	if exists {
		return errors.New(errors.ErrAlreadyLiked, "already liked this post")
	}

	like := &model.LikeEntity{UserID: userID, PostID: postID, CreatedAt: model.NowMillis()}
	if err := s.likeRepo.Insert(like); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to create like", err)
	}
	if err := s.postRepo.IncrementLikesCount(postID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to bump likes count", err)
	}

	if post.UserID != userID {
		notification := &model.NotificationEntity{
			ID:            uuid.NewString(),
			UserID:        post.UserID,
			TriggerUserID: userID,
			Type:          string(model.NotificationLike),
			PostID:        &postID,
			CreatedAt:     model.NowMillis(),
		}
		if err := s.notificationRepo.Insert(notification); err != nil {
			util.Logger.Error("写入点赞通知失败",
				zap.String("postId", postID), zap.Error(err))
		}
	}
	return nil
}

// UnlikePost 取消点赞并递减计数；未点赞时返回冲突错误
func (s *PostService) UnlikePost(userID, postID string) error {
	exists, err := s.likeRepo.Exists(userID, postID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check like state", err)
	}
	if !exists {
		return errors.New(errors.ErrNotLiked, "post is not liked")
	}

	if err := s.likeRepo.Delete(userID, postID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete like", err)
	}
	if err := s.postRepo.DecrementLikesCount(postID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to bump likes count", err)
	}
	return nil
}

// Repost 转发帖子：新建一条指向原帖的帖子并递增原帖转发计数
func (s *PostService) Repost(userID, originalPostID, content string) (*model.Post, error) {
	original, err := s.postRepo.GetByID(originalPostID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	if original == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}

	entity := &model.PostEntity{
		ID:             uuid.NewString(),
		UserID:         userID,
		Content:        content,
		OriginalPostID: &originalPostID,
		CreatedAt:      model.NowMillis(),
	}
	if err := s.postRepo.Insert(entity); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create repost", err)
	}
	if err := s.postRepo.IncrementRepostsCount(originalPostID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to bump reposts count", err)
	}

	if original.UserID != userID {
		notification := &model.NotificationEntity{
			ID:            uuid.NewString(),
			UserID:        original.UserID,
			TriggerUserID: userID,
			Type:          string(model.NotificationRepost),
			PostID:        &originalPostID,
			CreatedAt:     model.NowMillis(),
		}
		if err := s.notificationRepo.Insert(notification); err != nil {
			util.Logger.Error("写入转发通知失败",
				zap.String("postId", originalPostID), zap.Error(err))
		}
	}
	return s.resolvePost(entity, userID, true)
}

// Feed 返回当前用户关注者的帖子，按时间倒序
func (s *PostService) Feed(currentUserID string) ([]model.Post, error) {
	entities, err := s.postRepo.Feed(currentUserID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load feed", err)
	}
	return s.resolvePosts(entities, currentUserID)
}

// AllPosts 返回全部帖子，按时间倒序
func (s *PostService) AllPosts(currentUserID string) ([]model.Post, error) {
	entities, err := s.postRepo.GetAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load posts", err)
	}
	return s.resolvePosts(entities, currentUserID)
}

// UserPosts 返回指定用户发布的帖子
func (s *PostService) UserPosts(userID, currentUserID string) ([]model.Post, error) {
	entities, err := s.postRepo.GetByUserID(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load user posts", err)
	}
	return s.resolvePosts(entities, currentUserID)
}

// SearchPosts 按正文模糊搜索
func (s *PostService) SearchPosts(query, currentUserID string) ([]model.Post, error) {
	entities, err := s.postRepo.Search(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to search posts", err)
	}
	return s.resolvePosts(entities, currentUserID)
}

// WatchFeed 订阅信息流：先推送当前结果，之后相关表每次变更后重查再推送。
// 通道容量为 1，消费慢时只保留最新一版。返回的取消函数负责停止监听。
func (s *PostService) WatchFeed(currentUserID string) (<-chan []model.Post, func()) {
	out := make(chan []model.Post, 1)
	signals, cancel := s.changes.Subscribe("posts", "likes", "follows", "users")

	push := func() {
		posts, err := s.Feed(currentUserID)
		if err != nil {
			util.Logger.Warn("刷新信息流失败", zap.Error(err))
			return
		}
		select {
		case out <- posts:
		default:
			select {
			case <-out:
			default:
			}
			out <- posts
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

// resolvePost 组装帖子视图：作者、实时计数、当前用户谓词，
// 以及（withOriginal 时）一层转发源。
func (s *PostService) resolvePost(entity *model.PostEntity, currentUserID string, withOriginal bool) (*model.Post, error) {
	author, err := s.userRepo.GetByID(entity.UserID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post author", err)
	}
	var authorView *model.User
	if author != nil {
		authorView = author.ToUser()
	}

	var originalView *model.Post
	if withOriginal && entity.OriginalPostID != nil {
		original, err := s.postRepo.GetByID(*entity.OriginalPostID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to load original post", err)
		}
		if original != nil {
			originalView, err = s.resolvePost(original, currentUserID, false)
			if err != nil {
				return nil, err
			}
		}
	}

	post := entity.ToPost(authorView, originalView)
	if post.LikesCount, err = s.postRepo.LikesCount(entity.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count likes", err)
	}
	if post.CommentsCount, err = s.postRepo.CommentsCount(entity.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count comments", err)
	}
	if post.RepostsCount, err = s.postRepo.RepostsCount(entity.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count reposts", err)
	}
	if currentUserID != "" {
		if post.IsLiked, err = s.postRepo.IsLiked(currentUserID, entity.ID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to check like state", err)
		}
		if post.IsReposted, err = s.postRepo.IsReposted(currentUserID, entity.ID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to check repost state", err)
		}
	}
	return post, nil
}

func (s *PostService) resolvePosts(entities []model.PostEntity, currentUserID string) ([]model.Post, error) {
	posts := make([]model.Post, 0, len(entities))
	for i := range entities {
		post, err := s.resolvePost(&entities[i], currentUserID, true)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}
