package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"museart-backend/internal/errors"
	"museart-backend/internal/model"
	"museart-backend/internal/repository/interfaces"
	"museart-backend/internal/util"
)

// CommentService 处理评论及评论点赞
type CommentService struct {
	commentRepo      interfaces.CommentRepository
	commentLikeRepo  interfaces.CommentLikeRepository
	postRepo         interfaces.PostRepository
	userRepo         interfaces.UserRepository
	notificationRepo interfaces.NotificationRepository
}

// NewCommentService 创建一个新的 CommentService 实例
func NewCommentService(
	commentRepo interfaces.CommentRepository,
	commentLikeRepo interfaces.CommentLikeRepository,
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	notificationRepo interfaces.NotificationRepository,
) *CommentService {
	return &CommentService{
		commentRepo:      commentRepo,
		commentLikeRepo:  commentLikeRepo,
		postRepo:         postRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// CreateComment 发表评论并递增帖子评论数
func (s *CommentService) CreateComment(userID, postID, content string) (*model.Comment, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}

	entity := &model.CommentEntity{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: model.NowMillis(),
	}
	if err := s.commentRepo.Insert(entity); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create comment", err)
	}
	if err := s.postRepo.IncrementCommentsCount(postID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to bump comments count", err)
	}

	if post.UserID != userID {
		notification := &model.NotificationEntity{
			ID:            uuid.NewString(),
			UserID:        post.UserID,
			TriggerUserID: userID,
			Type:          string(model.NotificationComment),
			PostID:        &postID,
			CommentID:     &entity.ID,
			CreatedAt:     model.NowMillis(),
		}
		if err := s.notificationRepo.Insert(notification); err != nil {
			util.Logger.Error("写入评论通知失败",
				zap.String("postId", postID), zap.Error(err))
		}
	}
	return s.resolveComment(entity, userID)
}

// DeleteComment 删除评论并递减帖子评论数
func (s *CommentService) DeleteComment(id string) error {
	entity, err := s.commentRepo.GetByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load comment", err)
	}
	if entity == nil {
		return errors.New(errors.ErrCommentNotFound, "comment not found")
	}

	if err := s.commentRepo.Delete(id); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete comment", err)
	}
	if err := s.postRepo.DecrementCommentsCount(entity.PostID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to bump comments count", err)
	}
	return nil
}

// GetCommentByID 返回解析后的评论视图
func (s *CommentService) GetCommentByID(id, currentUserID string) (*model.Comment, error) {
	entity, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load comment", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrCommentNotFound, "comment not found")
	}
	return s.resolveComment(entity, currentUserID)
}

// PostComments 返回帖子下的评论，按时间倒序
func (s *CommentService) PostComments(postID, currentUserID string) ([]model.Comment, error) {
	entities, err := s.commentRepo.GetByPostID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load comments", err)
	}
	comments := make([]model.Comment, 0, len(entities))
	for i := range entities {
		comment, err := s.resolveComment(&entities[i], currentUserID)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, nil
}

// LikeComment 点赞评论并递增计数；重复点赞返回冲突错误
func (s *CommentService) LikeComment(userID, commentID string) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load comment", err)
	}
	if comment == nil {
		return errors.New(errors.ErrCommentNotFound, "comment not found")
	}

	exists, err := s.commentLikeRepo.Exists(userID, commentID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check like state", err)
	}
	if exists {
		return errors.New(errors.ErrAlreadyLiked, "already liked this comment")
	}

	like := &model.CommentLikeEntity{
		UserID:    userID,
		CommentID: commentID,
		CreatedAt: model.NowMillis(),
	}
	if err := s.commentLikeRepo.Insert(like); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to create comment like", err)
	}
	if err := s.commentRepo.IncrementLikesCount(commentID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to bump likes count", err)
	}

	if comment.UserID != userID {
		notification := &model.NotificationEntity{
			ID:            uuid.NewString(),
			UserID:        comment.UserID,
			TriggerUserID: userID,
			Type:          string(model.NotificationLike),
			PostID:        &comment.PostID,
			CommentID:     &commentID,
			CreatedAt:     model.NowMillis(),
		}
		if err := s.notificationRepo.Insert(notification); err != nil {
			util.Logger.Error("写入评论点赞通知失败",
				zap.String("commentId", commentID), zap.Error(err))
		}
	}
	return nil
}

// UnlikeComment 取消评论点赞并递减计数；未点赞时返回冲突错误
func (s *CommentService) UnlikeComment(userID, commentID string) error {
	exists, err := s.commentLikeRepo.Exists(userID, commentID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check like state", err)
	}
	if !exists {
		return errors.New(errors.ErrNotLiked, "comment is not liked")
	}

	if err := s.commentLikeRepo.Delete(userID, commentID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete comment like", err)
	}
	if err := s.commentRepo.DecrementLikesCount(commentID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to bump likes count", err)
	}
	return nil
}

func (s *CommentService) resolveComment(entity *model.CommentEntity, currentUserID string) (*model.Comment, error) {
	author, err := s.userRepo.GetByID(entity.UserID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load comment author", err)
	}
	var authorView *model.User
	if author != nil {
		authorView = author.ToUser()
	}

	comment := entity.ToComment(authorView)
	if comment.LikesCount, err = s.commentRepo.LikesCount(entity.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count comment likes", err)
	}
	if currentUserID != "" {
		if comment.IsLiked, err = s.commentRepo.IsLiked(currentUserID, entity.ID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to check like state", err)
		}
	}
	return comment, nil
}
