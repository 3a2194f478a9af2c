package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"museart-backend/internal/errors"
	"museart-backend/internal/model"
	"museart-backend/internal/repository/interfaces"
	"museart-backend/internal/session"
	"museart-backend/internal/util"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo         interfaces.UserRepository
	followRepo       interfaces.FollowRepository
	notificationRepo interfaces.NotificationRepository
	sessions         *session.Store
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(
	userRepo interfaces.UserRepository,
	followRepo interfaces.FollowRepository,
	notificationRepo interfaces.NotificationRepository,
	sessions *session.Store,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		followRepo:       followRepo,
		notificationRepo: notificationRepo,
		sessions:         sessions,
	}
}

// Register 注册新用户并写入登录状态
func (s *UserService) Register(username, displayName, email, password string) (*model.User, error) {
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to check email", err)
	}
	if existing != nil {
		return nil, errors.New(errors.ErrUserExists, "email already registered")
	}

	existing, err = s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to check username", err)
	}
	if existing != nil {
		return nil, errors.New(errors.ErrUserExists, "username already exists")
	}

	entity := &model.UserEntity{
		ID:          uuid.NewString(),
		Username:    username,
		DisplayName: displayName,
		Email:       email,
		Password:    password,
		CreatedAt:   model.NowMillis(),
	}
	if err := s.userRepo.Insert(entity); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create user", err)
	}

	if err := s.sessions.SetCurrentUserID(entity.ID); err != nil {
		util.Logger.Error("写入登录状态失败", zap.String("userId", entity.ID), zap.Error(err))
	}
	return entity.ToUser(), nil
}

// Login 校验凭据并写入登录状态
func (s *UserService) Login(email, password string) (*model.User, error) {
	entity, err := s.userRepo.GetByEmailAndPassword(email, password)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to look up user", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid email or password")
	}

	if err := s.sessions.SetCurrentUserID(entity.ID); err != nil {
		util.Logger.Error("写入登录状态失败", zap.String("userId", entity.ID), zap.Error(err))
	}
	return entity.ToUser(), nil
}

// Logout 清除登录状态
func (s *UserService) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return errors.Wrap(errors.ErrIO, "failed to clear session", err)
	}
	return nil
}

// CurrentUser 返回当前登录用户；未登录时返回未授权错误
func (s *UserService) CurrentUser() (*model.User, error) {
	id, ok := s.sessions.CurrentUserID()
	if !ok {
		return nil, errors.New(errors.ErrUnauthorized, "no active session")
	}
	return s.GetUserByID(id, id)
}

// GetUserByID 返回解析后的用户视图。
// 计数从边表实时算出，不信任存储行里的冗余值；
// isFollowing 相对于 currentUserID（可为空，表示未登录）。
func (s *UserService) GetUserByID(id, currentUserID string) (*model.User, error) {
	entity, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load user", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return s.resolveUser(entity, currentUserID)
}

// GetUserByUsername 通过用户名返回解析后的用户视图
func (s *UserService) GetUserByUsername(username, currentUserID string) (*model.User, error) {
	entity, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load user", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return s.resolveUser(entity, currentUserID)
}

func (s *UserService) resolveUser(entity *model.UserEntity, currentUserID string) (*model.User, error) {
	user := entity.ToUser()

	var err error
	if user.FollowersCount, err = s.userRepo.FollowersCount(entity.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count followers", err)
	}
	if user.FollowingCount, err = s.userRepo.FollowingCount(entity.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count following", err)
	}
	if user.PostsCount, err = s.userRepo.PostsCount(entity.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count posts", err)
	}
	if currentUserID != "" && currentUserID != entity.ID {
		if user.IsFollowing, err = s.userRepo.IsFollowing(currentUserID, entity.ID); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to check follow state", err)
		}
	}
	return user, nil
}

// UpdateProfile 更新用户的展示名、简介和头像
func (s *UserService) UpdateProfile(userID, displayName, bio, profileImageURL string) (*model.User, error) {
	entity, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load user", err)
	}
	if entity == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}

	entity.DisplayName = displayName
	entity.Bio = bio
	entity.ProfileImageURL = profileImageURL
	if err := s.userRepo.Update(entity); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to update user", err)
	}
	return s.resolveUser(entity, userID)
}

// Follow 建立关注关系并通知被关注者
func (s *UserService) Follow(followerID, followingID string) error {
	if followerID == followingID {
		return errors.New(errors.ErrBadRequest, "cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(followingID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load user", err)
	}
	if target == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	exists, err := s.followRepo.Exists(followerID, followingID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check follow state", err)
	}
	if exists {
		return errors.New(errors.ErrAlreadyFollowing, "already following this user")
	}

	follow := &model.FollowEntity{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   model.NowMillis(),
	}
	if err := s.followRepo.Insert(follow); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to create follow", err)
	}

	notification := &model.NotificationEntity{
		ID:            uuid.NewString(),
		UserID:        followingID,
		TriggerUserID: followerID,
		Type:          string(model.NotificationFollow),
		CreatedAt:     model.NowMillis(),
	}
	if err := s.notificationRepo.Insert(notification); err != nil {
		util.Logger.Error("写入关注通知失败",
			zap.String("followerId", followerID),
			zap.String("followingId", followingID), zap.Error(err))
	}
	return nil
}

// Unfollow 解除关注关系
func (s *UserService) Unfollow(followerID, followingID string) error {
	exists, err := s.followRepo.Exists(followerID, followingID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check follow state", err)
	}
	if !exists {
		return errors.New(errors.ErrNotFollowing, "not following this user")
	}
	if err := s.followRepo.Delete(followerID, followingID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete follow", err)
	}
	return nil
}

// Followers 返回用户的粉丝列表
func (s *UserService) Followers(userID string) ([]model.User, error) {
	entities, err := s.followRepo.Followers(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load followers", err)
	}
	return toUserViews(entities), nil
}

// Following 返回用户关注的人
func (s *UserService) Following(userID string) ([]model.User, error) {
	entities, err := s.followRepo.Following(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load following", err)
	}
	return toUserViews(entities), nil
}

// SearchUsers 按用户名或展示名模糊搜索
func (s *UserService) SearchUsers(query string) ([]model.User, error) {
	entities, err := s.userRepo.Search(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to search users", err)
	}
	return toUserViews(entities), nil
}

func toUserViews(entities []model.UserEntity) []model.User {
	users := make([]model.User, 0, len(entities))
	for i := range entities {
		users = append(users, *entities[i].ToUser())
	}
	return users
}
