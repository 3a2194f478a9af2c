package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"museart-backend/internal/errors"
	"museart-backend/internal/model"
	"museart-backend/internal/session"
)

func newUserService(t *testing.T, userRepo *MockUserRepository, followRepo *MockFollowRepository, notificationRepo *MockNotificationRepository) *UserService {
	t.Helper()
	sessions := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return NewUserService(userRepo, followRepo, notificationRepo, sessions)
}

// TestRegister 测试注册成功并写入登录状态
func TestRegister(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(t, userRepo, new(MockFollowRepository), new(MockNotificationRepository))

	userRepo.On("GetByEmail", "alice@example.com").Return(nil, nil)
	userRepo.On("GetByUsername", "alice").Return(nil, nil)
	userRepo.On("Insert", mock.AnythingOfType("*model.UserEntity")).Return(nil)

	user, err := service.Register("alice", "Alice", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)
	userRepo.AssertExpectations(t)

	// 注册即登录
	id, ok := service.sessions.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, user.ID, id)
}

// TestRegisterDuplicate 测试重复邮箱和重复用户名都被拒绝
func TestRegisterDuplicate(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(t, userRepo, new(MockFollowRepository), new(MockNotificationRepository))

	userRepo.On("GetByEmail", "taken@example.com").Return(&model.UserEntity{ID: "u1"}, nil)
	_, err := service.Register("alice", "Alice", "taken@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, errors.ErrUserExists, errors.CodeOf(err))

	userRepo.On("GetByEmail", "new@example.com").Return(nil, nil)
	userRepo.On("GetByUsername", "taken").Return(&model.UserEntity{ID: "u2"}, nil)
	_, err = service.Register("taken", "Alice", "new@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, errors.ErrUserExists, errors.CodeOf(err))
}

// TestLogin 测试登录成功和凭据错误
func TestLogin(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(t, userRepo, new(MockFollowRepository), new(MockNotificationRepository))

	userRepo.On("GetByEmailAndPassword", "alice@example.com", "pw").
		Return(&model.UserEntity{ID: "u1", Username: "alice"}, nil)
	user, err := service.Login("alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	userRepo.On("GetByEmailAndPassword", "alice@example.com", "wrong").Return(nil, nil)
	_, err = service.Login("alice@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidCredentials, errors.CodeOf(err))
}

// TestLogoutClearsSession 测试退出后没有活动会话
func TestLogoutClearsSession(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(t, userRepo, new(MockFollowRepository), new(MockNotificationRepository))

	userRepo.On("GetByEmailAndPassword", "alice@example.com", "pw").
		Return(&model.UserEntity{ID: "u1", Username: "alice"}, nil)
	_, err := service.Login("alice@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, service.Logout())
	_, err = service.CurrentUser()
	require.Error(t, err)
	assert.Equal(t, errors.ErrUnauthorized, errors.CodeOf(err))
}

// TestGetUserByID 测试视图计数从边表算出，isFollowing 相对当前用户
func TestGetUserByID(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := newUserService(t, userRepo, new(MockFollowRepository), new(MockNotificationRepository))

	entity := &model.UserEntity{
		ID: "u1", Username: "alice",
		// 缓存列故意留着过期值，视图不应读它们
		FollowersCount: 99,
	}
	userRepo.On("GetByID", "u1").Return(entity, nil)
	userRepo.On("FollowersCount", "u1").Return(2, nil)
	userRepo.On("FollowingCount", "u1").Return(3, nil)
	userRepo.On("PostsCount", "u1").Return(1, nil)
	userRepo.On("IsFollowing", "u2", "u1").Return(true, nil)

	user, err := service.GetUserByID("u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, user.FollowersCount)
	assert.Equal(t, 3, user.FollowingCount)
	assert.Equal(t, 1, user.PostsCount)
	assert.True(t, user.IsFollowing)

	userRepo.On("GetByID", "ghost").Return(nil, nil)
	_, err = service.GetUserByID("ghost", "u2")
	require.Error(t, err)
	assert.Equal(t, errors.ErrUserNotFound, errors.CodeOf(err))
}

// TestFollow 测试关注成功写入边和通知
func TestFollow(t *testing.T) {
	userRepo := new(MockUserRepository)
	followRepo := new(MockFollowRepository)
	notificationRepo := new(MockNotificationRepository)
	service := newUserService(t, userRepo, followRepo, notificationRepo)

	userRepo.On("GetByID", "u2").Return(&model.UserEntity{ID: "u2"}, nil)
	followRepo.On("Exists", "u1", "u2").Return(false, nil)
	followRepo.On("Insert", mock.AnythingOfType("*model.FollowEntity")).Return(nil)
	notificationRepo.On("Insert", mock.MatchedBy(func(n *model.NotificationEntity) bool {
		return n.UserID == "u2" && n.TriggerUserID == "u1" &&
			n.Type == string(model.NotificationFollow)
	})).Return(nil)

	require.NoError(t, service.Follow("u1", "u2"))
	followRepo.AssertExpectations(t)
	notificationRepo.AssertExpectations(t)
}

// TestFollowConflicts 测试自关注和重复关注被拒绝
func TestFollowConflicts(t *testing.T) {
	userRepo := new(MockUserRepository)
	followRepo := new(MockFollowRepository)
	service := newUserService(t, userRepo, followRepo, new(MockNotificationRepository))

	err := service.Follow("u1", "u1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrBadRequest, errors.CodeOf(err))

	userRepo.On("GetByID", "u2").Return(&model.UserEntity{ID: "u2"}, nil)
	followRepo.On("Exists", "u1", "u2").Return(true, nil)
	err = service.Follow("u1", "u2")
	require.Error(t, err)
	assert.Equal(t, errors.ErrAlreadyFollowing, errors.CodeOf(err))
}

// TestUnfollow 测试取消关注和未关注时的冲突
func TestUnfollow(t *testing.T) {
	followRepo := new(MockFollowRepository)
	service := newUserService(t, new(MockUserRepository), followRepo, new(MockNotificationRepository))

	followRepo.On("Exists", "u1", "u2").Return(true, nil).Once()
	followRepo.On("Delete", "u1", "u2").Return(nil)
	require.NoError(t, service.Unfollow("u1", "u2"))

	followRepo.On("Exists", "u1", "u2").Return(false, nil).Once()
	err := service.Unfollow("u1", "u2")
	require.Error(t, err)
	assert.Equal(t, errors.ErrNotFollowing, errors.CodeOf(err))
}
