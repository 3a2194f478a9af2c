package syncer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museart-backend/internal/mirror"
	"museart-backend/internal/model"
	"museart-backend/internal/repository/sqlite"
	"museart-backend/internal/util"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

// 仓库构造函数返回未导出类型，夹具里按 GetAll 能力持有
type fixture struct {
	db        *sqlite.DB
	mirror    *mirror.Store
	mirrorDir string
	syncer    *Synchronizer

	userRepo      interface{ GetAll() ([]model.UserEntity, error) }
	postRepo      interface{ GetAll() ([]model.PostEntity, error) }
	likeRepo      interface{ GetAll() ([]model.LikeEntity, error) }
	followRepo    interface{ GetAll() ([]model.FollowEntity, error) }
	chatRepo      interface{ GetAll() ([]model.ChatEntity, error) }
	resetDatabase func() error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tmp := t.TempDir()
	db, err := sqlite.Open(filepath.Join(tmp, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mirrorDir := filepath.Join(tmp, "json_data")
	mirrorStore := mirror.NewStore(mirrorDir)

	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	likeRepo := sqlite.NewLikeRepository(db)
	followRepo := sqlite.NewFollowRepository(db)
	notificationRepo := sqlite.NewNotificationRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	chatRepo := sqlite.NewChatRepository(db)

	return &fixture{
		db:            db,
		mirror:        mirrorStore,
		mirrorDir:     mirrorDir,
		userRepo:      userRepo,
		postRepo:      postRepo,
		likeRepo:      likeRepo,
		followRepo:    followRepo,
		chatRepo:      chatRepo,
		resetDatabase: db.Reset,
		syncer: New(userRepo, postRepo, commentRepo, likeRepo, followRepo,
			notificationRepo, messageRepo, chatRepo, mirrorStore),
	}
}

func (f *fixture) seedUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, sqlite.NewUserRepository(f.db).Insert(&model.UserEntity{
		ID: id, Username: id, DisplayName: "User " + id,
		Email: id + "@example.com", Password: "pw", CreatedAt: model.NowMillis()}))
}

// TestExportEmptyStore 测试空存储导出得到八个空数组文件
func TestExportEmptyStore(t *testing.T) {
	f := newFixture(t)

	f.syncer.ExportToMirror()

	for _, name := range []string{
		"users.json", "posts.json", "comments.json", "notifications.json",
		"messages.json", "chats.json", "likes.json", "follows.json",
	} {
		data, err := os.ReadFile(filepath.Join(f.mirrorDir, name))
		require.NoError(t, err, name)
		assert.JSONEq(t, "[]", string(data), name)
	}
}

// TestImportEmptyMirror 测试导入空镜像后每类实体都是零条
func TestImportEmptyMirror(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.syncer.ImportFromMirror())

	users, err := f.userRepo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, users)

	posts, err := f.postRepo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, posts)

	likes, err := f.likeRepo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, likes)
}

// TestRoundTrip 测试导出再导入还原用户、帖子内容和边关系。
// 凭据和边时间戳不跨镜像保留，导入后是占位值和新时间。
func TestRoundTrip(t *testing.T) {
	f := newFixture(t)

	f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	require.NoError(t, sqlite.NewPostRepository(f.db).Insert(&model.PostEntity{
		ID: "p1", UserID: "alice", Content: "hello world", CreatedAt: model.NowMillis()}))
	require.NoError(t, sqlite.NewLikeRepository(f.db).Insert(&model.LikeEntity{
		UserID: "bob", PostID: "p1", CreatedAt: model.NowMillis()}))
	require.NoError(t, sqlite.NewFollowRepository(f.db).Insert(&model.FollowEntity{
		FollowerID: "bob", FollowingID: "alice", CreatedAt: model.NowMillis()}))

	f.syncer.ExportToMirror()
	require.NoError(t, f.resetDatabase())
	require.NoError(t, f.syncer.ImportFromMirror())

	users, err := f.userRepo.GetAll()
	require.NoError(t, err)
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
		assert.Equal(t, u.Username+"@example.com", u.Email)
		assert.Equal(t, "password123", u.Password)
	}
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)

	posts, err := f.postRepo.GetAll()
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello world", posts[0].Content)

	likes, err := f.likeRepo.GetAll()
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "bob", likes[0].UserID)

	follows, err := f.followRepo.GetAll()
	require.NoError(t, err)
	require.Len(t, follows, 1)
	assert.Equal(t, "alice", follows[0].FollowingID)
}

// TestRepostRoundTrip 测试含转发帖的镜像能完整导入。
// 镜像按时间倒序写出，转发帖排在原帖前面，导入必须仍满足自引用外键。
func TestRepostRoundTrip(t *testing.T) {
	f := newFixture(t)

	f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	original := "p1"
	require.NoError(t, sqlite.NewPostRepository(f.db).Insert(&model.PostEntity{
		ID: "p1", UserID: "alice", Content: "original", CreatedAt: 1000,
		RepostsCount: 1}))
	require.NoError(t, sqlite.NewPostRepository(f.db).Insert(&model.PostEntity{
		ID: "p2", UserID: "bob", Content: "quote", CreatedAt: 2000,
		OriginalPostID: &original}))

	f.syncer.ExportToMirror()
	require.NoError(t, f.resetDatabase())
	require.NoError(t, f.syncer.ImportFromMirror())

	posts, err := f.postRepo.GetAll()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	byID := make(map[string]model.PostEntity, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	require.NotNil(t, byID["p2"].OriginalPostID)
	assert.Equal(t, "p1", *byID["p2"].OriginalPostID)
	assert.Nil(t, byID["p1"].OriginalPostID)
	assert.Equal(t, 1, byID["p1"].RepostsCount)
}

// TestExportDenormalizesViews 测试导出的帖子内嵌作者视图且不带凭据
func TestExportDenormalizesViews(t *testing.T) {
	f := newFixture(t)

	f.seedUser(t, "alice")
	require.NoError(t, sqlite.NewPostRepository(f.db).Insert(&model.PostEntity{
		ID: "p1", UserID: "alice", Content: "hello", CreatedAt: model.NowMillis()}))

	f.syncer.ExportToMirror()

	posts := f.mirror.LoadPosts()
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].User)
	assert.Equal(t, "alice", posts[0].User.Username)

	// 用户文件本身也不携带邮箱密码字段
	data, err := os.ReadFile(filepath.Join(f.mirrorDir, "users.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "email")
}

// TestExportResolvesRepostOneLevel 测试导出时转发源解析一层
func TestExportResolvesRepostOneLevel(t *testing.T) {
	f := newFixture(t)

	f.seedUser(t, "alice")
	postRepo := sqlite.NewPostRepository(f.db)
	require.NoError(t, postRepo.Insert(&model.PostEntity{
		ID: "p1", UserID: "alice", Content: "original", CreatedAt: model.NowMillis()}))
	originalID := "p1"
	require.NoError(t, postRepo.Insert(&model.PostEntity{
		ID: "p2", UserID: "alice", Content: "",
		OriginalPostID: &originalID, CreatedAt: model.NowMillis()}))

	f.syncer.ExportToMirror()

	posts := f.mirror.LoadPosts()
	require.Len(t, posts, 2)
	var repost *model.Post
	for i := range posts {
		if posts[i].ID == "p2" {
			repost = &posts[i]
		}
	}
	require.NotNil(t, repost)
	require.NotNil(t, repost.OriginalPost)
	assert.Equal(t, "original", repost.OriginalPost.Content)
	assert.Nil(t, repost.OriginalPost.OriginalPost)
}

// TestImportOrderSatisfiesForeignKeys 测试镜像里的外键依赖按序导入
func TestImportOrderSatisfiesForeignKeys(t *testing.T) {
	f := newFixture(t)

	f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	require.NoError(t, sqlite.NewMessageRepository(f.db).Insert(&model.MessageEntity{
		ID: "m1", SenderID: "alice", ReceiverID: "bob",
		Content: "hi", CreatedAt: model.NowMillis()}))
	lastID := "m1"
	require.NoError(t, sqlite.NewChatRepository(f.db).Insert(&model.ChatEntity{
		ID: "ch1", User1ID: "alice", User2ID: "bob",
		LastMessageID: &lastID, UnreadCount: 1, UpdatedAt: model.NowMillis()}))

	f.syncer.ExportToMirror()
	require.NoError(t, f.resetDatabase())
	require.NoError(t, f.syncer.ImportFromMirror())

	chats, err := f.chatRepo.GetAll()
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.NotNil(t, chats[0].LastMessageID)
	assert.Equal(t, "m1", *chats[0].LastMessageID)
	assert.Equal(t, 1, chats[0].UnreadCount)
}
