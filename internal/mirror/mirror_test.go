package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museart-backend/internal/model"
	"museart-backend/internal/util"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

// TestInitializeCreatesEightFiles 测试初始化补齐八个空数组文件
func TestInitializeCreatesEightFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Initialize())

	for _, name := range allFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.JSONEq(t, "[]", string(data), name)
	}
}

// TestInitializeKeepsExistingData 测试初始化不覆盖已有文件
func TestInitializeKeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.SaveUsers([]model.User{{ID: "u1", Username: "alice"}}))
	require.NoError(t, store.Initialize())

	users := store.LoadUsers()
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

// TestLenientRead 测试缺失和损坏的文件都按空集合处理
func TestLenientRead(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	assert.Empty(t, store.LoadPosts())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.json"),
		[]byte("{not valid json"), 0o644))
	assert.Empty(t, store.LoadPosts())
}

// TestSaveReplacesWholeCollection 测试写入是整体替换而不是追加
func TestSaveReplacesWholeCollection(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.SaveUsers([]model.User{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	}))
	require.NoError(t, store.SaveUsers([]model.User{{ID: "u3", Username: "carol"}}))

	users := store.LoadUsers()
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)
}

// TestSaveNilWritesEmptyArray 测试 nil 集合写出的是空数组而不是 null
func TestSaveNilWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.SaveLikes(nil))
	data, err := os.ReadFile(filepath.Join(dir, "likes.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

// TestConvenienceOps 测试基于整读整写的增删改便捷操作
func TestConvenienceOps(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.AddPost(model.Post{ID: "p1", Content: "first"}))
	require.NoError(t, store.AddPost(model.Post{ID: "p2", Content: "second"}))

	require.NoError(t, store.UpdatePost(model.Post{ID: "p1", Content: "edited"}))
	posts := store.LoadPosts()
	require.Len(t, posts, 2)
	assert.Equal(t, "edited", posts[0].Content)

	// 更新不存在的ID不做任何事
	require.NoError(t, store.UpdatePost(model.Post{ID: "ghost", Content: "x"}))
	assert.Len(t, store.LoadPosts(), 2)

	require.NoError(t, store.DeletePost("p1"))
	posts = store.LoadPosts()
	require.Len(t, posts, 1)
	assert.Equal(t, "p2", posts[0].ID)
}

// TestEdgeRecords 测试点赞和关注边文件的读写
func TestEdgeRecords(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.SaveLikes([]Like{{UserID: "u1", PostID: "p1"}}))
	require.NoError(t, store.SaveFollows([]Follow{{FollowerID: "u1", FollowingID: "u2"}}))

	likes := store.LoadLikes()
	require.Len(t, likes, 1)
	assert.Equal(t, "p1", likes[0].PostID)

	follows := store.LoadFollows()
	require.Len(t, follows, 1)
	assert.Equal(t, "u2", follows[0].FollowingID)
}

// TestGetByIDLookups 测试按ID查找记录，不存在时返回 nil
func TestGetByIDLookups(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.AddUser(model.User{ID: "u1", Username: "alice"}))
	require.NoError(t, store.AddPost(model.Post{ID: "p1", Content: "hello"}))
	require.NoError(t, store.AddMessage(model.Message{ID: "m1", Content: "hi"}))

	user := store.GetUserByID("u1")
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	post := store.GetPostByID("p1")
	require.NotNil(t, post)
	assert.Equal(t, "hello", post.Content)

	message := store.GetMessageByID("m1")
	require.NotNil(t, message)
	assert.Equal(t, "hi", message.Content)

	assert.Nil(t, store.GetUserByID("ghost"))
	assert.Nil(t, store.GetCommentByID("ghost"))
	assert.Nil(t, store.GetNotificationByID("ghost"))
	assert.Nil(t, store.GetChatByID("ghost"))
}

// TestUpdateAndDeleteMoreKinds 测试评论、通知、私信、会话的改删操作
func TestUpdateAndDeleteMoreKinds(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.AddComment(model.Comment{ID: "c1", Content: "nice"}))
	require.NoError(t, store.UpdateComment(model.Comment{ID: "c1", Content: "nicer"}))
	comment := store.GetCommentByID("c1")
	require.NotNil(t, comment)
	assert.Equal(t, "nicer", comment.Content)

	require.NoError(t, store.AddNotification(model.Notification{ID: "n1"}))
	require.NoError(t, store.UpdateNotification(model.Notification{ID: "n1", IsRead: true}))
	notification := store.GetNotificationByID("n1")
	require.NotNil(t, notification)
	assert.True(t, notification.IsRead)
	require.NoError(t, store.DeleteNotification("n1"))
	assert.Nil(t, store.GetNotificationByID("n1"))

	require.NoError(t, store.AddMessage(model.Message{ID: "m1", Content: "hi"}))
	require.NoError(t, store.UpdateMessage(model.Message{ID: "m1", Content: "hi!", IsRead: true}))
	message := store.GetMessageByID("m1")
	require.NotNil(t, message)
	assert.True(t, message.IsRead)
	require.NoError(t, store.DeleteMessage("m1"))
	assert.Nil(t, store.GetMessageByID("m1"))

	require.NoError(t, store.AddChat(model.Chat{ID: "ch1"}))
	require.NoError(t, store.DeleteChat("ch1"))
	assert.Nil(t, store.GetChatByID("ch1"))
}

// TestEdgeConvenienceOps 测试点赞与关注边的增删和存在性判断
func TestEdgeConvenienceOps(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.AddLike("u1", "p1"))
	// 重复添加不产生第二条边
	require.NoError(t, store.AddLike("u1", "p1"))
	assert.Len(t, store.LoadLikes(), 1)
	assert.True(t, store.IsPostLiked("u1", "p1"))
	assert.False(t, store.IsPostLiked("u2", "p1"))

	require.NoError(t, store.RemoveLike("u1", "p1"))
	assert.False(t, store.IsPostLiked("u1", "p1"))
	assert.Empty(t, store.LoadLikes())

	require.NoError(t, store.AddFollow("u1", "u2"))
	require.NoError(t, store.AddFollow("u1", "u2"))
	assert.Len(t, store.LoadFollows(), 1)
	assert.True(t, store.IsFollowing("u1", "u2"))
	assert.False(t, store.IsFollowing("u2", "u1"))

	require.NoError(t, store.RemoveFollow("u1", "u2"))
	assert.False(t, store.IsFollowing("u1", "u2"))
}
