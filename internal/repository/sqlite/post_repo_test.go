package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museart-backend/internal/model"
)

// TestPostCounters 测试帖子聚合计数的事务性增减
func TestPostCounters(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)

	seedUser(t, db, "alice")
	seedPost(t, db, "p1", "alice")

	require.NoError(t, repo.IncrementLikesCount("p1"))
	require.NoError(t, repo.IncrementLikesCount("p1"))
	require.NoError(t, repo.IncrementCommentsCount("p1"))
	require.NoError(t, repo.IncrementRepostsCount("p1"))

	got, err := repo.GetByID("p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount)
	assert.Equal(t, 1, got.RepostsCount)

	require.NoError(t, repo.DecrementLikesCount("p1"))
	got, err = repo.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
}

// TestPostCounterUnderflow 递减没有下界保护：从 0 减会落到 -1。
// 业务层的取消点赞总是先检查边存在，正常流程到不了这里。
func TestPostCounterUnderflow(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)

	seedUser(t, db, "alice")
	seedPost(t, db, "p1", "alice")

	require.NoError(t, repo.DecrementLikesCount("p1"))

	got, err := repo.GetByID("p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, -1, got.LikesCount)
}

// TestPostCounterMissingIsNoop 测试对不存在的帖子增减计数静默忽略
func TestPostCounterMissingIsNoop(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)

	require.NoError(t, repo.IncrementLikesCount("ghost"))
	require.NoError(t, repo.DecrementCommentsCount("ghost"))
}

// TestPostDerivedCounts 测试从边表实时算出的帖子计数
func TestPostDerivedCounts(t *testing.T) {
	db := openTestDB(t)
	postRepo := NewPostRepository(db)
	likeRepo := NewLikeRepository(db)

	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedPost(t, db, "p1", "alice")
	seedComment(t, db, "c1", "p1", "bob")
	require.NoError(t, likeRepo.Insert(&model.LikeEntity{
		UserID: "bob", PostID: "p1", CreatedAt: model.NowMillis()}))

	likes, err := postRepo.LikesCount("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	comments, err := postRepo.CommentsCount("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, comments)

	isLiked, err := postRepo.IsLiked("bob", "p1")
	require.NoError(t, err)
	assert.True(t, isLiked)

	isLiked, err = postRepo.IsLiked("alice", "p1")
	require.NoError(t, err)
	assert.False(t, isLiked)
}

// TestFeed 测试信息流只含被关注者的帖子，按时间倒序
func TestFeed(t *testing.T) {
	db := openTestDB(t)
	postRepo := NewPostRepository(db)
	followRepo := NewFollowRepository(db)

	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedUser(t, db, "carol")

	older := &model.PostEntity{ID: "p1", UserID: "bob", Content: "first", CreatedAt: 1000}
	newer := &model.PostEntity{ID: "p2", UserID: "bob", Content: "second", CreatedAt: 2000}
	other := &model.PostEntity{ID: "p3", UserID: "carol", Content: "hidden", CreatedAt: 3000}
	require.NoError(t, postRepo.Insert(older))
	require.NoError(t, postRepo.Insert(newer))
	require.NoError(t, postRepo.Insert(other))

	require.NoError(t, followRepo.Insert(&model.FollowEntity{
		FollowerID: "alice", FollowingID: "bob", CreatedAt: model.NowMillis()}))

	feed, err := postRepo.Feed("alice")
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "p2", feed[0].ID)
	assert.Equal(t, "p1", feed[1].ID)
}

// TestRepostChainResolvesOneLevel 测试转发指针的存取
func TestRepostChainResolvesOneLevel(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)

	seedUser(t, db, "alice")
	seedPost(t, db, "p1", "alice")

	originalID := "p1"
	require.NoError(t, repo.Insert(&model.PostEntity{
		ID: "p2", UserID: "alice", OriginalPostID: &originalID,
		CreatedAt: model.NowMillis()}))

	got, err := repo.GetByID("p2")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.OriginalPostID)
	assert.Equal(t, "p1", *got.OriginalPostID)
}

// TestDuplicateLikeViolatesKey 同一条边不能重复存在：
// 复合主键的重复插入走覆盖语义，边的条数保持不变
func TestDuplicateLikeViolatesKey(t *testing.T) {
	db := openTestDB(t)
	likeRepo := NewLikeRepository(db)

	seedUser(t, db, "alice")
	seedPost(t, db, "p1", "alice")

	like := &model.LikeEntity{UserID: "alice", PostID: "p1", CreatedAt: model.NowMillis()}
	require.NoError(t, likeRepo.Insert(like))
	require.NoError(t, likeRepo.Insert(like))

	all, err := likeRepo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
