package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museart-backend/internal/model"
)

func seedNotification(t *testing.T, db *DB, id, userID, triggerUserID string, typ model.NotificationType, createdAt int64) {
	t.Helper()
	require.NoError(t, NewNotificationRepository(db).Insert(&model.NotificationEntity{
		ID: id, UserID: userID, TriggerUserID: triggerUserID,
		Type: string(typ), CreatedAt: createdAt}))
}

// TestNotificationQueries 测试通知按收件人查询和提及过滤
func TestNotificationQueries(t *testing.T) {
	db := openTestDB(t)
	repo := NewNotificationRepository(db)

	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedNotification(t, db, "n1", "alice", "bob", model.NotificationLike, 1000)
	seedNotification(t, db, "n2", "alice", "bob", model.NotificationMention, 2000)
	seedNotification(t, db, "n3", "bob", "alice", model.NotificationFollow, 3000)

	notifications, err := repo.GetByUserID("alice")
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, "n2", notifications[0].ID)

	mentions, err := repo.Mentions("alice")
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, "n2", mentions[0].ID)
}

// TestNotificationReadFlow 测试未读计数和已读标记
func TestNotificationReadFlow(t *testing.T) {
	db := openTestDB(t)
	repo := NewNotificationRepository(db)

	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	seedNotification(t, db, "n1", "alice", "bob", model.NotificationLike, 1000)
	seedNotification(t, db, "n2", "alice", "bob", model.NotificationComment, 2000)

	unread, err := repo.UnreadCount("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, repo.MarkAsRead("n1"))
	unread, err = repo.UnreadCount("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, repo.MarkAllAsRead("alice"))
	unread, err = repo.UnreadCount("alice")
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}
