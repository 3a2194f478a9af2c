package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"museart-backend/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, id string) *model.UserEntity {
	t.Helper()
	user := &model.UserEntity{
		ID:          id,
		Username:    id,
		DisplayName: "User " + id,
		Email:       id + "@example.com",
		Password:    "password123",
		CreatedAt:   model.NowMillis(),
	}
	require.NoError(t, NewUserRepository(db).Insert(user))
	return user
}

func seedPost(t *testing.T, db *DB, id, userID string) *model.PostEntity {
	t.Helper()
	post := &model.PostEntity{
		ID:        id,
		UserID:    userID,
		Content:   "post " + id,
		CreatedAt: model.NowMillis(),
	}
	require.NoError(t, NewPostRepository(db).Insert(post))
	return post
}

func seedComment(t *testing.T, db *DB, id, postID, userID string) *model.CommentEntity {
	t.Helper()
	comment := &model.CommentEntity{
		ID:        id,
		PostID:    postID,
		UserID:    userID,
		Content:   "comment " + id,
		CreatedAt: model.NowMillis(),
	}
	require.NoError(t, NewCommentRepository(db).Insert(comment))
	return comment
}

func seedMessage(t *testing.T, db *DB, id, senderID, receiverID string) *model.MessageEntity {
	t.Helper()
	message := &model.MessageEntity{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    "message " + id,
		CreatedAt:  model.NowMillis(),
	}
	require.NoError(t, NewMessageRepository(db).Insert(message))
	return message
}
