// Package session 把当前登录用户持久化到一个小 JSON 文件，
// 进程重启后仍然有效。
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

type sessionState struct {
	CurrentUserID string `json:"currentUserId"`
}

// Store 管理当前登录用户的持久化状态
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore 创建会话存储；文件不存在视为未登录
func NewStore(path string) *Store {
	return &Store{path: path}
}

// CurrentUserID 返回当前登录用户ID；未登录时第二个返回值为 false
func (s *Store) CurrentUserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil || state.CurrentUserID == "" {
		return "", false
	}
	return state.CurrentUserID, true
}

// SetCurrentUserID 记录当前登录用户
func (s *Store) SetCurrentUserID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(sessionState{CurrentUserID: id})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Clear 清除登录状态
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
