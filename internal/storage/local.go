package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"museart-backend/internal/util"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (s *LocalStorage) Store(data []byte) (string, error) {
	name := uuid.NewString() + ".jpg"
	fullPath := filepath.Join(s.basePath, name)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("保存文件失败: %w", err)
	}

	util.Logger.Info("图片保存成功", zap.String("fullPath", fullPath))
	return fullPath, nil
}

func (s *LocalStorage) Delete(url string) bool {
	if err := os.Remove(url); err != nil {
		if os.IsNotExist(err) {
			return true
		}
		util.Logger.Warn("删除图片失败", zap.String("url", url), zap.Error(err))
		return false
	}
	return true
}
