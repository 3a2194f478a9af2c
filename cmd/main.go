package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"museart-backend/config"
	"museart-backend/internal/app"
	"museart-backend/internal/common"
	"museart-backend/internal/errors"
	"museart-backend/internal/mirror"
	"museart-backend/internal/repository/sqlite"
	"museart-backend/internal/session"
	"museart-backend/internal/storage"
	"museart-backend/internal/util"
)

func main() {
	// 在 main 函数开始处添加
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	if err := os.MkdirAll(filepath.Dir(config.AppConfig.DBPath), 0o755); err != nil {
		util.Logger.Fatal("创建数据目录失败", zap.Error(err))
	}

	// 打开数据库，启动瞬间的忙等待用重试兜底
	var db *sqlite.DB
	err := common.WithRetry(func() error {
		var openErr error
		db, openErr = sqlite.Open(config.AppConfig.DBPath)
		return openErr
	}, 3)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	mirrorStore := mirror.NewStore(config.AppConfig.MirrorDir)
	sessions := session.NewStore(config.AppConfig.SessionFile)
	images := newImageStore()

	application := app.New(db, mirrorStore, sessions, images)

	// 恢复上次的登录状态，仅做记录
	if user, err := application.Users.CurrentUser(); err == nil {
		util.Logger.Info("恢复登录状态", zap.String("username", user.Username))
	} else if errors.CodeOf(err) != errors.ErrUnauthorized {
		util.Logger.Warn("恢复登录状态失败", zap.Error(err))
	}

	// 启动时后台导入一次镜像，失败只记日志
	go func() {
		if err := application.Synchronizer.ImportFromMirror(); err != nil {
			util.Logger.Error("启动导入镜像失败", zap.Error(err))
		}
	}()

	// 周期性导出
	stopExport := make(chan struct{})
	if config.AppConfig.SyncIntervalSeconds > 0 {
		interval := time.Duration(config.AppConfig.SyncIntervalSeconds) * time.Second
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					application.Synchronizer.ExportToMirror()
				case <-stopExport:
					return
				}
			}
		}()
	}

	// 等待退出信号，退出前导出一次镜像
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stopExport)

	util.Logger.Info("收到退出信号，导出镜像后关闭")
	application.Synchronizer.ExportToMirror()
	util.Logger.Info("应用程序已退出")
}

// newImageStore 按配置选择图片存储后端，失败直接终止进程
func newImageStore() storage.ImageStore {
	switch config.AppConfig.StorageBackend {
	case "s3":
		client, err := storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
		if err != nil {
			util.Logger.Fatal("初始化S3存储失败", zap.Error(err))
		}
		return client
	case "gcs":
		client, err := storage.NewGCSClient(
			config.AppConfig.GCSProjectID,
			config.AppConfig.GCSBucketName,
			config.AppConfig.GCSCredentialsFile)
		if err != nil {
			util.Logger.Fatal("初始化GCS存储失败", zap.Error(err))
		}
		return client
	default:
		local, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
		if err != nil {
			util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
		}
		return local
	}
}
