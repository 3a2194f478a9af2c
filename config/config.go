package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	DBPath              string
	MirrorDir           string
	SessionFile         string
	LogLevel            string
	StorageBackend      string // local / s3 / gcs
	LocalStoragePath    string
	S3Region            string
	S3Bucket            string
	GCSProjectID        string
	GCSBucketName       string
	GCSCredentialsFile  string
	SyncIntervalSeconds int // 0 表示不做周期性导出
	Debug               bool
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	// 从环境变量中读取配置
	AppConfig = Config{
		DBPath:              getEnv("DB_PATH", "./data/museart.db"),
		MirrorDir:           getEnv("MIRROR_DIR", "./data/json_data"),
		SessionFile:         getEnv("SESSION_FILE", "./data/session.json"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		StorageBackend:      getEnv("STORAGE_BACKEND", "local"),
		LocalStoragePath:    getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		S3Region:            getEnv("S3_REGION", "us-west-2"),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		GCSProjectID:        getEnv("GCS_PROJECT_ID", ""),
		GCSBucketName:       getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile:  getEnv("GCS_CREDENTIALS_FILE", ""),
		SyncIntervalSeconds: getEnvAsInt("SYNC_INTERVAL_SECONDS", 0),
		Debug:               getEnvAsBool("DEBUG", true),
	}

	validateConfig()

	log.Printf("配置加载完成。数据库：%s，镜像目录：%s", AppConfig.DBPath, AppConfig.MirrorDir)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	if AppConfig.DBPath == "" || AppConfig.MirrorDir == "" {
		log.Fatal("错误：存储路径配置不完整")
	}
	switch AppConfig.StorageBackend {
	case "local":
		if AppConfig.LocalStoragePath == "" {
			log.Fatal("错误：本地存储路径未设置")
		}
	case "s3":
		if AppConfig.S3Region == "" || AppConfig.S3Bucket == "" {
			log.Fatal("错误：S3 配置不完整")
		}
	case "gcs":
		if AppConfig.GCSBucketName == "" || AppConfig.GCSCredentialsFile == "" {
			log.Fatal("错误：GCS 配置不完整")
		}
	default:
		log.Fatalf("错误：未知的存储后端 %q", AppConfig.StorageBackend)
	}
}
