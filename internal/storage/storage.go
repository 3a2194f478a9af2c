package storage

// ImageStore 抽象图片的存储后端
type ImageStore interface {
	// Store 保存一张图片并返回可存入数据库的 URL 或相对路径
	Store(data []byte) (string, error)
	// Delete 删除图片；成功或本来就不存在时返回 true
	Delete(url string) bool
}
