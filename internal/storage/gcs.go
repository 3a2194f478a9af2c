package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"museart-backend/internal/util"
)

type GCSClient struct {
	client     *storage.Client
	bucketName string
}

func NewGCSClient(projectID, bucketName, credentialsFile string) (*GCSClient, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}

	return &GCSClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *GCSClient) Store(data []byte) (string, error) {
	ctx := context.Background()
	name := uuid.NewString() + ".jpg"
	obj := c.client.Bucket(c.bucketName).Object(name)

	writer := obj.NewWriter(ctx)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, name), nil
}

func (c *GCSClient) Delete(url string) bool {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return false
	}
	name := url[idx+1:]

	ctx := context.Background()
	err := c.client.Bucket(c.bucketName).Object(name).Delete(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return true
		}
		util.Logger.Warn("删除GCS对象失败", zap.String("object", name), zap.Error(err))
		return false
	}
	return true
}
