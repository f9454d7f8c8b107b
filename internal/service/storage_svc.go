package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// ==================== 接口定义 ====================

// StorageProvider 媒体存储（页面封面、商品图片）
type StorageProvider interface {
	// Upload 上传文件，返回公开访问URL
	Upload(ctx context.Context, data []byte, key string, contentType string) (url string, err error)

	// Delete 删除文件
	Delete(ctx context.Context, url string) error
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // S3 兼容端点（MinIO/R2 等）；local 时为访问前缀
	CDNDomain string // CDN域名 (可选)
	BasePath  string // s3 为 key 前缀；local 为磁盘目录
}

func NewStorageProvider(cfg StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local", "":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== 媒体服务 ====================

// MaxImageSize 单张图片上限
const MaxImageSize = 8 << 20

// allowedImageTypes 允许上传的图片类型 -> 扩展名
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// MediaService 校验并保存商家上传的图片
type MediaService struct {
	provider StorageProvider
	http     *resty.Client
	now      func() time.Time
}

func NewMediaService(provider StorageProvider) *MediaService {
	return &MediaService{
		provider: provider,
		http:     resty.New().SetTimeout(30 * time.Second),
		now:      time.Now,
	}
}

// UploadImage 按内容（而非文件名）识别类型，只接受图片
func (s *MediaService) UploadImage(ctx context.Context, ownerID string, data []byte) (string, error) {
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("%w: 文件大小 %d", ErrFileTooLarge, len(data))
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: 空文件", ErrUnsupportedFile)
	}
	mtype := mimetype.Detect(data)
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, mtype.String())
	}
	return s.provider.Upload(ctx, data, s.generateKey(ownerID, ext), mtype.String())
}

// ImportImage 从外部 URL 拉取图片并转存
// 响应体不经 resty 缓冲，最多读取 MaxImageSize+1 字节
func (s *MediaService) ImportImage(ctx context.Context, ownerID, sourceURL string) (string, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(sourceURL)
	if err != nil {
		return "", fmt.Errorf("下载失败: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("下载失败: HTTP %d", resp.StatusCode())
	}
	if resp.RawResponse.ContentLength > MaxImageSize {
		return "", fmt.Errorf("%w: Content-Length %d", ErrFileTooLarge, resp.RawResponse.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("下载失败: %w", err)
	}
	return s.UploadImage(ctx, ownerID, data)
}

// Delete 只允许删除自己目录下的文件
func (s *MediaService) Delete(ctx context.Context, ownerID, url string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrOwnerRequired
	}
	if !strings.Contains(url, "/"+ownerSegment(ownerID)+"/") {
		return ErrMediaNotFound
	}
	return s.provider.Delete(ctx, url)
}

// generateKey owner/日期/uuid.ext
func (s *MediaService) generateKey(ownerID, ext string) string {
	return path.Join(ownerSegment(ownerID), s.now().Format("2006/01/02"), uuid.New().String()+ext)
}

// ownerSegment owner 作为单级目录名
func ownerSegment(ownerID string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '_'
		}
		return r
	}, ownerID)
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	cdnDomain string
	basePath  string
}

func NewS3Storage(cfg StorageConfig) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		cdnDomain: cfg.CDNDomain,
		basePath:  strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, key string, contentType string) (string, error) {
	if s.basePath != "" {
		key = s.basePath + "/" + key
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %v", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key := s.extractKey(url)
	if key == "" {
		return fmt.Errorf("无法解析文件路径")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) urlPrefix() string {
	switch {
	case s.cdnDomain != "":
		return fmt.Sprintf("https://%s/", s.cdnDomain)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/", s.endpoint, s.bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	}
}

func (s *S3Storage) publicURL(key string) string {
	return s.urlPrefix() + key
}

func (s *S3Storage) extractKey(url string) string {
	prefix := s.urlPrefix()
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

// ==================== 本地存储 (开发测试用) ====================

type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(cfg StorageConfig) (*LocalStorage, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./uploads"
	}
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = "/uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Dir 本地文件根目录（路由挂载静态文件时使用）
func (s *LocalStorage) Dir() string {
	return s.basePath
}

func (s *LocalStorage) Upload(_ context.Context, data []byte, key string, _ string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalStorage) Delete(_ context.Context, url string) error {
	key := strings.TrimPrefix(url, s.baseURL+"/")
	if key == url || key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("无法解析文件路径")
	}
	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
