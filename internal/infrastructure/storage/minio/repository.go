package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrObjectTooLarge = errors.New(errors.ErrCodeValidation, "object exceeds size limit")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// ObjectStorageRepository reads and writes artifact bundle objects.  An
// empty bucket argument selects the client's configured bucket.
type ObjectStorageRepository interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	Download(ctx context.Context, bucket, objectKey string) (*DownloadResult, error)
	Exists(ctx context.Context, bucket, objectKey string) (bool, error)
	List(ctx context.Context, bucket, prefix string, maxKeys int) ([]*ObjectMetadata, error)
	Get(ctx context.Context, objectKey string) ([]byte, error)
}

type UploadRequest struct {
	Bucket      string
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	VersionID  string
	UploadedAt time.Time
}

type DownloadResult struct {
	Data         []byte
	ContentType  string
	Size         int64
	ETag         string
	LastModified time.Time
}

type ObjectMetadata struct {
	ObjectKey    string
	Size         int64
	ETag         string
	LastModified time.Time
}

type minioRepository struct {
	client  *MinIOClient
	logger  logging.Logger
	maxSize int64
}

func NewMinIORepository(client *MinIOClient, log logging.Logger) ObjectStorageRepository {
	return &minioRepository{
		client:  client,
		logger:  log,
		maxSize: client.config.MaxObjectSize,
	}
}

func (r *minioRepository) bucket(b string) string {
	if b == "" {
		return r.client.Bucket()
	}
	return b
}

func (r *minioRepository) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.ObjectKey == "" {
		return nil, ErrInvalidRequest
	}
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	bucket := r.bucket(req.Bucket)
	contentType := req.ContentType
	if contentType == "" && len(req.Data) > 0 {
		contentType = http.DetectContentType(req.Data[:min(512, len(req.Data))])
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: req.Metadata,
	}
	info, err := r.client.GetClient().PutObject(ctx, bucket, req.ObjectKey, bytes.NewReader(req.Data), int64(len(req.Data)), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "upload failed")
	}
	r.logger.Debug("Uploaded object", logging.String("bucket", bucket), logging.String("key", req.ObjectKey),
		logging.Int64("size", info.Size))

	return &UploadResult{
		Bucket:     info.Bucket,
		ObjectKey:  info.Key,
		ETag:       info.ETag,
		Size:       info.Size,
		VersionID:  info.VersionID,
		UploadedAt: time.Now(),
	}, nil
}

func (r *minioRepository) Download(ctx context.Context, bucket, objectKey string) (*DownloadResult, error) {
	if objectKey == "" {
		return nil, ErrInvalidRequest
	}
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	bucket = r.bucket(bucket)
	obj, err := r.client.GetClient().GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err, "download failed")
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, translate(err, "download failed")
	}
	if stat.Size > r.maxSize {
		return nil, ErrObjectTooLarge.WithDetail(objectKey)
	}

	data, err := io.ReadAll(io.LimitReader(obj, r.maxSize+1))
	if err != nil {
		return nil, translate(err, "download failed")
	}
	if int64(len(data)) > r.maxSize {
		return nil, ErrObjectTooLarge.WithDetail(objectKey)
	}

	return &DownloadResult{
		Data:         data,
		ContentType:  stat.ContentType,
		Size:         int64(len(data)),
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

func (r *minioRepository) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	_, err := r.client.GetClient().StatObject(ctx, r.bucket(bucket), objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "stat failed")
	}
	return true, nil
}

func (r *minioRepository) List(ctx context.Context, bucket, prefix string, maxKeys int) ([]*ObjectMetadata, error) {
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	options := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   maxKeys,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []*ObjectMetadata
	for obj := range r.client.GetClient().ListObjects(ctx, r.bucket(bucket), options) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeExternalService, "list failed")
		}
		objects = append(objects, &ObjectMetadata{
			ObjectKey: obj.Key, Size: obj.Size, ETag: obj.ETag, LastModified: obj.LastModified,
		})
		if len(objects) >= maxKeys {
			break
		}
	}
	return objects, nil
}

// Get downloads objectKey from the configured bucket.
func (r *minioRepository) Get(ctx context.Context, objectKey string) ([]byte, error) {
	res, err := r.Download(ctx, "", objectKey)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func translate(err error, msg string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound.WithCause(err)
	}
	return errors.Wrap(err, errors.ErrCodeExternalService, msg)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

//Personal.AI order the ending
