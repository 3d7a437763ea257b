package minio

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]minio.BucketInfo), args.Error(1)
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (ObjectReader, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ObjectReader), args.Error(1)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

// fakeObject is an in-memory ObjectReader.
type fakeObject struct {
	*bytes.Reader
	info    minio.ObjectInfo
	statErr error
	closed  bool
}

func newFakeObject(data string) *fakeObject {
	return &fakeObject{
		Reader: bytes.NewReader([]byte(data)),
		info:   minio.ObjectInfo{Size: int64(len(data)), ETag: "etag-1", ContentType: "application/json", LastModified: time.Unix(1700000000, 0)},
	}
}

func (f *fakeObject) Stat() (minio.ObjectInfo, error) { return f.info, f.statErr }
func (f *fakeObject) Close() error                    { f.closed = true; return nil }

type RepositoryTestSuite struct {
	suite.Suite
	mockAPI *MockMinIOAPI
	client  *MinIOClient
	repo    ObjectStorageRepository
	log     logging.Logger
}

func (s *RepositoryTestSuite) SetupTest() {
	s.mockAPI = new(MockMinIOAPI)
	s.log = logging.NewNopLogger()
	s.client = NewMinIOClientWithAPI(s.mockAPI, &MinIOConfig{Bucket: "bundles", MaxObjectSize: 64}, s.log)
	s.repo = NewMinIORepository(s.client, s.log)
}

func (s *RepositoryTestSuite) TestUpload_Success() {
	s.mockAPI.On("PutObject", mock.Anything, "bundles", "v1/manifest.json", mock.Anything, int64(9), mock.Anything).
		Return(minio.UploadInfo{Bucket: "bundles", Key: "v1/manifest.json", ETag: "etag", Size: 9}, nil)

	res, err := s.repo.Upload(context.Background(), &UploadRequest{ObjectKey: "v1/manifest.json", Data: []byte("test data")})
	s.Require().NoError(err)
	s.Equal("bundles", res.Bucket)
	s.Equal("etag", res.ETag)
	s.Equal(int64(9), res.Size)
	s.mockAPI.AssertExpectations(s.T())
}

func (s *RepositoryTestSuite) TestUpload_InvalidRequest() {
	_, err := s.repo.Upload(context.Background(), &UploadRequest{Data: []byte("x")})
	s.ErrorIs(err, ErrInvalidRequest)
	_, err = s.repo.Upload(context.Background(), nil)
	s.ErrorIs(err, ErrInvalidRequest)
}

func (s *RepositoryTestSuite) TestUpload_Failure() {
	s.mockAPI.On("PutObject", mock.Anything, "other", "k", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	_, err := s.repo.Upload(context.Background(), &UploadRequest{Bucket: "other", ObjectKey: "k", Data: []byte("{}")})
	s.True(errors.IsCode(err, errors.ErrCodeExternalService))
}

func (s *RepositoryTestSuite) TestDownload_Success() {
	obj := newFakeObject(`{"a":1}`)
	s.mockAPI.On("GetObject", mock.Anything, "bundles", "m.json", mock.Anything).Return(obj, nil)

	res, err := s.repo.Download(context.Background(), "", "m.json")
	s.Require().NoError(err)
	s.Equal(`{"a":1}`, string(res.Data))
	s.Equal("etag-1", res.ETag)
	s.Equal("application/json", res.ContentType)
	s.True(obj.closed)
}

func (s *RepositoryTestSuite) TestDownload_NotFound() {
	obj := newFakeObject("")
	obj.statErr = minio.ErrorResponse{Code: "NoSuchKey"}
	s.mockAPI.On("GetObject", mock.Anything, "bundles", "missing", mock.Anything).Return(obj, nil)

	_, err := s.repo.Download(context.Background(), "", "missing")
	s.True(errors.IsCode(err, errors.ErrCodeNotFound))
}

func (s *RepositoryTestSuite) TestDownload_TooLarge() {
	obj := newFakeObject(string(make([]byte, 100)))
	s.mockAPI.On("GetObject", mock.Anything, "bundles", "big", mock.Anything).Return(obj, nil)

	_, err := s.repo.Download(context.Background(), "", "big")
	s.True(errors.IsCode(err, errors.ErrCodeValidation))
}

func (s *RepositoryTestSuite) TestGet() {
	s.mockAPI.On("GetObject", mock.Anything, "bundles", "model.json", mock.Anything).Return(newFakeObject("{}"), nil)

	data, err := s.repo.Get(context.Background(), "model.json")
	s.Require().NoError(err)
	s.Equal("{}", string(data))
}

func (s *RepositoryTestSuite) TestClosedClient() {
	s.Require().NoError(s.client.Close())
	_, err := s.repo.Get(context.Background(), "model.json")
	s.ErrorIs(err, ErrMinIOClientClosed)
}

func (s *RepositoryTestSuite) TestExists_True() {
	s.mockAPI.On("StatObject", mock.Anything, "bundles", "key", mock.Anything).
		Return(minio.ObjectInfo{Key: "key"}, nil)
	exists, err := s.repo.Exists(context.Background(), "", "key")
	s.NoError(err)
	s.True(exists)
}

func (s *RepositoryTestSuite) TestExists_False() {
	errResp := minio.ErrorResponse{Code: "NoSuchKey"}
	s.mockAPI.On("StatObject", mock.Anything, "bucket", "key", mock.Anything).
		Return(minio.ObjectInfo{}, errResp)
	exists, err := s.repo.Exists(context.Background(), "bucket", "key")
	s.NoError(err)
	s.False(exists)
}

func (s *RepositoryTestSuite) TestList_Success() {
	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "v1/manifest.json", Size: 100}
	ch <- minio.ObjectInfo{Key: "v1/model.json", Size: 200}
	close(ch)

	s.mockAPI.On("ListObjects", mock.Anything, "bundles", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	res, err := s.repo.List(context.Background(), "", "v1/", 0)
	s.NoError(err)
	s.Len(res, 2)
	s.Equal("v1/manifest.json", res[0].ObjectKey)
}

func (s *RepositoryTestSuite) TestList_Error() {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: assert.AnError}
	close(ch)

	s.mockAPI.On("ListObjects", mock.Anything, "bundles", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := s.repo.List(context.Background(), "", "", 10)
	s.Error(err)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

//Personal.AI order the ending
