package artifacts

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/turtacn/ToxPredict/internal/infrastructure/storage/minio"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

// Source reads bundle files by name, relative to the bundle root.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
	String() string
}

// FileSource reads bundle files from a local directory.
type FileSource struct {
	Dir string
}

func (s FileSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.Dir, filepath.FromSlash(name))
	}
	data, err := os.ReadFile(p)
	if err != nil {
		code := errors.ErrCodeBundleUnreachable
		if os.IsNotExist(err) {
			code = errors.ErrCodeNotFound
		}
		return nil, errors.Wrap(err, code, "read bundle file "+name)
	}
	return data, nil
}

func (s FileSource) String() string { return "file://" + s.Dir }

// ObjectSource reads bundle files from object storage under Prefix.
type ObjectSource struct {
	Repo   minio.ObjectStorageRepository
	Bucket string
	Prefix string
}

func (s ObjectSource) key(name string) string {
	return path.Join(strings.Trim(s.Prefix, "/"), name)
}

func (s ObjectSource) Read(ctx context.Context, name string) ([]byte, error) {
	res, err := s.Repo.Download(ctx, s.Bucket, s.key(name))
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeBundleUnreachable, "read bundle object "+s.key(name))
	}
	return res.Data, nil
}

func (s ObjectSource) String() string {
	return "s3://" + path.Join(s.Bucket, strings.Trim(s.Prefix, "/"))
}

//Personal.AI order the ending
