package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
)

// minioAPI is the part of *minio.Client the store uses.
type minioAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

var newMinioClient = func(endpoint string, opts *minio.Options) (minioAPI, error) {
	return minio.New(endpoint, opts)
}

type MinioOptions struct {
	Endpoint  string // "host:port" or a URL with http/https scheme
	AccessKey string
	SecretKey string
	Bucket    string
}

// MinioStore keeps photos as s3://<bucket>/<vehicle_id>/<name> on a MinIO
// server.
type MinioStore struct {
	client minioAPI
	bucket string
}

// normaliseEndpoint converts a configured endpoint into the host:port form
// minio.New expects, reporting whether TLS should be used.
func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

// NewMinioStore connects to MinIO and creates the bucket if it is missing.
func NewMinioStore(ctx context.Context, o MinioOptions) (*MinioStore, error) {
	if o.Bucket == "" {
		return nil, errors.New("minio bucket is not set")
	}

	endpoint, secure, err := normaliseEndpoint(o.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := newMinioClient(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, o.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, o.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: o.Bucket}, nil
}

// Save refuses to overwrite: an object that already exists yields
// common.ErrPhotoExists. The check and the write are not atomic.
func (s *MinioStore) Save(ctx context.Context, vehicleID, name string, r io.Reader) (string, error) {
	key := objectKey(vehicleID, name)

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return "", common.ErrPhotoExists
	case !isMinioNotFound(err):
		return "", fmt.Errorf("minio stat %s: %w", key, err)
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType(name),
	}); err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}

	return "s3://" + s.bucket + "/" + key, nil
}

func (s *MinioStore) List(ctx context.Context) ([]VehicleObjects, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio list: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return groupKeys(keys), nil
}

func (s *MinioStore) Open(ctx context.Context, vehicleID, name string) (io.ReadCloser, ObjectInfo, error) {
	key := objectKey(vehicleID, name)

	st, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, ObjectInfo{}, common.ErrorNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("minio stat %s: %w", key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("minio get %s: %w", key, err)
	}

	info := ObjectInfo{Size: st.Size, ContentType: st.ContentType, ModTime: st.LastModified}
	if info.ContentType == "" {
		info.ContentType = contentType(name)
	}
	return obj, info, nil
}

func isMinioNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
