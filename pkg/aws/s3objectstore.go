package aws

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/resizeto/resizeto/pkg/store"
	"github.com/resizeto/resizeto/pkg/store/objectstore"
)

// S3ObjectStore implements the objectstore.ObjectStore interface on S3
type S3ObjectStore struct {
	s3Client *s3.Client
	uploader *manager.Uploader
}

var _ objectstore.ObjectStore = (*S3ObjectStore)(nil)

func NewS3ObjectStore(cfg aws.Config, opts ...func(*s3.Options)) *S3ObjectStore {
	client := s3.NewFromConfig(cfg, opts...)
	return &S3ObjectStore{
		s3Client: client,
		uploader: manager.NewUploader(client),
	}
}

// Get implements objectstore.ObjectStore.
func (s *S3ObjectStore) Get(ctx context.Context, bucket, key string) (objectstore.Object, error) {
	outPut, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &s3Object{outPut}, nil
}

// Put implements objectstore.ObjectStore. The body is uploaded as it is read,
// in parts when it is larger than the part size, so its length need not be
// known up front.
func (s *S3ObjectStore) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) (objectstore.PutResult, error) {
	outPut, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return objectstore.PutResult{}, err
	}
	return objectstore.PutResult{
		ETag:      aws.ToString(outPut.ETag),
		Location:  outPut.Location,
		VersionID: aws.ToString(outPut.VersionID),
	}, nil
}

type s3Object struct {
	outPut *s3.GetObjectOutput
}

var _ objectstore.Object = (*s3Object)(nil)

// Body implements objectstore.Object.
func (s *s3Object) Body() io.ReadCloser {
	return s.outPut.Body
}

// ContentType implements objectstore.Object.
func (s *s3Object) ContentType() string {
	return aws.ToString(s.outPut.ContentType)
}

// Size implements objectstore.Object.
func (s *s3Object) Size() int64 {
	if s.outPut.ContentLength == nil {
		return -1
	}
	return *s.outPut.ContentLength
}
