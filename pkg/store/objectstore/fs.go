package objectstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/resizeto/resizeto/pkg/store"
)

const (
	metaDir            = ".meta"
	tmpDir             = ".tmp"
	defaultContentType = "application/octet-stream"
)

type FileObject struct {
	f           *os.File
	contentType string
	size        int64
}

func (o FileObject) Body() io.ReadCloser { return o.f }
func (o FileObject) ContentType() string { return o.contentType }
func (o FileObject) Size() int64         { return o.size }

// FsStore is an [ObjectStore] that keeps each bucket in a directory under a
// root directory. Writes go to a temporary file that is moved into place only
// once the body has been read completely.
type FsStore struct {
	rootdir string
}

var _ ObjectStore = (*FsStore)(nil)

func NewFsStore(rootdir string) (*FsStore, error) {
	for _, dir := range []string{rootdir, filepath.Join(rootdir, tmpDir), filepath.Join(rootdir, metaDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("root directory not writable: %w", err)
		}
	}
	return &FsStore{rootdir}, nil
}

// toPath maps bucket and key to a path below base, rejecting names that
// would escape it.
func toPath(base, bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." || strings.HasPrefix(bucket, ".") {
		return "", fmt.Errorf("invalid bucket name: %q", bucket)
	}
	if key == "" || path.Clean("/"+key) != "/"+key {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(base, bucket, filepath.FromSlash(key)), nil
}

func (s *FsStore) Get(ctx context.Context, bucket, key string) (Object, error) {
	n, err := toPath(s.rootdir, bucket, key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(n)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}

	inf, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if inf.IsDir() {
		f.Close()
		return nil, store.ErrNotFound
	}

	contentType := defaultContentType
	if m, err := toPath(filepath.Join(s.rootdir, metaDir), bucket, key); err == nil {
		if b, err := os.ReadFile(m); err == nil && len(b) > 0 {
			contentType = string(b)
		}
	}

	return FileObject{f: f, contentType: contentType, size: inf.Size()}, nil
}

func (s *FsStore) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) (PutResult, error) {
	n, err := toPath(s.rootdir, bucket, key)
	if err != nil {
		return PutResult{}, err
	}
	m, err := toPath(filepath.Join(s.rootdir, metaDir), bucket, key)
	if err != nil {
		return PutResult{}, err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.rootdir, tmpDir), "put-*")
	if err != nil {
		return PutResult{}, fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	hash := md5.New()
	_, err = io.Copy(tmp, io.TeeReader(body, hash))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return PutResult{}, fmt.Errorf("writing file: %w", err)
	}

	for _, dir := range []string{filepath.Dir(n), filepath.Dir(m)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return PutResult{}, fmt.Errorf("creating intermediate directories: %w", err)
		}
	}
	if err := os.Rename(tmp.Name(), n); err != nil {
		return PutResult{}, fmt.Errorf("moving file into place: %w", err)
	}
	if err := os.WriteFile(m, []byte(contentType), 0644); err != nil {
		return PutResult{}, fmt.Errorf("writing metadata: %w", err)
	}

	return PutResult{
		ETag:     fmt.Sprintf("%q", hex.EncodeToString(hash.Sum(nil))),
		Location: "file://" + filepath.ToSlash(n),
	}, nil
}
