package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/resizeto/resizeto/internal/digestutil"
	"github.com/resizeto/resizeto/pkg/build"
	"github.com/resizeto/resizeto/pkg/service/resize"
	"github.com/resizeto/resizeto/pkg/store"
	"github.com/resizeto/resizeto/pkg/store/objectstore"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

var log = logging.Logger("server")

type serverConfig struct {
	service *resize.Service
	objects objectstore.ObjectStore
	bucket  string
	index   variantstore.VariantIndex
}

type Option func(*serverConfig)

// WithService configures the resize service the server should use.
func WithService(service *resize.Service) Option {
	return func(c *serverConfig) {
		c.service = service
	}
}

// WithObjectStore serves objects of the given bucket, normally the
// destination bucket of the resize service.
func WithObjectStore(objects objectstore.ObjectStore, bucket string) Option {
	return func(c *serverConfig) {
		c.objects = objects
		c.bucket = bucket
	}
}

// WithVariantIndex exposes the variant index on /variants.
func WithVariantIndex(index variantstore.VariantIndex) Option {
	return func(c *serverConfig) {
		c.index = index
	}
}

// ListenAndServe creates a new resize HTTP server, and starts it up.
func ListenAndServe(addr string, opts ...Option) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewServer(opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("Listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewServer creates a new resize server. Objects missing from the served
// bucket redirect to /resize, the way a website bucket routes misses to the
// handler.
func NewServer(opts ...Option) *http.ServeMux {
	c := &serverConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.service == nil {
		panic("server: a resize service is required")
	}
	if c.objects == nil {
		log.Warn("No object store configured, serving the resize handler only")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", getRootHandler())
	resize.NewServer(c.service).Serve(mux)
	if c.index != nil {
		mux.HandleFunc("GET /variants", getVariantsHandler(c.index))
	}
	if c.objects != nil {
		mux.HandleFunc("GET /", getObjectHandler(c.objects, c.bucket))
	}
	return mux
}

// getRootHandler displays version info when a GET request is sent to "/".
func getRootHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fmt.Sprintf("resizeto %s\n", build.Version)))
	}
}

// ResizeLocation is where a miss for the (escaped) object path is sent.
func ResizeLocation(escapedPath string) string {
	key := strings.TrimPrefix(escapedPath, "/")
	return "/resize?" + url.Values{resize.KeyParam: {key}}.Encode()
}

func getObjectHandler(objects objectstore.ObjectStore, bucket string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")

		obj, err := objects.Get(r.Context(), bucket, key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Debugf("object not found, redirecting: %s", key)
				http.Redirect(w, r, ResizeLocation(r.URL.EscapedPath()), http.StatusTemporaryRedirect)
				return
			}
			log.Errorf("getting object: %s: %s", key, err)
			http.Error(w, "failed to get object", http.StatusInternalServerError)
			return
		}
		defer obj.Body().Close()

		w.Header().Set("Content-Type", obj.ContentType())
		if obj.Size() >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size(), 10))
		}
		w.WriteHeader(http.StatusOK)
		_, err = io.Copy(w, obj.Body())
		if err != nil {
			log.Warnf("serving object: %s: %s", key, err)
		}
	}
}

type variantResponse struct {
	Key         string    `json:"key"`
	Source      string    `json:"source"`
	Bucket      string    `json:"bucket"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Digest      string    `json:"digest"`
	ETag        string    `json:"etag,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func getVariantsHandler(index variantstore.VariantIndex) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		source := r.URL.Query().Get("source")
		if source == "" {
			http.Error(w, "missing required query parameter 'source'", http.StatusBadRequest)
			return
		}

		variants, err := index.List(r.Context(), source)
		if err != nil {
			log.Errorf("listing variants: %s: %s", source, err)
			http.Error(w, "failed to list variants", http.StatusInternalServerError)
			return
		}

		res := make([]variantResponse, 0, len(variants))
		for _, v := range variants {
			res = append(res, variantResponse{
				Key:         v.Key,
				Source:      v.Source,
				Bucket:      v.Bucket,
				ContentType: v.ContentType,
				Size:        v.Size,
				Digest:      digestutil.Format(v.Digest),
				ETag:        v.ETag,
				CreatedAt:   v.CreatedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			log.Warnf("serving variants: %s: %s", source, err)
		}
	}
}
