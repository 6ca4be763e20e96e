package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resizeto/resizeto/internal/testutil"
	"github.com/resizeto/resizeto/pkg/build"
	"github.com/resizeto/resizeto/pkg/config"
	"github.com/resizeto/resizeto/pkg/service/resize"
	"github.com/resizeto/resizeto/pkg/store/objectstore"
	"github.com/resizeto/resizeto/pkg/store/variantstore"
)

type testServer struct {
	url     string
	objects *objectstore.MapStore
	index   *variantstore.MapVariantIndex
}

func startServer(t *testing.T) testServer {
	var handler http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	cfg := config.Config{
		Originals:   "originals",
		Destination: "processed",
		Region:      "us-east-1",
		URI:         ts.URL,
	}
	objects := objectstore.NewMapStore()
	index := variantstore.NewMapVariantIndex()
	svc, err := resize.NewService(cfg, objects, resize.WithVariantIndex(index))
	require.NoError(t, err)

	handler = NewServer(
		WithService(svc),
		WithObjectStore(objects, cfg.Destination),
		WithVariantIndex(index),
	)
	return testServer{url: ts.URL, objects: objects, index: index}
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestServer(t *testing.T) {
	t.Run("root", func(t *testing.T) {
		srv := startServer(t)
		res, err := http.Get(srv.url + "/")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		body := testutil.Must(io.ReadAll(res.Body))(t)
		require.Contains(t, string(body), build.Version)
	})

	t.Run("miss redirects to resize", func(t *testing.T) {
		srv := startServer(t)
		res, err := noRedirectClient().Get(srv.url + "/width:100/image.png")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
		require.Equal(t, "/resize?key=width%3A100%2Fimage.png", res.Header.Get("Location"))
	})

	t.Run("hit is served", func(t *testing.T) {
		srv := startServer(t)
		data := testutil.RandomBytes(64)
		_, err := srv.objects.Put(context.Background(), "processed", "width:100/image.png", "image/png", bytes.NewReader(data))
		require.NoError(t, err)

		res, err := noRedirectClient().Get(srv.url + "/width:100/image.png")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, "image/png", res.Header.Get("Content-Type"))
		require.Equal(t, int64(len(data)), res.ContentLength)
		require.Equal(t, data, testutil.Must(io.ReadAll(res.Body))(t))
	})

	t.Run("miss is processed and served", func(t *testing.T) {
		srv := startServer(t)
		_, err := srv.objects.Put(context.Background(), "originals", "image.png", "image/png", bytes.NewReader(testutil.PNG(t, 200, 50)))
		require.NoError(t, err)

		res, err := http.Get(srv.url + "/width:100/image.png")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, srv.url+"/width:100/image.png", res.Request.URL.String())
		require.Equal(t, "image/png", res.Header.Get("Content-Type"))

		imgCfg, format := testutil.DecodeConfig(t, testutil.Must(io.ReadAll(res.Body))(t))
		require.Equal(t, "png", format)
		require.Equal(t, 100, imgCfg.Width)
		require.Equal(t, 25, imgCfg.Height)
	})

	t.Run("miss with missing original", func(t *testing.T) {
		srv := startServer(t)
		res, err := http.Get(srv.url + "/width:100/image.png")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("escaped path survives the redirect", func(t *testing.T) {
		srv := startServer(t)
		_, err := srv.objects.Put(context.Background(), "originals", "my image.png", "image/png", bytes.NewReader(testutil.PNG(t, 20, 20)))
		require.NoError(t, err)

		res, err := http.Get(srv.url + "/width:10/my%20image.png")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, []string{"width:10/my image.png"}, srv.objects.Keys("processed"))
	})
}

func TestVariants(t *testing.T) {
	srv := startServer(t)
	_, err := srv.objects.Put(context.Background(), "originals", "image.png", "image/png", bytes.NewReader(testutil.PNG(t, 40, 40)))
	require.NoError(t, err)

	for _, key := range []string{"width:20/image.png", "grayscale:true/image.png"} {
		res, err := http.Get(srv.url + "/" + key)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	t.Run("list", func(t *testing.T) {
		res, err := http.Get(srv.url + "/variants?source=image.png")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, "application/json", res.Header.Get("Content-Type"))

		var variants []variantResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&variants))
		require.Len(t, variants, 2)
		require.Equal(t, "grayscale:true/image.png", variants[0].Key)
		require.Equal(t, "width:20/image.png", variants[1].Key)
		for _, v := range variants {
			require.Equal(t, "image.png", v.Source)
			require.Equal(t, "processed", v.Bucket)
			require.NotEmpty(t, v.Digest)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		res, err := http.Get(srv.url + "/variants?source=other.png")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		var variants []variantResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&variants))
		require.Empty(t, variants)
	})

	t.Run("missing source", func(t *testing.T) {
		res, err := http.Get(srv.url + "/variants")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestResizeLocation(t *testing.T) {
	require.Equal(t, "/resize?key=a%2Fb.png", ResizeLocation("/a/b.png"))
	require.Equal(t, "/resize?key=my%2520image.png", ResizeLocation("/my%20image.png"))
}
