package cmd_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/resizeto/resizeto/cmd"
	"github.com/resizeto/resizeto/internal/testutil"
	"github.com/resizeto/resizeto/pkg/build"
	"github.com/resizeto/resizeto/pkg/options"
	"github.com/resizeto/resizeto/pkg/store/objectstore"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	app := &cli.App{
		Name:     "resizeto",
		Writer:   &out,
		Commands: []*cli.Command{cmd.ProcessCmd, cmd.SignCmd, cmd.VersionCmd},
	}
	err := app.Run(append([]string{"resizeto"}, args...))
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, build.Version+"\n", out)
}

func TestSign(t *testing.T) {
	t.Run("signs the fragment", func(t *testing.T) {
		out, err := run(t, "sign", "--token", "asdf", "width:100/path/to/image.jpg")
		require.NoError(t, err)
		require.Equal(t, options.Sign("asdf", "width:100", "path/to/image.jpg")+"\n", out)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := run(t, "sign", "--token", "asdf", "width:abc/path/to/image.jpg")
		require.ErrorContains(t, err, "invalid fragment")
	})

	t.Run("already signed", func(t *testing.T) {
		_, err := run(t, "sign", "--token", "asdf", options.Sign("asdf", "width:100", "a.jpg"))
		require.ErrorContains(t, err, "already signed")
	})
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	objects, err := objectstore.NewFsStore(dir)
	require.NoError(t, err)
	_, err = objects.Put(context.Background(), "originals", "path/to/image.png", "image/png", bytes.NewReader(testutil.PNG(t, 300, 150)))
	require.NoError(t, err)

	args := []string{
		"process",
		"--data-dir", dir,
		"--originals", "originals",
		"--destination", "processed",
		"--region", "us-east-1",
		"--uri", "https://resize.to",
	}

	t.Run("prints the location", func(t *testing.T) {
		out, err := run(t, append(args, "width:100/path/to/image.png")...)
		require.NoError(t, err)
		require.Equal(t, "https://resize.to/width:100/path/to/image.png\n", out)
		require.FileExists(t, filepath.Join(dir, "processed", "width:100", "path", "to", "image.png"))
	})

	t.Run("failure carries the status", func(t *testing.T) {
		_, err := run(t, append(args, "width:100/path/to/missing.png")...)
		require.ErrorContains(t, err, "404")
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := run(t, "process", "--data-dir", dir, "width:100/path/to/image.png")
		require.ErrorContains(t, err, `Missing required key "originals"`)
	})
}
