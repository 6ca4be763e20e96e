package cmd

import (
	"fmt"
	"io"
	"os"
	"path"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/resizeto/resizeto/pkg/build"
	"github.com/resizeto/resizeto/pkg/store/objectstore"
)

var log = logging.Logger("cmd")

func PrintHero(w io.Writer, addr string) {
	fmt.Fprintf(w, `
 ┬─┐┌─┐┌─┐┬┌─┐┌─┐┌┬┐┌─┐
 ├┬┘├┤ └─┐│┌─┘├┤  │ │ │
 ┴└─└─┘└─┘┴└─┘└─┘ ┴ └─┘

🔥 %s
🌐 %s
🚀 Ready!
`, build.Version, addr)
}

func mkdirp(dirpath ...string) (string, error) {
	dir := path.Join(dirpath...)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("creating directory: %s: %w", dir, err)
	}
	return dir, nil
}

// dataDir returns the configured data directory, defaulting to ~/.resizeto.
func dataDir(cCtx *cli.Context) (string, error) {
	if dir := cCtx.String(DataDirFlag.Name); dir != "" {
		return mkdirp(dir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	dir, err := mkdirp(homeDir, ".resizeto")
	if err != nil {
		return "", err
	}
	log.Warnf("Data directory is not configured, using default: %s", dir)
	return dir, nil
}

func openObjectStore(cCtx *cli.Context) (*objectstore.FsStore, error) {
	dir, err := dataDir(cCtx)
	if err != nil {
		return nil, err
	}
	objects, err := objectstore.NewFsStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}
	return objects, nil
}
