package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/resizeto/resizeto/cmd"
)

var log = logging.Logger("resizeto")

func main() {
	app := &cli.App{
		Name:  "resizeto",
		Usage: "Resize images on demand.",
		Commands: []*cli.Command{
			cmd.ServeCmd,
			cmd.ProcessCmd,
			cmd.SignCmd,
			cmd.VersionCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
