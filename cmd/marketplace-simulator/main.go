// Package main runs the marketplace simulator: either a scripted scenario
// of producer and consumer workers or an HTTP server over one marketplace.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "marketplace-simulator",
		Usage: "Simulate producers and consumers trading through a bounded marketplace",
		Commands: []*cli.Command{
			{
				Name:   "simulate",
				Usage:  "Run a scenario file to completion and print every purchase",
				Flags:  simulateFlags(),
				Action: simulate,
			},
			{
				Name:   "serve",
				Usage:  "Expose a marketplace over HTTP",
				Flags:  serveFlags(),
				Action: serve,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
