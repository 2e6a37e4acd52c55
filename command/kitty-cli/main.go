// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	connect     string
	fingerprint string
	verbose     bool
	e           io.Writer
	w           io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "kitty-cli"
	app.Usage = "query a kittywatch server"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2150",
			Usage:  " kittywatch RPC host/IP and port, `HOST:PORT`",
			EnvVar: "KITTYWATCH_CONNECT",
		},
		cli.StringFlag{
			Name:   "fingerprint, f",
			Value:  "",
			Usage:  " expected server certificate SHA3-256 `HEX` [default: not checked]",
			EnvVar: "KITTYWATCH_FINGERPRINT",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "list",
			Usage:     "list a page of kitties from the current view",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " first kitty `INDEX`",
				},
				cli.IntFlag{
					Name:  "count, n",
					Value: 20,
					Usage: " maximum records to return `COUNT`",
				},
			},
			Action: runList,
		},
		{
			Name:      "mine",
			Usage:     "list a page of kitties belonging to one owner",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: " owner SS58 `ADDRESS` [default: server configured owner]",
				},
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " first kitty `INDEX`",
				},
				cli.IntFlag{
					Name:  "count, n",
					Value: 20,
					Usage: " maximum records to return `COUNT`",
				},
			},
			Action: runMine,
		},
		{
			Name:   "status",
			Usage:  "display the current status message",
			Action: runStatus,
		},
		{
			Name:   "create",
			Usage:  "ask the server to create a new kitty",
			Action: runCreate,
		},
		{
			Name:   "info",
			Usage:  "display kittywatch info",
			Action: runInfo,
		},
		{
			Name:      "watch",
			Usage:     "print published view and status messages",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "publisher, p",
					Value: "",
					Usage: "*publisher `HOST:PORT`",
				},
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*publisher public key `FILE`",
				},
				cli.StringSliceFlag{
					Name:  "topic, t",
					Usage: " topic to receive `NAME` [view|status, default: both]",
				},
				cli.IntFlag{
					Name:  "messages, m",
					Value: 0,
					Usage: " stop after `COUNT` messages [default: no limit]",
				},
				cli.DurationFlag{
					Name:  "timeout",
					Value: 0,
					Usage: " stop if nothing arrives for `DURATION` [default: wait forever]",
				},
			},
			Action: runWatch,
		},
		{
			Name:  "version",
			Usage: "display kitty-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {

		c.App.Metadata["config"] = &metadata{
			connect:     c.GlobalString("connect"),
			fingerprint: c.GlobalString("fingerprint"),
			verbose:     c.GlobalBool("verbose"),
			e:           c.App.ErrWriter,
			w:           c.App.Writer,
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
