// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/kittywatch/command/kitty-cli/rpccalls"
	"github.com/bitmark-inc/kittywatch/substrate"
)

func runMine(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	count := c.Int("count")
	if count <= 0 {
		return ErrInvalidCount
	}

	// blank lets the server use its configured owner
	owner := c.String("owner")
	if "" != owner {
		if _, _, err := substrate.ParseSS58(owner); nil != err {
			return err
		}
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Mine(&rpccalls.MineData{
		Owner: owner,
		Start: c.Uint64("start"),
		Count: count,
	})
	if nil != err {
		return err
	}

	printJson(m.w, response)
	return nil
}
