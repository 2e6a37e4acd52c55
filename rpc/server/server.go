// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/counter"
	"github.com/bitmark-inc/kittywatch/rpc/kitties"
	"github.com/bitmark-inc/kittywatch/rpc/node"
)

// Services - what the registered RPC services read from
type Services struct {
	Version string
	Chain   string
	NodeURL string
	Network byte
	Source  kitties.Source
	Creator kitties.Creator
	Owner   *kitties.DefaultOwner
}

// Create - an RPC server with the Kitties and Node services
func Create(log *logger.L, services Services, rpcCount *counter.Counter) *rpc.Server {

	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(kitties.New(log, services.Source, services.Creator, services.Owner, services.Network))
	_ = server.Register(node.New(log, start, services.Version, services.Chain, services.NodeURL, services.Source, rpcCount))

	return server
}
