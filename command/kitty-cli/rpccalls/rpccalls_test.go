// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls_test

import (
	"crypto/tls"
	"fmt"
	"io/ioutil"
	"net/rpc/jsonrpc"
	"testing"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/kittywatch/command/kitty-cli/rpccalls"
	"github.com/bitmark-inc/kittywatch/counter"
	"github.com/bitmark-inc/kittywatch/fixtures"
	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/publish"
	"github.com/bitmark-inc/kittywatch/rpc/certificate"
	"github.com/bitmark-inc/kittywatch/rpc/mocks"
	"github.com/bitmark-inc/kittywatch/rpc/server"
)

var testView = kitty.View{
	Sequence: 7,
	Count:    3,
	Records: []kitty.Record{
		{Id: 0, DNA: fixtures.DNA(1), DNAState: kitty.Present, Owner: fixtures.AliceAddress, OwnerState: kitty.Present},
		{Id: 1, DNA: fixtures.DNA(2), DNAState: kitty.Present, Owner: fixtures.Account(2).SS58(42), OwnerState: kitty.Present},
		{Id: 2, DNA: fixtures.DNA(3), DNAState: kitty.Present, OwnerState: kitty.Pending},
	},
}

// a TLS JSON-RPC server, returns its address and certificate fingerprint
func startServer(t *testing.T, services server.Services) (string, [32]byte, func()) {
	log := logger.New(fixtures.LogCategory)

	cert, key, err := certgen.NewTLSCertPair("test", time.Now().Add(time.Hour), false, []string{"127.0.0.1"})
	if nil != err {
		t.Fatalf("certificate error: %s", err)
	}
	tlsConfig, fingerprint, err := certificate.Get(log, "test", cert, key)
	if nil != err {
		t.Fatalf("tls configuration error: %s", err)
	}

	listener, err := tls.Listen("tcp", "127.0.0.1:0", tlsConfig)
	if nil != err {
		t.Fatalf("listen error: %s", err)
	}

	ctr := counter.Counter(0)
	srv := server.Create(log, services, &ctr)

	go func() {
		for {
			conn, err := listener.Accept()
			if nil != err {
				return
			}
			go srv.ServeCodec(jsonrpc.NewServerCodec(conn))
		}
	}()

	return listener.Addr().String(), fingerprint, func() { listener.Close() }
}

func TestClientCalls(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s := mocks.NewMockSource(ctl)
	s.EXPECT().View().Return(testView).AnyTimes()
	s.EXPECT().Status().Return(publish.Status{Message: "ready", Sequence: 4}).AnyTimes()

	c := mocks.NewMockCreator(ctl)
	c.EXPECT().Create(gomock.Any()).Return(nil).Times(1)

	address, fingerprint, stop := startServer(t, server.Services{
		Version: "1.0",
		Chain:   "local",
		NodeURL: "ws://127.0.0.1:9944",
		Network: 42,
		Source:  s,
		Creator: c,
	})
	defer stop()

	client, err := rpccalls.NewClient(address, fmt.Sprintf("%x", fingerprint), true, ioutil.Discard)
	assert.Nil(t, err, "wrong NewClient")
	defer client.Close()

	list, err := client.List(&rpccalls.ListData{Start: 1, Count: 10})
	assert.Nil(t, err, "wrong List")
	assert.Equal(t, uint64(7), list.Sequence, "wrong sequence")
	assert.Equal(t, kitty.Count(3), list.Count, "wrong count")
	assert.Equal(t, 2, len(list.Records), "wrong records")
	assert.Equal(t, uint64(3), list.Next, "wrong next")
	assert.Equal(t, fixtures.DNA(2), list.Records[0].DNA, "wrong dna")

	mine, err := client.Mine(&rpccalls.MineData{Owner: fixtures.AliceAddress, Count: 10})
	assert.Nil(t, err, "wrong Mine")
	assert.Equal(t, fixtures.AliceAddress, mine.Owner, "wrong owner")
	assert.Equal(t, 1, len(mine.Records), "wrong records")
	assert.Equal(t, kitty.Index(0), mine.Records[0].Id, "wrong id")

	status, err := client.Status()
	assert.Nil(t, err, "wrong Status")
	assert.Equal(t, "ready", status.Message, "wrong message")
	assert.Equal(t, 2, status.Resolved, "wrong resolved")

	created, err := client.Create()
	assert.Nil(t, err, "wrong Create")
	assert.True(t, created.Submitted, "not submitted")

	info, err := client.GetInfo()
	assert.Nil(t, err, "wrong GetInfo")
	assert.Equal(t, "local", info.Chain, "wrong chain")
	assert.Equal(t, "ready", info.Status, "wrong status")
	assert.Equal(t, uint64(3), info.Count, "wrong count")
	assert.Equal(t, "1.0", info.Version, "wrong version")
}

func TestClientErrors(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	s := mocks.NewMockSource(ctl)
	s.EXPECT().View().Return(testView).AnyTimes()
	s.EXPECT().Status().Return(publish.Status{}).AnyTimes()

	address, _, stop := startServer(t, server.Services{
		Chain:   "local",
		Network: 42,
		Source:  s,
	})
	defer stop()

	_, err := rpccalls.NewClient(address, fmt.Sprintf("%x", [32]byte{}), false, ioutil.Discard)
	assert.NotNil(t, err, "wrong fingerprint accepted")

	_, err = rpccalls.NewClient(address, "zz", false, ioutil.Discard)
	assert.NotNil(t, err, "invalid fingerprint accepted")

	client, err := rpccalls.NewClient(address, "", false, ioutil.Discard)
	assert.Nil(t, err, "wrong NewClient")
	defer client.Close()

	_, err = client.Create()
	assert.NotNil(t, err, "create without command")

	_, err = client.Mine(&rpccalls.MineData{Count: 10})
	assert.NotNil(t, err, "mine without owner")

	_, err = client.List(&rpccalls.ListData{Count: 0})
	assert.NotNil(t, err, "zero count accepted")
}
