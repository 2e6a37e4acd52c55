// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"bytes"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"

	"github.com/bitmark-inc/kittywatch/rpc/certificate"
)

// Client - to hold RPC connections streams
type Client struct {
	conn    net.Conn
	client  *rpc.Client
	verbose bool
	handle  io.Writer // if verbose is set output items here
}

// NewClient - create a RPC connection to a kittywatch
//
// the server certificate is normally self-signed so it is only
// checked when a SHA3-256 fingerprint is given
func NewClient(connect string, fingerprint string, verbose bool, handle io.Writer) (*Client, error) {

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
	}

	conn, err := tls.Dial("tcp", connect, tlsConfig)
	if err != nil {
		return nil, err
	}

	if "" != fingerprint {
		if err := verifyFingerprint(conn, fingerprint); nil != err {
			conn.Close()
			return nil, err
		}
	}

	r := &Client{
		conn:    conn,
		client:  jsonrpc.NewClient(conn),
		verbose: verbose,
		handle:  handle,
	}
	return r, nil
}

// Close - shutdown the kittywatch connection
func (c *Client) Close() {
	c.client.Close()
	c.conn.Close()
}

func verifyFingerprint(conn *tls.Conn, fingerprint string) error {
	expected, err := hex.DecodeString(strings.TrimPrefix(fingerprint, "0x"))
	if nil != err {
		return fmt.Errorf("fingerprint: %q error: %s", fingerprint, err)
	}

	certificates := conn.ConnectionState().PeerCertificates
	if 0 == len(certificates) {
		return fmt.Errorf("server sent no certificate")
	}

	actual := certificate.Fingerprint(certificates[0].Raw)
	if !bytes.Equal(expected, actual[:]) {
		return fmt.Errorf("certificate fingerprint mismatch: %x", actual)
	}
	return nil
}
