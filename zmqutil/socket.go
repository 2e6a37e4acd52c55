// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/kittywatch/util"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second
)

// NewBind - bind a list of addresses
//
// creates up to 2 sockets for separate IPv4 and IPv6 traffic
func NewBind(log *logger.L, socketType zmq.Type, zapDomain string, privateKey []byte, publicKey []byte, listen []*util.Connection) (*zmq.Socket, *zmq.Socket, error) {

	socket4 := (*zmq.Socket)(nil) // IPv4 traffic
	socket6 := (*zmq.Socket)(nil) // IPv6 traffic

	err := error(nil)

	for i, address := range listen {
		bindTo, v6 := address.CanonicalIPandPort("tcp://")
		if v6 {
			if nil == socket6 {
				socket6, err = NewServerSocket(socketType, zapDomain, privateKey, publicKey, v6)
			}
		} else {
			if nil == socket4 {
				socket4, err = NewServerSocket(socketType, zapDomain, privateKey, publicKey, v6)
			}
		}
		if nil != err {
			goto fail
		}

		if v6 {
			err = socket6.Bind(bindTo)
		} else {
			err = socket4.Bind(bindTo)
		}
		if nil != err {
			log.Errorf("cannot bind[%d]: %q  error: %s", i, bindTo, err)
			goto fail
		}
		log.Infof("bind[%d]: %q  IPv6: %v", i, bindTo, v6)
	}
	return socket4, socket6, nil

	// if an error close any open sockets
fail:
	if nil != socket4 {
		_ = socket4.Close()
	}
	if nil != socket6 {
		_ = socket6.Close()
	}
	return nil, nil, err
}

// NewServerSocket - create a socket suitable for a server side
// connection
func NewServerSocket(socketType zmq.Type, zapDomain string, privateKey []byte, publicKey []byte, v6 bool) (*zmq.Socket, error) {

	socket, err := zmq.NewSocket(socketType)
	if nil != err {
		return nil, err
	}

	// allow any client to connect
	zmq.AuthCurveAdd(zapDomain, zmq.CURVE_ALLOW_ANY)

	// domain is servers public key
	_ = socket.SetCurveServer(1)
	_ = socket.SetCurveSecretkey(string(privateKey))

	_ = socket.SetZapDomain(zapDomain)

	_ = socket.SetIdentity(string(publicKey)) // just use public key for identity

	_ = socket.SetIpv6(v6) // conditionally set IPv6 state
	_ = socket.SetLinger(0)

	// heartbeat
	_ = socket.SetHeartbeatIvl(heartbeatInterval)
	_ = socket.SetHeartbeatTimeout(heartbeatTimeout)
	_ = socket.SetHeartbeatTtl(heartbeatTTL)

	return socket, nil
}

// NewSubscriber - connect a SUB socket to a CURVE server
//
// the client key pair is generated for each connection, topics are
// the frame prefixes to receive, none means everything
func NewSubscriber(conn *util.Connection, serverPublicKey []byte, timeout time.Duration, topics ...string) (*zmq.Socket, error) {

	public, private, err := zmq.NewCurveKeypair()
	if nil != err {
		return nil, err
	}

	socket, err := zmq.NewSocket(zmq.SUB)
	if nil != err {
		return nil, err
	}

	address, v6 := conn.CanonicalIPandPort("tcp://")

	err = socket.SetCurveServer(0)
	if nil != err {
		goto failure
	}
	err = socket.SetCurvePublickey(public)
	if nil != err {
		goto failure
	}
	err = socket.SetCurveSecretkey(private)
	if nil != err {
		goto failure
	}
	err = socket.SetCurveServerkey(zmq.Z85encode(string(serverPublicKey)))
	if nil != err {
		goto failure
	}
	err = socket.SetIpv6(v6)
	if nil != err {
		goto failure
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}

	// zero => do not set timeout
	if 0 != timeout {
		err = socket.SetRcvtimeo(timeout)
		if nil != err {
			goto failure
		}
	}

	if 0 == len(topics) {
		topics = []string{""}
	}
	for _, topic := range topics {
		err = socket.SetSubscribe(topic)
		if nil != err {
			goto failure
		}
	}

	err = socket.Connect(address)
	if nil != err {
		goto failure
	}
	return socket, nil

failure:
	_ = socket.Close()
	return nil, err
}
