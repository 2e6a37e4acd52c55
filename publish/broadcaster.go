// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"encoding/json"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/util"
	"github.com/bitmark-inc/kittywatch/zmqutil"
)

const (
	broadcasterZapDomain = "broadcaster"

	// frame names
	ViewTopic   = "view"
	StatusTopic = "status"
)

// Configuration - a block of configuration data read from the Lua
// configuration file
type Configuration struct {
	Broadcast  []string `gluamapper:"broadcast" json:"broadcast"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
}

// Broadcaster - background process sending each view and status on
// a PUB socket
type Broadcaster struct {
	log       *logger.L
	publisher *Publisher
	socket4   *zmq.Socket
	socket6   *zmq.Socket
}

// NewBroadcaster - bind the configured addresses
func NewBroadcaster(log *logger.L, configuration *Configuration, publisher *Publisher) (*Broadcaster, error) {
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if nil == configuration || nil == publisher {
		return nil, fault.MissingParameters
	}

	log.Info("initialising…")

	privateKey, err := zmqutil.ReadPrivateKeyFile(configuration.PrivateKey)
	if nil != err {
		log.Errorf("read private key file: %q  error: %s", configuration.PrivateKey, err)
		return nil, err
	}
	publicKey, err := zmqutil.ReadPublicKeyFile(configuration.PublicKey)
	if nil != err {
		log.Errorf("read public key file: %q  error: %s", configuration.PublicKey, err)
		return nil, err
	}
	log.Tracef("public key:  %x", publicKey)

	c, err := util.NewConnections(configuration.Broadcast)
	if nil != err {
		log.Errorf("ip and port error: %s", err)
		return nil, err
	}

	if err := zmqutil.StartAuthentication(); nil != err {
		log.Errorf("zmq authentication error: %s", err)
		return nil, err
	}

	socket4, socket6, err := zmqutil.NewBind(log, zmq.PUB, broadcasterZapDomain, privateKey, publicKey, c)
	if nil != err {
		log.Errorf("bind error: %s", err)
		return nil, err
	}

	return &Broadcaster{
		log:       log,
		publisher: publisher,
		socket4:   socket4,
		socket6:   socket6,
	}, nil
}

// Run - background process entry
func (brdc *Broadcaster) Run(args interface{}, shutdown <-chan struct{}) {

	log := brdc.log

	log.Info("starting…")

	sub := brdc.publisher.Subscribe()
	defer sub.Cancel()

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop
		case view := <-sub.Views():
			log.Infof("sending: %s  sequence: %d  count: %d", ViewTopic, view.Sequence, view.Count)
			brdc.send(ViewTopic, view)
		case status := <-sub.Statuses():
			log.Infof("sending: %s  message: %q", StatusTopic, status.Message)
			brdc.send(StatusTopic, status)
		}
	}

	if nil != brdc.socket4 {
		_ = brdc.socket4.Close()
	}
	if nil != brdc.socket6 {
		_ = brdc.socket6.Close()
	}
	log.Info("stopped")
}

func (brdc *Broadcaster) send(topic string, item interface{}) {
	data, err := json.Marshal(item)
	if nil != err {
		brdc.log.Errorf("%s: marshal error: %s", topic, err)
		return
	}

	for _, socket := range []*zmq.Socket{brdc.socket4, brdc.socket6} {
		if nil == socket {
			continue
		}
		_, err := socket.SendMessageDontwait(topic, data)
		if nil != err {
			brdc.log.Warnf("%s: send error: %s", topic, err)
		}
	}
}
