// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	zmq "github.com/pebbe/zmq4"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/kittywatch/kitty"
	"github.com/bitmark-inc/kittywatch/publish"
	"github.com/bitmark-inc/kittywatch/util"
	"github.com/bitmark-inc/kittywatch/zmqutil"
)

type receiver interface {
	RecvMessageBytes(flags zmq.Flag) ([][]byte, error)
}

type watchedMessage struct {
	Topic  string          `json:"topic"`
	View   *kitty.View     `json:"view,omitempty"`
	Status *publish.Status `json:"status,omitempty"`
}

func runWatch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	publisher := c.String("publisher")
	if "" == publisher {
		return ErrMissingPublisher
	}
	keyFile := c.String("key")
	if "" == keyFile {
		return ErrMissingKey
	}

	topics := c.StringSlice("topic")
	for _, topic := range topics {
		if publish.ViewTopic != topic && publish.StatusTopic != topic {
			return ErrInvalidTopic
		}
	}
	if 0 == len(topics) {
		topics = []string{publish.ViewTopic, publish.StatusTopic}
	}

	conn, err := util.NewConnection(publisher)
	if nil != err {
		return err
	}
	serverKey, err := zmqutil.ReadPublicKeyFile(keyFile)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "subscribing to: %s  topics: %v\n", publisher, topics)
	}

	socket, err := zmqutil.NewSubscriber(conn, serverKey, c.Duration("timeout"), topics...)
	if nil != err {
		return err
	}
	defer socket.Close()

	return watch(socket, c.Int("messages"), m.w)
}

// print each message until count is reached, zero means no limit
func watch(socket receiver, count int, w io.Writer) error {
	for n := 0; 0 == count || n < count; n += 1 {
		frames, err := socket.RecvMessageBytes(0)
		if nil != err {
			return err
		}
		message, err := decodeMessage(frames)
		if nil != err {
			return err
		}
		printJson(w, message)
	}
	return nil
}

func decodeMessage(frames [][]byte) (*watchedMessage, error) {
	if 2 != len(frames) {
		return nil, fmt.Errorf("expected 2 frames, received: %d", len(frames))
	}

	message := &watchedMessage{
		Topic: string(frames[0]),
	}

	switch message.Topic {
	case publish.ViewTopic:
		message.View = &kitty.View{}
		if err := json.Unmarshal(frames[1], message.View); nil != err {
			return nil, err
		}
	case publish.StatusTopic:
		message.Status = &publish.Status{}
		if err := json.Unmarshal(frames[1], message.Status); nil != err {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unexpected topic: %q", message.Topic)
	}
	return message, nil
}
