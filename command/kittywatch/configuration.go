// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/chain"
	"github.com/bitmark-inc/kittywatch/configuration"
	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/publish"
	"github.com/bitmark-inc/kittywatch/rpc/listeners"
	"github.com/bitmark-inc/kittywatch/submit"
	"github.com/bitmark-inc/kittywatch/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultPublishPublicKeyFile  = "publish.public"
	defaultPublishPrivateKeyFile = "publish.private"
	defaultKeyFile               = "rpc.key"
	defaultCertificateFile       = "rpc.crt"

	defaultNodeURL       = "ws://127.0.0.1:9944"
	defaultNodeTimeout   = 30 // seconds
	defaultNodeBatchSize = 256
	defaultNodeParallel  = 4
	defaultMaximumCount  = 1 << 20

	defaultPallet    = "KittiesModule"
	defaultCountItem = "KittiesCount"
	defaultDNAItem   = "Kitties"
	defaultOwnerItem = "Owner"

	defaultLevelDBDirectory = "data"
	defaultDatabaseSuffix   = ".leveldb"

	defaultCreateTimeout = 60 // seconds

	defaultLogDirectory = "log"
	defaultLogFile      = "kittywatch.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients = 10
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// NodeType - the substrate node and the storage names to follow
type NodeType struct {
	URL          string `gluamapper:"url" json:"url"`
	Timeout      int    `gluamapper:"timeout" json:"timeout"` // seconds
	BatchSize    int    `gluamapper:"batch_size" json:"batch_size"`
	Parallel     int    `gluamapper:"parallel" json:"parallel"`
	MaximumCount int    `gluamapper:"maximum_count" json:"maximum_count"`
	Pallet       string `gluamapper:"pallet" json:"pallet"`
	CountItem    string `gluamapper:"count_item" json:"count_item"`
	DNAItem      string `gluamapper:"dna_item" json:"dna_item"`
	OwnerItem    string `gluamapper:"owner_item" json:"owner_item"`
}

// DatabaseType - leveldb location
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" json:"pidfile"`
	Chain         string `gluamapper:"chain" json:"chain"`
	Owner         string `gluamapper:"owner" json:"owner"`
	ProfileHTTP   string `gluamapper:"profile_http" json:"profile_http"`

	Node       NodeType                   `gluamapper:"node" json:"node"`
	Database   DatabaseType               `gluamapper:"database" json:"database"`
	ClientRPC  listeners.RPCConfiguration `gluamapper:"client_rpc" json:"client_rpc"`
	Publishing publish.Configuration      `gluamapper:"publishing" json:"publishing"`
	Create     submit.Configuration       `gluamapper:"create" json:"create"`
	Logging    logger.Configuration       `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Chain:         chain.Local,

		Node: NodeType{
			URL:          defaultNodeURL,
			Timeout:      defaultNodeTimeout,
			BatchSize:    defaultNodeBatchSize,
			Parallel:     defaultNodeParallel,
			MaximumCount: defaultMaximumCount,
			Pallet:       defaultPallet,
			CountItem:    defaultCountItem,
			DNAItem:      defaultDNAItem,
			OwnerItem:    defaultOwnerItem,
		},

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      "", // chain name based default
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		Publishing: publish.Configuration{
			PublicKey:  defaultPublishPublicKeyFile,
			PrivateKey: defaultPublishPrivateKeyFile,
		},

		Create: submit.Configuration{
			Timeout: defaultCreateTimeout,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	options.Chain = strings.ToLower(options.Chain)
	if !chain.Valid(options.Chain) {
		return nil, fault.Wrap(fault.InvalidChain, options.Chain)
	}

	if "" == options.Database.Name {
		options.Database.Name = options.Chain + defaultDatabaseSuffix
	}

	if options.Node.BatchSize <= 0 || options.Node.Parallel <= 0 {
		return nil, fault.InvalidBatchSize
	}
	if options.Node.Timeout <= 0 {
		return nil, fault.Wrap(fault.InvalidConfiguration, "node timeout")
	}
	if options.Node.MaximumCount <= 0 {
		return nil, fault.Wrap(fault.InvalidCount, "node maximum_count")
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if err := util.IsDirectory(options.DataDirectory); nil != err {
		return nil, err
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	util.MakeAbsolute(options.DataDirectory, false,
		&options.Database.Directory,
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.Publishing.PublicKey,
		&options.Publishing.PrivateKey,
		&options.Logging.Directory,
	)

	// optional absolute paths i.e. blank or an absolute path
	util.MakeAbsolute(options.DataDirectory, true, &options.PidFile)

	// these must be simple file names, the database is placed in its
	// directory and the log file is resolved by the logger
	name, err := util.PlainName(options.Database.Directory, options.Database.Name)
	if nil != err {
		return nil, err
	}
	options.Database.Name = name

	if _, err := util.PlainName("", options.Logging.File); nil != err {
		return nil, err
	}

	// create directories if they do not already exist
	for _, d := range []string{
		options.Database.Directory,
		options.Logging.Directory,
	} {
		if err := util.EnsureDirectory(d); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
