// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/kittywatch/aggregator"
	"github.com/bitmark-inc/kittywatch/background"
	"github.com/bitmark-inc/kittywatch/chain"
	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/fetcher"
	"github.com/bitmark-inc/kittywatch/metrics"
	"github.com/bitmark-inc/kittywatch/publish"
	"github.com/bitmark-inc/kittywatch/rpc"
	"github.com/bitmark-inc/kittywatch/rpc/kitties"
	"github.com/bitmark-inc/kittywatch/rpc/server"
	"github.com/bitmark-inc/kittywatch/storage"
	"github.com/bitmark-inc/kittywatch/submit"
	"github.com/bitmark-inc/kittywatch/substrate"
	"github.com/bitmark-inc/kittywatch/watcher"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	variables := map[string]string{
		"program": program,
		"version": version,
	}
	theConfiguration, err := getConfiguration(configurationFile, variables)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	network, ok := chain.AddressPrefix(theConfiguration.Chain)
	if !ok {
		log.Criticalf("no address prefix for chain: %q", theConfiguration.Chain)
		exitwithstatus.Message("no address prefix for chain: %q", theConfiguration.Chain)
	}

	// start a profiling http server
	// this uses the default builtin HTTP handler
	// and is not associated with the normal ClientRPC server
	if "" != theConfiguration.ProfileHTTP {
		http.Handle("/metrics", metrics.Handler())
		go func() {
			log.Warnf("profile listener on: %s", theConfiguration.ProfileHTTP)
			err := http.ListenAndServe(theConfiguration.ProfileHTTP, nil)
			exitwithstatus.Message("profile error: %s", err)
		}()
	}

	// general info
	log.Infof("chain: %s  address prefix: %d", theConfiguration.Chain, network)
	log.Infof("node: %q", theConfiguration.Node.URL)
	log.Infof("database: %q", theConfiguration.Database.Name)

	// connection info
	log.Debugf("%s = %#v", "Node", theConfiguration.Node)
	log.Debugf("%s = %#v", "ClientRPC", theConfiguration.ClientRPC)
	log.Debugf("%s = %#v", "Publishing", theConfiguration.Publishing)
	log.Debugf("%s = %#v", "Create", theConfiguration.Create)

	defaultOwner := &kitties.DefaultOwner{}
	if "" != theConfiguration.Owner {
		if _, _, err := substrate.ParseSS58(theConfiguration.Owner); nil != err {
			log.Criticalf("owner: %q  error: %s", theConfiguration.Owner, err)
			exitwithstatus.Message("owner: %q  error: %s", theConfiguration.Owner, err)
		}
		defaultOwner.Set(theConfiguration.Owner)
	}

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	archive, err := storage.NewArchive(logger.New("archive"))
	logger.PanicIfError("storage.NewArchive", err)

	publisher := publish.New()

	// optional create command
	var creator kitties.Creator
	submitter, err := submit.New(logger.New("submit"), &theConfiguration.Create, publisher)
	if nil == err {
		creator = submitter
	} else if fault.CreateNotConfigured == err {
		log.Info("create: disabled")
	} else {
		log.Criticalf("submit initialise error: %s", err)
		exitwithstatus.Message("submit initialise error: %s", err)
	}

	nodeTimeout := time.Duration(theConfiguration.Node.Timeout) * time.Second

	connector, err := watcher.NewConnector(
		logger.New("watcher"),
		watcher.NodeDialer(theConfiguration.Node.URL, logger.New("substrate")),
		nodeTimeout,
		theConfiguration.Node.Pallet,
		theConfiguration.Node.CountItem,
	)
	if nil != err {
		log.Criticalf("connector initialise error: %s", err)
		exitwithstatus.Message("connector initialise error: %s", err)
	}

	names := fetcher.Names{
		Pallet: theConfiguration.Node.Pallet,
		DNA:    theConfiguration.Node.DNAItem,
		Owner:  theConfiguration.Node.OwnerItem,
	}
	batchFetcher, err := fetcher.New(
		logger.New("fetcher"),
		connector,
		names,
		theConfiguration.Node.BatchSize,
		theConfiguration.Node.Parallel,
		nodeTimeout,
	)
	if nil != err {
		log.Criticalf("fetcher initialise error: %s", err)
		exitwithstatus.Message("fetcher initialise error: %s", err)
	}

	aggregate, err := aggregator.New(logger.New("aggregator"), batchFetcher, publisher, archive, network)
	if nil != err {
		log.Criticalf("aggregator initialise error: %s", err)
		exitwithstatus.Message("aggregator initialise error: %s", err)
	}
	aggregate.SetMaximumCount(uint64(theConfiguration.Node.MaximumCount))
	connector.SetSink(aggregate)

	processes := background.Processes{
		aggregate,
		connector,
	}

	// start up the publishing background process
	if 0 != len(theConfiguration.Publishing.Broadcast) {
		broadcaster, err := publish.NewBroadcaster(logger.New("broadcaster"), &theConfiguration.Publishing, publisher)
		if nil != err {
			log.Criticalf("publish initialise error: %s", err)
			exitwithstatus.Message("publish initialise error: %s", err)
		}
		processes = append(processes, broadcaster)
	} else {
		log.Info("publish: disabled")
	}

	configWatcher, err := newConfigWatcher(logger.New(configWatcherLoggerPrefix), configurationFile, variables, defaultOwner)
	if nil != err {
		log.Errorf("config watcher error: %s", err)
	} else {
		processes = append(processes, configWatcher)
	}

	running := background.Start(processes, nil)
	defer running.Stop()

	// start up the rpc background processes
	services := server.Services{
		Version: version,
		Chain:   theConfiguration.Chain,
		NodeURL: theConfiguration.Node.URL,
		Network: network,
		Source:  publisher,
		Creator: creator,
		Owner:   defaultOwner,
	}
	err = rpc.Initialise(&theConfiguration.ClientRPC, services)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		go memstats()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
