// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tibordome/rosaic/internal/comm"
	"github.com/tibordome/rosaic/internal/config"
	"github.com/tibordome/rosaic/internal/framer"
	"github.com/tibordome/rosaic/internal/pool"
	"github.com/tibordome/rosaic/internal/server"
	"github.com/tibordome/rosaic/internal/taskq"
	"github.com/tibordome/rosaic/internal/transport"
)

func main() {
	var confFile string
	flag.StringVar(&confFile, "c", "/etc/rosaic.conf", "Configuration file to use.")
	var help bool
	flag.BoolVar(&help, "h", false, "Print help and quit.")

	flag.Usage = func() {
		fmt.Println("usage: rosaic [OPTION...]")
		fmt.Println("Reads a Septentrio mosaic receiver and serves its NMEA/SBF stream over a unix socket.")
		fmt.Println("Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if help {
		flag.Usage()
		return
	}

	log := logrus.New()

	conf, err := config.Parse(confFile)
	if err != nil {
		log.Fatal(err)
	}

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		log.Fatal(fmt.Errorf("invalid log_level: %w", err))
	}
	log.SetLevel(level)

	if err := run(conf, log); err != nil {
		log.Fatal(err)
	}
}

// openStream connects to the receiver named by the config.
func openStream(conf *config.Config) (comm.Stream, error) {
	switch conf.Transport {
	case "serial":
		return transport.Serial(conf.DevicePath, conf.BaudRate)
	case "tcp":
		return transport.TCP(conf.TCPAddr, 10*time.Second)
	default:
		return nil, fmt.Errorf("unknown transport %q", conf.Transport)
	}
}

func run(conf *config.Config, log *logrus.Logger) error {
	stream, err := openStream(conf)
	if err != nil {
		return err
	}

	connPool := pool.New()
	go connPool.Start()

	frm := framer.New(func(msg framer.Message) {
		connPool.Broadcast <- msg.Raw
	}, log.WithField("component", "framer"))

	queue := taskq.New()
	mgr := comm.NewAsyncManager(stream, queue, conf.BufferSize,
		log.WithField("component", "comm"))
	mgr.SetCallback(frm.Scan)

	srv := server.New(conf.Socket, conf.OwnerGroup, connPool,
		log.WithField("component", "server"))
	if err := srv.Listen(); err != nil {
		mgr.Stop()
		connPool.Stop()
		return err
	}

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-srvErr:
	case sig := <-sigChan:
		log.WithField("signal", sig).Info("shutting down")
	}

	srv.Stop()
	mgr.Stop()
	connPool.Stop()
	return err
}
