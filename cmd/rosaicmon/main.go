// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// rosaicmon connects to a running rosaic daemon and prints the message
// stream it serves. Handy for checking that the receiver is alive without
// pointing a real consumer at the socket.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
)

func main() {
	var socket string
	flag.StringVar(&socket, "s", "/var/run/rosaic.sock", "Socket of the rosaic daemon.")
	var help bool
	flag.BoolVar(&help, "h", false, "Print help and quit.")

	flag.Usage = func() {
		fmt.Println("usage: rosaicmon [OPTION...]")
		fmt.Println("Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if help {
		flag.Usage()
		return
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if _, err := io.Copy(os.Stdout, conn); err != nil {
		log.Fatal(err)
	}
}
