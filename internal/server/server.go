// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// Package server accepts local clients on a unix socket and streams framed
// receiver messages to them through a broadcast pool.
package server

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tibordome/rosaic/internal/pool"
)

type Server struct {
	socket    string
	sockGroup string
	connPool  *pool.Pool
	log       *logrus.Entry

	sock    net.Listener
	quit    chan struct{}
	clients sync.WaitGroup
}

// New creates a server for the given unix socket; Listen binds it and
// Start serves it.
// If sockGroup is non-empty the socket file is chowned to that group.
// Messages sent to connPool.Broadcast are forwarded to every connected
// client. Stop the server before stopping the pool.
func New(socket string, sockGroup string, connPool *pool.Pool, log *logrus.Entry) *Server {
	return &Server{
		socket:    socket,
		sockGroup: sockGroup,
		connPool:  connPool,
		log:       log,
		quit:      make(chan struct{}),
	}
}

// Listen creates the unix socket and applies its permissions. Call it
// before handing Start to a goroutine: the listener is then in place
// before the accept loop runs, and Stop never races its creation.
func (s *Server) Listen() error {
	if err := os.RemoveAll(s.socket); err != nil {
		return fmt.Errorf("server.Listen: %w", err)
	}

	sock, err := net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("server.Listen: %w", err)
	}

	if err := os.Chmod(s.socket, 0660); err != nil {
		sock.Close()
		return fmt.Errorf("server.Listen: %w", err)
	}

	if s.sockGroup != "" {
		group, err := user.LookupGroup(s.sockGroup)
		if err != nil {
			sock.Close()
			return fmt.Errorf("server.Listen: %w", err)
		}
		gid, err := strconv.ParseInt(group.Gid, 10, 32)
		if err != nil {
			sock.Close()
			return fmt.Errorf("server.Listen: %w", err)
		}
		if err := os.Chown(s.socket, -1, int(gid)); err != nil {
			sock.Close()
			return fmt.Errorf("server.Listen: %w", err)
		}
	}

	s.sock = sock
	return nil
}

// Start serves clients on the socket created by Listen until Stop. It
// blocks; run it on its own goroutine.
func (s *Server) Start() error {
	defer s.sock.Close()

	s.log.WithField("socket", s.socket).Info("accepting client connections")

	for {
		conn, err := s.sock.Accept()
		if err != nil {
			select {
			case <-s.quit:
				s.clients.Wait()
				return nil
			default:
				return fmt.Errorf("server.Start: %w", err)
			}
		}

		client := &pool.Client{
			Conn: conn,
			Send: make(chan []byte, 16),
		}
		s.connPool.Register <- client

		s.clients.Add(1)
		go s.clientConnection(client)

		s.log.Info("client connected")
	}
}

// Stop closes the listener and waits for the accept loop and the client
// writers to wind down. The pool is left to its owner.
func (s *Server) Stop() {
	select {
	case <-s.quit:
		return
	default:
	}
	close(s.quit)
	if s.sock != nil {
		s.sock.Close()
	}
}

// clientConnection forwards pool messages to one client until the client
// goes away or its send channel is closed by the pool.
func (s *Server) clientConnection(c *pool.Client) {
	defer func() {
		select {
		case s.connPool.Unregister <- c:
		case <-s.quit:
		}
		c.Conn.Close()
		s.clients.Done()
		s.log.Info("client disconnected")
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if _, err := c.Conn.Write(msg); err != nil {
				return
			}
		case <-s.quit:
			return
		}
	}
}
