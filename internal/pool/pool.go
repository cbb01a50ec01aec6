// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// Package pool fans framed receiver messages out to connected clients.
package pool

import (
	"net"
)

type Client struct {
	Send chan []byte
	Conn net.Conn
}

type Pool struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	clients map[*Client]bool
	count   chan int
	quit    chan struct{}
	done    chan struct{}
}

func New() *Pool {
	return &Pool{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		count:      make(chan int),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the pool loop until Stop is called. Broadcasts to a client
// whose Send channel is full are dropped for that client rather than
// stalling the receiver stream.
func (p *Pool) Start() {
	defer close(p.done)
	for {
		select {
		case c := <-p.Register:
			p.clients[c] = true
		case c := <-p.Unregister:
			if p.clients[c] {
				delete(p.clients, c)
				close(c.Send)
			}
		case msg := <-p.Broadcast:
			for c := range p.clients {
				select {
				case c.Send <- msg:
				default:
					// client is not keeping up
				}
			}
		case p.count <- len(p.clients):
		case <-p.quit:
			for c := range p.clients {
				delete(p.clients, c)
				close(c.Send)
			}
			return
		}
	}
}

// Count reports the number of registered clients.
func (p *Pool) Count() int {
	select {
	case n := <-p.count:
		return n
	case <-p.done:
		return 0
	}
}

// Stop terminates the pool loop and closes every client send channel.
func (p *Pool) Stop() {
	select {
	case <-p.quit:
	default:
		close(p.quit)
	}
	<-p.done
}
