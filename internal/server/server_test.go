// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

package server

import (
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tibordome/rosaic/internal/pool"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func startServer(t *testing.T) (*Server, *pool.Pool, string) {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "rosaic.sock")
	connPool := pool.New()
	go connPool.Start()

	srv := New(socket, "", connPool, testLogger())
	require.NoError(t, srv.Listen())
	errs := make(chan error, 1)
	go func() { errs <- srv.Start() }()

	t.Cleanup(func() {
		srv.Stop()
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
		connPool.Stop()
	})

	return srv, connPool, socket
}

// Stop right after spawning the accept loop must close the listener and
// let Start return: the listener is bound in Listen, on the caller's
// goroutine, so Stop never observes it half-created.
func TestStopRightAfterStart(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "rosaic.sock")
	connPool := pool.New()
	go connPool.Start()
	t.Cleanup(connPool.Stop)

	srv := New(socket, "", connPool, testLogger())
	require.NoError(t, srv.Listen())

	errs := make(chan error, 1)
	go func() { errs <- srv.Start() }()
	srv.Stop()

	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestClientReceivesBroadcasts(t *testing.T) {
	_, connPool, socket := startServer(t)

	conn, err := net.Dial("unix", socket)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Registration happens on the accept loop; wait for it.
	require.Eventually(t, func() bool { return connPool.Count() == 1 },
		2*time.Second, 10*time.Millisecond)

	msg := []byte("$GPGGA,070319.000,0000.00000,N*00\r\n")
	connPool.Broadcast <- msg

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 128)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, msg, buf[:n])
}

func TestMultipleClients(t *testing.T) {
	_, connPool, socket := startServer(t)

	var conns []net.Conn
	for i := 0; i < 3; i++ {
		conn, err := net.Dial("unix", socket)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		conns = append(conns, conn)
	}

	require.Eventually(t, func() bool { return connPool.Count() == 3 },
		2*time.Second, 10*time.Millisecond)

	msg := []byte("$@test-block")
	connPool.Broadcast <- msg

	for _, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		buf := make([]byte, 64)
		n, err := conn.Read(buf)
		require.NoError(t, err)
		require.Equal(t, msg, buf[:n])
	}
}
