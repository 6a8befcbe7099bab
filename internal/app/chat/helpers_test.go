package chat

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tinyirc/internal/configs"
)

// newTestConfig returns a configuration with short protocol timings suitable
// for tests.
func newTestConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:       "test",
		Port:              0,
		ReadTimeout:       2 * time.Second,
		PingInterval:      20 * time.Millisecond,
		PingTimeout:       30 * time.Second,
		InactivityTimeout: 600 * time.Second,
		SweepPeriod:       10 * time.Millisecond,
		AcceptRate:        100,
		AcceptBurst:       100,
		MessageRate:       100,
		MessageBurst:      100,
	}
}

func newTestServer() *Server {
	return NewServer(newTestConfig())
}

// newActiveSession wires a session over an in-memory pipe and registers it
// under the given name, as if its handshake had completed. It returns the
// session and the client end of the pipe.
func newActiveSession(t *testing.T, srv *Server, name string) (*Session, net.Conn) {
	t.Helper()

	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() {
		_ = serverSide.Close()
		_ = clientSide.Close()
	})

	sess := newSession(srv, serverSide)
	require.Nil(t, srv.Registry().Claim(name, sess))

	sess.mu.Lock()
	sess.name = name
	sess.mu.Unlock()

	srv.track(sess)

	return sess, clientSide
}

// drainLines reads newline-terminated lines from conn into a channel until
// the connection closes. net.Pipe writes block until read, so every test
// client keeps a drain goroutine running.
func drainLines(conn net.Conn) <-chan string {
	lines := make(chan string, 64)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	return lines
}

// expectLine waits for the next line from the channel and requires it to
// contain want.
func expectLine(t *testing.T, lines <-chan string, want string) string {
	t.Helper()

	select {
	case line, ok := <-lines:
		require.True(t, ok, "connection closed while waiting for %q", want)
		require.Contains(t, line, want)
		return line

	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for line containing %q", want)
		return ""
	}
}

// expectLineSkippingPings is expectLine, ignoring interleaved PING signals
// from the liveness monitor.
func expectLineSkippingPings(t *testing.T, lines <-chan string, want string) string {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "connection closed while waiting for %q", want)
			if line == SignalPing {
				continue
			}
			require.Contains(t, line, want)
			return line

		case <-deadline:
			t.Fatalf("timed out waiting for line containing %q", want)
			return ""
		}
	}
}
