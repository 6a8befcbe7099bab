package admin

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tinyirc/internal/app/chat"
	"tinyirc/internal/configs"
)

func newTestConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:       "test",
		Port:              0,
		ReadTimeout:       2 * time.Second,
		PingInterval:      time.Second,
		PingTimeout:       30 * time.Second,
		InactivityTimeout: 600 * time.Second,
		SweepPeriod:       500 * time.Millisecond,
		AcceptRate:        100,
		AcceptBurst:       100,
		MessageRate:       100,
		MessageBurst:      100,
	}
}

// startServer binds a server on an ephemeral port and serves it for the
// duration of the test.
func startServer(t *testing.T) *chat.Server {
	t.Helper()

	srv := chat.NewServer(newTestConfig())
	require.NoError(t, srv.Listen())

	go func() {
		_ = srv.Serve()
	}()

	t.Cleanup(srv.Shutdown)

	return srv
}

// newConsole returns a console whose operator output is captured in the
// returned buffer.
func newConsole(srv *chat.Server) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewConsole(srv, strings.NewReader(""), out), out
}

// joinClient dials the server and completes the handshake for name,
// returning a channel of received lines.
func joinClient(t *testing.T, srv *chat.Server, name string) <-chan string {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	expect(t, lines, chat.SignalSubmitName)
	_, err = conn.Write([]byte(name + "\n"))
	require.NoError(t, err)
	expect(t, lines, chat.SignalNameAccepted+" "+name)

	return lines
}

// expect waits for the next line containing want, skipping liveness pings.
func expect(t *testing.T, lines <-chan string, want string) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "connection closed while waiting for %q", want)
			if line == chat.SignalPing {
				continue
			}
			require.Contains(t, line, want)
			return
		case <-deadline:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestConsole_UnknownCommandIsReportedOnly(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	console, out := newConsole(srv)

	console.Dispatch("frobnicate now")

	req.Contains(out.String(), `Unknown command "frobnicate now"`)
	req.True(srv.Running())
}

func TestConsole_BlankInputIsIgnored(t *testing.T) {
	srv := startServer(t)
	console, out := newConsole(srv)

	console.Dispatch("   ")

	require.Empty(t, out.String())
}

func TestConsole_HelpListsAllCommands(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	console, out := newConsole(srv)

	console.Dispatch("help")

	for _, name := range []string{"shutdown", "kick", "list", "purge", "help"} {
		req.Contains(out.String(), name+":")
	}
}

func TestConsole_KickRequiresAName(t *testing.T) {
	srv := startServer(t)
	console, out := newConsole(srv)

	console.Dispatch("kick   ")

	require.Contains(t, out.String(), "Unspecified user.")
}

func TestConsole_KickUnknownUserReportsToOperatorOnly(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	console, out := newConsole(srv)

	joinClient(t, srv, "alice")

	console.Dispatch("kick ghost")

	req.Contains(out.String(), `Unknown user "ghost"`)
	req.NotNil(srv.Registry().Get("alice"))
}

func TestConsole_KickDisconnectsAndAnnounces(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	console, out := newConsole(srv)

	bobLines := joinClient(t, srv, "bob")
	expect(t, bobLines, "bob has joined the server!")

	carolLines := joinClient(t, srv, "carol")
	expect(t, carolLines, "bob has joined the server!")
	expect(t, carolLines, "carol has joined the server!")

	console.Dispatch("kick bob")

	expect(t, bobLines, "KICKED kicked by an admin")
	expect(t, carolLines, "MESSAGE[SERVER]bob has disconnected - kicked by an admin")
	req.Contains(out.String(), `Kicked "bob".`)

	req.Eventually(func() bool {
		return srv.Registry().Get("bob") == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsole_ListShowsConnectedUsers(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	console, out := newConsole(srv)

	joinClient(t, srv, "alice")
	joinClient(t, srv, "bob")

	console.Dispatch("list")

	output := out.String()
	req.Contains(output, "Currently connected users:")
	req.Contains(output, "alice")
	req.Contains(output, "bob")
	req.Contains(output, "00h 00m")
}

func TestConsole_PurgeClearsHistoryAndSignalsClients(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	console, out := newConsole(srv)

	aliceLines := joinClient(t, srv, "alice")
	expect(t, aliceLines, "alice has joined the server!")
	req.Equal(1, srv.History().Len())

	console.Dispatch("purge")

	// Clients are told to clear with the fixed count, then the announcement
	// is broadcast (and becomes the only history entry).
	expect(t, aliceLines, chat.SignalPurge+" 0")
	expect(t, aliceLines, "MESSAGE[SERVER]Message history purged")
	req.Contains(out.String(), "Purged 1 history entries.")

	snapshot := srv.History().Snapshot()
	req.Len(snapshot, 1)
	req.Equal("Message history purged", snapshot[0].Text)
}

func TestConsole_ShutdownStopsTheService(t *testing.T) {
	req := require.New(t)
	srv := startServer(t)
	console, _ := newConsole(srv)

	aliceLines := joinClient(t, srv, "alice")
	expect(t, aliceLines, "alice has joined the server!")

	console.Dispatch("shutdown")

	expect(t, aliceLines, "MESSAGE[SERVER]Server is shutting down")
	expect(t, aliceLines, chat.SignalServerClosing)
	req.False(srv.Running())
}

func TestConsole_RunStopsWhenServiceStops(t *testing.T) {
	srv := startServer(t)
	out := &bytes.Buffer{}
	console := NewConsole(srv, strings.NewReader("shutdown\nlist\n"), out)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan struct{})
	go func() {
		console.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("console did not exit after shutdown")
	}

	// The command after shutdown was never dispatched.
	require.NotContains(t, out.String(), "Currently connected users:")
}
