/*
Package admin provides the operator console for the chat service.

This file defines the Console struct, a single-goroutine command loop reading
operator input lines and dispatching them against the registered command
table by exact or prefix match.
*/
package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/rs/zerolog"

	"tinyirc/internal/app/chat"
	"tinyirc/internal/pkg/logx"
)

// Command is one operator command: its name, a help description, and its
// handler. The handler receives the remainder of the input line as args.
type Command struct {
	Name        string
	Description string
	Run         func(c *Console, args string)
}

// Console reads operator commands from an input stream and applies them to
// the running server. Input and output are injectable so tests can drive the
// console without a terminal.
type Console struct {
	// srv is the server the commands operate on.
	srv *chat.Server

	// in is the operator input stream (stdin in production).
	in io.Reader

	// out receives operator-facing feedback.
	out io.Writer

	// commands is the dispatch table.
	commands []Command

	// structured logger with Console context.
	logger zerolog.Logger
}

// NewConsole constructs a Console bound to the given server and streams.
func NewConsole(srv *chat.Server, in io.Reader, out io.Writer) *Console {
	consoleLogger := logx.Logger().With().Str("component", "Console").Logger()

	return &Console{
		srv:      srv,
		in:       in,
		out:      out,
		commands: commandTable(),
		logger:   consoleLogger,
	}
}

// Run reads operator lines until the input ends, the context is cancelled,
// or the service stops running.
func (c *Console) Run(ctx context.Context) {
	c.logger.Info().Msg("Admin console started.")

	scanner := bufio.NewScanner(c.in)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Context cancelled. Admin console exiting.")
			return
		default:
		}

		if !c.srv.Running() {
			return
		}

		c.Dispatch(scanner.Text())

		if !c.srv.Running() {
			c.logger.Info().Msg("Service stopped. Admin console exiting.")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Operator input failed.")
	}
}

// Dispatch matches one operator line against the command table. A command
// matches its bare name exactly, or as a prefix followed by arguments.
// Unrecognized input is reported to the operator only and never affects
// service state.
func (c *Console) Dispatch(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	for i := range c.commands {
		cmd := &c.commands[i]

		if line == cmd.Name {
			cmd.Run(c, "")
			return
		}

		if strings.HasPrefix(line, cmd.Name+" ") {
			cmd.Run(c, strings.TrimSpace(line[len(cmd.Name):]))
			return
		}
	}

	c.printError(fmt.Sprintf("Unknown command %q", line))
}

// print writes one operator-facing feedback line.
func (c *Console) print(msg string) {
	fmt.Fprintln(c.out, msg)
}

// printError writes one operator-facing error line, highlighted.
func (c *Console) printError(msg string) {
	fmt.Fprintln(c.out, color.New(color.FgRed).Render(msg))
}
