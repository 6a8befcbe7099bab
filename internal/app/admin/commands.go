/*
Package admin provides the operator console for the chat service.

This file defines the command table and the handlers for the operator
commands: shutdown, kick, list, purge, and help.
*/
package admin

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"tinyirc/internal/app/chat"
	"tinyirc/internal/pkg/errs"
)

// purgeSignalCount is the count clients receive with the PURGE signal.
// Clients clear their entire displayed history regardless, so a fixed zero
// is sent rather than the number of cleared entries.
const purgeSignalCount = 0

// commandTable returns the registered operator commands in help order.
func commandTable() []Command {
	return []Command{
		{
			Name:        "shutdown",
			Description: "Shuts the server down and closes all user connections.",
			Run:         runShutdown,
		},
		{
			Name:        "kick",
			Description: "Kicks a specified user from the server. They will be able to reconnect afterwards.",
			Run:         runKick,
		},
		{
			Name:        "list",
			Description: "Lists all users connected to the server, with their connection time and remote address.",
			Run:         runList,
		},
		{
			Name:        "purge",
			Description: "Purges all previous message history.",
			Run:         runPurge,
		},
		{
			Name:        "help",
			Description: "Lists all available commands.",
			Run:         runHelp,
		},
	}
}

// runShutdown stops the whole service. In-flight sessions finish their
// current cycle and close.
func runShutdown(c *Console, _ string) {
	c.print("Shutting the server down...")
	c.srv.Shutdown()
}

// runKick disconnects the named user with the admin-kick reason, force
// closing their transport. An unknown name is reported to the operator only.
func runKick(c *Console, args string) {
	name := strings.TrimSpace(args)

	if name == "" {
		c.printError(errs.NewError(errs.ErrUnspecifiedUser).Message)
		return
	}

	sess := c.srv.Registry().Get(name)
	if sess == nil {
		c.printError(errs.NewError(errs.ErrUnknownUser, name).Message)
		return
	}

	sess.Kick(chat.ReasonAdminKick)
	c.print(fmt.Sprintf("Kicked %q.", name))
}

// runList prints every connected user with their formatted connection
// duration and remote address.
func runList(c *Console, _ string) {
	c.print("Currently connected users:")

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Name", "Connected", "Address"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	registry := c.srv.Registry()
	for _, name := range registry.Names() {
		sess := registry.Get(name)
		if sess == nil {
			continue
		}
		table.Append([]string{name, sess.FormattedConnectionTime(), sess.RemoteAddr()})
	}

	table.Render()
}

// runPurge clears the message history, tells every session to clear its
// displayed history, and announces the purge.
func runPurge(c *Console, _ string) {
	count := c.srv.History().Purge()

	for _, sess := range c.srv.Registry().Snapshot() {
		sess.Purge(purgeSignalCount)
	}

	c.srv.Router().SendToAll(chat.ServerName, "Message history purged", true)

	c.print(fmt.Sprintf("Purged %d history entries.", count))
}

// runHelp lists every registered command with its description.
func runHelp(c *Console, _ string) {
	for _, cmd := range c.commands {
		c.print(fmt.Sprintf("%s:\t%s", cmd.Name, cmd.Description))
	}
}
