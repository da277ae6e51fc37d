package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. App implements it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Open(ctx context.Context, path string) error
	AdminSummary(ctx context.Context) error
	Menu(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit"/"quit" or ctx is
// done. Command errors are reported by the handlers themselves. The same
// reader serves the prompts inside commands, so nothing is buffered twice.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "mm %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: open <route>, whoami, summary, menu, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, register, open <route>, menu, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "open":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: open <route>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "summary":
			_ = a.AdminSummary(ctx)

		case "menu":
			_ = a.Menu(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
