package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Register(ctx context.Context) error
	Whoami(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Resend(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Visits(ctx context.Context, page int) error
	LogVisit(ctx context.Context, zooID string) error
	Search(ctx context.Context, query string) error
	Recent(ctx context.Context) error
	Achievements(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the ZooTrail CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands when signed out: help, login, register, forgot, reset, resend,
// exit. When signed in: help, whoami, dashboard, visits [page],
// logvisit <zoo-id>, search <query>, recent, achievements, logout, exit.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own outcomes. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("zoo %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, dashboard, visits [page], logvisit <zoo-id>, search <query>, recent, achievements, logout, exit")
			} else {
				printlnFn("Available commands: login, register, forgot, reset, resend, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "register":
			_ = a.Register(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "visits":
			page := 1
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					printlnFn("Usage: visits [page]")
					continue
				}
				page = n
			}
			_ = a.Visits(ctx, page)

		case "logvisit":
			if len(args) == 0 {
				printlnFn("Usage: logvisit <zoo-id>")
				continue
			}
			_ = a.LogVisit(ctx, args[0])

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <query>")
				continue
			}
			_ = a.Search(ctx, strings.Join(args, " "))

		case "recent":
			_ = a.Recent(ctx)

		case "achievements":
			_ = a.Achievements(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
