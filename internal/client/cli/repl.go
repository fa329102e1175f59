package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Open(ctx context.Context, target string) error
	Where(ctx context.Context) error
	Call(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit", and
// dispatches them to a. Handler errors are printed and never stop the loop.
//
// Prompts of interactive commands are read from the same reader, so input
// lines are never lost between two buffers.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("fm %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, profile, passwd, open <path>, where, call <METHOD> <path> [json], logout, exit")
			} else {
				printlnFn("Available commands: register, login, open <path>, where, call <METHOD> <path> [json], exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "profile":
			cmdErr = a.EditProfile(ctx)

		case "passwd":
			cmdErr = a.ChangePassword(ctx)

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <path>")
				continue
			}
			cmdErr = a.Open(ctx, args[0])

		case "where":
			cmdErr = a.Where(ctx)

		case "call":
			if len(args) < 2 {
				printlnFn("Usage: call <METHOD> <path> [json]")
				continue
			}
			cmdErr = a.Call(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			reportError(cmdErr)
		}
	}
}
