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
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	View(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Move(ctx context.Context, id, overID string) error
	Search(ctx context.Context, term string) error
	Sort(ctx context.Context, mode string) error
	Notices(ctx context.Context) error
	Export(ctx context.Context, dir string) error
}

var _ execIface = (*App)(nil)

// runREPL starts a simple read–eval–print loop for the taskboard CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF
// or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help                 show available commands
//	  - signup               create an account
//	  - login                authenticate
//	  - exit | quit          leave the program
//
//	Logged in:
//	  - (l)ist               reload and print the board
//	  - add                  create a task and edit it
//	  - edit <id>            edit title and description
//	  - view <id>            show a task
//	  - delete <id>          delete a task
//	  - move <id> <over-id>  drop a task onto another one
//	  - search [term]        filter the board; no term clears
//	  - sort recent|oldest   order by creation time
//	  - notices              show pending notices
//	  - export [dir]         upload a snapshot, print its link, optionally save it
//	  - logout               log out
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tb %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, edit, view, delete, move, search, sort, notices, export, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, exit")
			}
			continue

		case "signup":
			_ = a.Signup(ctx)
			continue

		case "login":
			_ = a.Login(ctx)
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !isBoardCommand(cmd) {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		switch cmd {
		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit", "view", "delete":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "edit":
				_ = a.Edit(ctx, args[0])
			case "view":
				_ = a.View(ctx, args[0])
			case "delete":
				_ = a.Delete(ctx, args[0])
			}

		case "move":
			if len(args) != 2 {
				printlnFn("Usage: move <id> <over-id>")
				continue
			}
			_ = a.Move(ctx, args[0], args[1])

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "sort":
			if len(args) != 1 {
				printlnFn("Usage: sort recent|oldest")
				continue
			}
			_ = a.Sort(ctx, args[0])

		case "notices":
			_ = a.Notices(ctx)

		case "export":
			if len(args) > 1 {
				printlnFn("Usage: export [dir]")
				continue
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			_ = a.Export(ctx, dir)

		case "logout":
			_ = a.Logout(ctx)
		}
	}
}

func isBoardCommand(cmd string) bool {
	switch cmd {
	case "l", "list", "add", "edit", "view", "delete", "move", "search", "sort", "notices", "export", "logout":
		return true
	}
	return false
}
