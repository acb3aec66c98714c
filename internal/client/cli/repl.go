package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL chrome output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Onboarding(ctx context.Context) error
	AddWorkout(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	report(err error)
}

// runREPL starts a simple read–eval–print loop for the EvoRun CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on a. The loop exits on EOF, on "exit"/"quit" or
// when ctx is cancelled.
//
//	Not logged in:
//	  help, register, login, exit
//
//	Logged in:
//	  profile                 show the cached profile
//	  onboarding              fill in or change the profile
//	  add                     add a workout
//	  (l)ist [from [to]]      list workouts, optionally for a day or a range
//	  show <id>               show one workout
//	  edit <id>               edit a workout
//	  delete <id>             delete a workout
//	  sync                    reconcile with the server
//	  status                  show session and sync state
//	  logout, exit
//
// Handler errors are reported through a.report and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("evorun %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: register, login, exit")
			case "register":
				a.report(a.Register(ctx))
			case "login":
				a.report(a.Login(ctx))
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Please log in first (type 'help' for commands)")
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: profile, onboarding, add, (l)ist [from [to]], show <id>, edit <id>, delete <id>, sync, status, logout, exit")
		case "profile":
			a.report(a.Profile(ctx))
		case "onboarding":
			a.report(a.Onboarding(ctx))
		case "add", "addworkout":
			a.report(a.AddWorkout(ctx))
		case "l", "list":
			a.report(a.List(ctx, args))
		case "show":
			a.report(a.Show(ctx, args))
		case "edit":
			a.report(a.Edit(ctx, args))
		case "delete":
			a.report(a.Delete(ctx, args))
		case "sync":
			a.report(a.Sync(ctx))
		case "status":
			a.report(a.Status(ctx))
		case "logout":
			a.report(a.Logout(ctx))
		case "login", "register":
			printlnFn("Already logged in, use 'logout' first")
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
