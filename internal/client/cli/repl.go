package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Done(ctx context.Context, args []string) error
	Undone(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	URL(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: add <text>, list, done <id>, undone <id>, edit <id> <text>, rm <id>, attach <id> <file>, url <id>, me, logout, help, exit"
)

// runREPL reads commands from reader until EOF or exit. Command errors are
// reported to out and never stop the loop. Prompts issued by commands read
// from the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "tasks%s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(out, "Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args, out); err != nil {
			fmt.Fprintln(out, "Error:", describe(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(out, helpLoggedIn)
		} else {
			fmt.Fprintln(out, helpAnonymous)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "me", "add", "list", "l", "done", "undone", "edit", "rm", "attach", "url":
			return errLoginRequired
		}
		fmt.Fprintln(out, "Unknown command:", cmd)
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "me":
		return a.Me(ctx)
	case "add":
		return a.Add(ctx, args)
	case "l", "list":
		return a.List(ctx)
	case "done":
		return a.Done(ctx, args)
	case "undone":
		return a.Undone(ctx, args)
	case "edit":
		return a.Edit(ctx, args)
	case "rm":
		return a.Remove(ctx, args)
	case "attach":
		return a.Attach(ctx, args)
	case "url":
		return a.URL(ctx, args)
	default:
		fmt.Fprintln(out, "Unknown command:", cmd)
		return nil
	}
}
