package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophtasks/internal/taskrpc"
)

func parseID(args []string, n int, text string) (int64, error) {
	if len(args) < n {
		return 0, usage(text)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usage(text)
	}
	return id, nil
}

func (a *App) printTask(t taskrpc.Task) {
	fmt.Fprintf(a.out, "#%d %s %s%s\n", t.ID, mark(t.Completed), t.Description, clip(t.HasAttachment))
}

func mark(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

func clip(has bool) string {
	if has {
		return " (attachment)"
	}
	return ""
}

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("Usage: add <text>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	t, err := a.taskService.Add(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printTask(t)
	return nil
}

func (a *App) List(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	tasks, err := a.taskService.List(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tDESCRIPTION\tATTACHMENT")
	for _, t := range tasks {
		att := ""
		if t.HasAttachment {
			att = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, mark(t.Completed), t.Description, att)
	}
	return w.Flush()
}

func (a *App) setCompleted(ctx context.Context, args []string, completed bool, text string) error {
	id, err := parseID(args, 1, text)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	t, err := a.taskService.SetCompleted(ctx, id, completed)
	if err != nil {
		return err
	}
	a.printTask(t)
	return nil
}

func (a *App) Done(ctx context.Context, args []string) error {
	return a.setCompleted(ctx, args, true, "Usage: done <id>")
}

func (a *App) Undone(ctx context.Context, args []string) error {
	return a.setCompleted(ctx, args, false, "Usage: undone <id>")
}

func (a *App) Edit(ctx context.Context, args []string) error {
	const text = "Usage: edit <id> <text>"
	id, err := parseID(args, 2, text)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	t, err := a.taskService.Edit(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	a.printTask(t)
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	id, err := parseID(args, 1, "Usage: rm <id>")
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.taskService.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted #%d\n", id)
	return nil
}

func (a *App) Attach(ctx context.Context, args []string) error {
	id, err := parseID(args, 2, "Usage: attach <id> <file>")
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.taskService.Attach(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Attached %s to #%d\n", args[1], id)
	return nil
}

func (a *App) URL(ctx context.Context, args []string) error {
	id, err := parseID(args, 1, "Usage: url <id>")
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.taskService.AttachmentURL(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, u)
	return nil
}
