package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"tally/internal/tally"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks with today's and all-time counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			now := sess.store.Now()
			tasks := tally.VisibleTasks(sess.store.Tasks(), all)
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks yet.")
				fmt.Fprintln(out, "Run 'tally add NAME' to create one.")
				return nil
			}

			nameWidth := 4
			for _, t := range tasks {
				nameWidth = max(nameWidth, runewidth.StringWidth(displayName(t)))
			}
			fmt.Fprintf(out, "  %-8s  %s  %5s  %6s\n", "ID", runewidth.FillRight("TASK", nameWidth), "TODAY", "TOTAL")
			for _, t := range tasks {
				today := tally.ComputeTotals([]tally.Task{t}, now).Today
				fmt.Fprintf(out, "  %-8s  %s  %5d  %6d\n", shortID(t.ID), runewidth.FillRight(displayName(t), nameWidth), today, t.Total())
			}

			totals := tally.ComputeTotals(tasks, now)
			fmt.Fprintf(out, "\nToday: %d   All time: %d\n", totals.Today, totals.Total)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include archived tasks")
	return cmd
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add [NAME...]",
		Short: "Add a task (blank names become \"Task N\")",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			task, err := sess.store.AddTask(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (%s)\n", task.Name, shortID(task.ID))
			return nil
		},
	}
}

func newRenameCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename TASK NAME...",
		Short: "Rename a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			task, err := sess.resolve(args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			if err := sess.store.RenameTask(task.ID, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed %s to %s\n", task.Name, strings.TrimSpace(name))
			return nil
		},
	}
}

func newArchiveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive TASK",
		Short: "Archive a task, or unarchive it if it already is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			task, err := sess.resolve(args[0])
			if err != nil {
				return err
			}
			archived, err := sess.store.ToggleArchive(task.ID)
			if err != nil {
				return err
			}
			verb := "Unarchived"
			if archived {
				verb = "Archived"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s\n", verb, task.Name)
			return nil
		},
	}
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "delete TASK",
		Aliases: []string{"rm"},
		Short:   "Delete a task and all of its events",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			task, err := sess.resolve(args[0])
			if err != nil {
				return err
			}
			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Delete %s and its %d events?", task.Name, len(task.Events)))
				if err != nil || !ok {
					return err
				}
			}
			if _, err := sess.store.DeleteTask(task.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", task.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func newLogCmd(flags *globalFlags) *cobra.Command {
	var dateKey string
	cmd := &cobra.Command{
		Use:   "log TASK [QTY]",
		Short: "Log a quantity against a task (default 1)",
		Long: `Log a quantity against a task. QTY must be a positive whole number and
defaults to 1. With --date the event is recorded at noon of that day.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(strings.TrimSpace(args[1]))
				if err != nil || n <= 0 {
					return fmt.Errorf("%w (got %q)", tally.ErrInvalidQuantity, args[1])
				}
				qty = n
			}

			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			task, err := sess.resolve(args[0])
			if err != nil {
				return err
			}
			if _, err := sess.store.LogQuantity(task.ID, qty, dateKey); err != nil {
				return err
			}

			tasks := sess.store.Tasks()
			updated := tasks[tally.FindTask(tasks, task.ID)]
			today := tally.ComputeTotals([]tally.Task{updated}, sess.store.Now()).Today
			on := ""
			if dateKey != "" {
				on = " on " + strings.TrimSpace(dateKey)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ +%d %s%s (today %d, total %d)\n", qty, task.Name, on, today, updated.Total())
			return nil
		},
	}
	cmd.Flags().StringVarP(&dateKey, "date", "d", "", "record on this day instead of now (YYYY-MM-DD)")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		if m := negativeArg.FindStringSubmatch(err.Error()); m != nil {
			return fmt.Errorf("%w (got %q)", tally.ErrInvalidQuantity, m[1])
		}
		return err
	})
	return cmd
}

// negativeArg picks a negative number out of pflag's "unknown shorthand
// flag: '3' in -3" error, so "log TASK -3" reads as a bad quantity.
var negativeArg = regexp.MustCompile(`in (-[0-9][^ ]*)$`)

func newUndoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "undo TASK",
		Short: "Remove the most recently logged event of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			task, err := sess.resolve(args[0])
			if err != nil {
				return err
			}
			ev, err := sess.store.UndoLast(task.ID)
			if errors.Is(err, tally.ErrNothingToUndo) {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to undo for %s.\n", task.Name)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d from %s (logged %s)\n", ev.Qty, task.Name, ev.ISO)
			return nil
		},
	}
}

func newResetCmd(flags *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every task and event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			tasks := sess.store.Tasks()
			if !force {
				events := 0
				for _, t := range tasks {
					events += len(t.Events)
				}
				ok, err := confirm(cmd, fmt.Sprintf("Delete ALL %d tasks and %d events?", len(tasks), events))
				if err != nil || !ok {
					return err
				}
			}

			name, err := sess.safetyBackup("reset")
			if err != nil {
				return err
			}
			if err := sess.store.ResetAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ All data deleted")
			if name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  Backup: %s (tally restore %s)\n", name, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

// shortID is enough of an id to pass back as a TASK argument.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func displayName(t tally.Task) string {
	if t.Archived {
		return t.Name + " (archived)"
	}
	return t.Name
}
