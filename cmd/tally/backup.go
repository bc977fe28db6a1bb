package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/backup"
)

// errNoDataDir is returned for backup commands run with --ephemeral.
var errNoDataDir = errors.New("backups need a data directory; drop --ephemeral")

func newBackupCmd(flags *globalFlags) *cobra.Command {
	var list, prune bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and manage backups",
		Long: `Creates a timestamped snapshot of every task in <data_dir>/backups/.
Snapshots can be restored later with 'tally restore'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			manager := sess.backups()
			if manager == nil {
				return errNoDataDir
			}

			switch {
			case list:
				return listBackups(cmd, manager)
			case prune:
				keep := sess.cfg.Backup.Keep
				n, err := manager.Prune(keep)
				if err != nil {
					return fmt.Errorf("prune backups: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d old backups (keeping %d)\n", n, keep)
				return nil
			default:
				return createBackup(cmd, manager)
			}
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available backups")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete all but the newest backup.keep backups")
	cmd.MarkFlagsMutuallyExclusive("list", "prune")
	return cmd
}

// createBackup creates a new backup and displays the result.
func createBackup(cmd *cobra.Command, manager *backup.Manager) error {
	name, err := manager.Create("manual")
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	info, err := manager.GetBackup(name)
	if err != nil {
		return fmt.Errorf("read backup info: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Backup created: %s\n", name)
	fmt.Fprintf(out, "  Tasks: %d (%d archived), Events: %d\n",
		info.Stats.Tasks, info.Stats.Archived, info.Stats.Events)
	fmt.Fprintf(out, "  Location: %s\n", info.Path)
	return nil
}

// listBackups lists all available backups, newest first.
func listBackups(cmd *cobra.Command, manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(backups) == 0 {
		fmt.Fprintln(out, "No backups available.")
		fmt.Fprintln(out, "Run 'tally backup' to create one.")
		return nil
	}

	fmt.Fprintln(out, "Available backups:")
	for _, b := range backups {
		reason := ""
		if b.Reason != "" {
			reason = " [" + b.Reason + "]"
		}
		fmt.Fprintf(out, "  %s  (%s)%s   Tasks: %d, Events: %d\n",
			b.Name, formatAge(b.CreatedAt), reason, b.Stats.Tasks, b.Stats.Events)
	}
	return nil
}

func newRestoreCmd(flags *globalFlags) *cobra.Command {
	var latest, force bool
	cmd := &cobra.Command{
		Use:   "restore [NAME]",
		Short: "Replace all data with a backup",
		Long: `Replace the task list with the one in a backup. The current list is
backed up first, so a restore can itself be undone.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if latest && len(args) > 0 {
				return errors.New("give a backup name or --latest, not both")
			}
			if !latest && len(args) != 1 {
				return errors.New("give a backup name or --latest (see 'tally backup --list')")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			manager := sess.backups()
			if manager == nil {
				return errNoDataDir
			}

			name := ""
			if latest {
				backups, err := manager.List()
				if err != nil {
					return fmt.Errorf("list backups: %w", err)
				}
				if len(backups) == 0 {
					return backup.ErrNoBackups
				}
				name = backups[0].Name
			} else {
				name = args[0]
			}

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Replace all current data with backup %s?", name))
				if err != nil || !ok {
					return err
				}
			}

			safety, err := manager.Restore(name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Restored from %s\n", name)
			fmt.Fprintf(out, "  Previous data saved as backup %s\n", safety)
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "restore the most recent backup")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

// formatAge returns a human-readable age string.
func formatAge(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
