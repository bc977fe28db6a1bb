package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tally/internal/backup"
	"tally/internal/config"
	"tally/internal/storage"
	"tally/internal/tally"
	"tally/internal/ui"
)

// globalFlags override the config file for one invocation.
type globalFlags struct {
	dataDir   string
	backend   string
	ephemeral bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "tally",
		Short: "tally - count what you do, day by day",
		Long: `tally keeps a running count per task: log a quantity, see today's and
all-time totals, and chart the last 7 to 90 days.

Run without a command to open the dashboard. Data lives in ~/.tally/ unless
data_dir is set in ~/.config/tally/config.yaml or --data-dir is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default ~/.tally)")
	pf.StringVar(&flags.backend, "backend", "", "storage backend: file or sqlite")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "keep everything in memory; nothing is saved")

	root.AddCommand(
		newListCmd(flags),
		newAddCmd(flags),
		newRenameCmd(flags),
		newArchiveCmd(flags),
		newDeleteCmd(flags),
		newLogCmd(flags),
		newUndoCmd(flags),
		newResetCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newReportCmd(flags),
		newBackupCmd(flags),
		newRestoreCmd(flags),
		newConfigCmd(),
	)
	return root
}

// session is an opened store plus the effective config.
type session struct {
	cfg       *config.Config
	store     *storage.Store
	ephemeral bool
}

// open loads the config, applies flag overrides and opens the store. write
// takes the data-dir lock so a running dashboard and a script cannot
// interleave saves.
func (f *globalFlags) open(cmd *cobra.Command, write bool) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.backend != "" {
		cfg.Storage.Backend = f.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend := cfg.Storage.Backend
	if f.ephemeral {
		backend = storage.BackendMemory
	}
	store, err := storage.Open(storage.Options{
		DataDir: cfg.GetDataDir(),
		Backend: backend,
		Lock:    write,
	})
	if err != nil {
		return nil, err
	}
	if _, warn := store.Load(); warn != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", warn)
	}
	return &session{cfg: cfg, store: store, ephemeral: f.ephemeral}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// backups returns the backup manager, or nil for in-memory sessions.
func (s *session) backups() *backup.Manager {
	if s.ephemeral {
		return nil
	}
	return backup.NewManager(s.store.GetDataDir(), s.store, version)
}

// resolve finds a task by id, id prefix or name.
func (s *session) resolve(ref string) (tally.Task, error) {
	tasks := s.store.Tasks()
	i, err := tally.ResolveTask(tasks, ref)
	if err != nil {
		return tally.Task{}, fmt.Errorf("task %q: %w", ref, err)
	}
	return tasks[i], nil
}

// safetyBackup snapshots the list before a destructive change when the
// config asks for it. An empty name means none was taken.
func (s *session) safetyBackup(reason string) (string, error) {
	mgr := s.backups()
	if mgr == nil || !s.cfg.Backup.BeforeReset {
		return "", nil
	}
	name, err := mgr.Create(reason)
	if err != nil {
		return "", fmt.Errorf("backup before %s: %w", reason, err)
	}
	return name, nil
}

// confirm asks a yes/no question on the command's input. Anything but y or
// yes, including EOF, is a no.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
	return false, nil
}

func runTUI(cmd *cobra.Command, flags *globalFlags) error {
	sess, err := flags.open(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	styles := ui.NewStyles(sess.cfg)
	appCfg := ui.AppConfigFrom(sess.cfg, sess.backups())
	if err := ui.Run(sess.store, styles, appCfg); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
