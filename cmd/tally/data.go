package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"tally/internal/fsutil"
	"tally/internal/importer"
	"tally/internal/reports"
	"tally/internal/tally"
)

// maxPreviewRows bounds the dry-run listing.
const maxPreviewRows = 20

func newExportCmd(flags *globalFlags) *cobra.Command {
	var (
		output string
		stdout bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a versioned JSON export of every task",
		Long: `Write a versioned JSON export ({version: 3, exportedAt, tasks}) that
'tally import' and the dashboard's import prompt read back.

By default the file is named task-counter-export-<epoch-ms>.json and goes to
ux.export_dir from the config, or the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.open(cmd, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			data, err := sess.store.ExportSnapshot()
			if err != nil {
				return err
			}
			if stdout {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			path := output
			if path == "" {
				path = filepath.Join(sess.cfg.UX.ExportDir, tally.ExportFilename(sess.store.Now()))
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}
			if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d tasks to %s\n", len(sess.store.Tasks()), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write the export to stdout")
	cmd.MarkFlagsMutuallyExclusive("output", "stdout")
	return cmd
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	var (
		format   string
		taskName string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all data with the contents of an export",
		Long: `Replace the whole task list with the contents of FILE. Nothing changes
when the file does not parse or validate.

Formats:
  snapshot  a tally export (default for anything but .csv)
  events    a bare JSON array of ISO timestamps, loaded as one task (--name)
  csv       a header row naming task and date columns, optional qty and
            archived columns (default for .csv)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = importer.FormatForPath(path)
			}
			imp := importer.GetImporter(format, importer.Options{TaskName: taskName})
			if imp == nil {
				return fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(importer.SupportedFormats(), ", "))
			}

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			out := cmd.OutOrStdout()
			if dryRun {
				preview, err := imp.Preview(file)
				if err != nil {
					return fmt.Errorf("parse %s: %w", path, err)
				}
				printPreview(cmd, preview)
				return nil
			}

			sess, err := flags.open(cmd, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			backupName, err := sess.safetyBackup("import")
			if err != nil {
				return err
			}
			result, err := imp.Import(file, sess.store)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Fprintln(out, "Import complete!")
			fmt.Fprintf(out, "  Tasks:   %d\n", result.Tasks)
			fmt.Fprintf(out, "  Events:  %d\n", result.Events)
			if result.Skipped > 0 {
				fmt.Fprintf(out, "  Skipped: %d rows\n", result.Skipped)
				for _, e := range result.Errors {
					fmt.Fprintf(out, "    - %s\n", e)
				}
			}
			if backupName != "" {
				fmt.Fprintf(out, "  Previous data saved as backup %s\n", backupName)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: snapshot, events or csv")
	cmd.Flags().StringVar(&taskName, "name", "", "task name for the events format")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without changing anything")
	return cmd
}

func printPreview(cmd *cobra.Command, preview []importer.PreviewTask) {
	out := cmd.OutOrStdout()
	if len(preview) == 0 {
		fmt.Fprintln(out, "No tasks found to import.")
		return
	}

	fmt.Fprintf(out, "Preview: %d tasks to import\n", len(preview))
	fmt.Fprintln(out, "────────────────────────────")
	for i, p := range preview {
		if i == maxPreviewRows {
			fmt.Fprintf(out, "  ... and %d more\n", len(preview)-maxPreviewRows)
			break
		}
		var details []string
		details = append(details, fmt.Sprintf("%d events", p.Events), fmt.Sprintf("total %d", p.Total))
		if p.First != "" {
			details = append(details, p.First+" to "+p.Last)
		}
		if p.Archived {
			details = append(details, "archived")
		}
		fmt.Fprintf(out, "  %s (%s)\n", p.Name, strings.Join(details, ", "))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run without --dry-run to import. This replaces all current data.")
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var (
		days   int
		format string
		all    bool
		plain  bool
		recent int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the last N days",
		Long: `Summarize the last N days (default ux.default_range): totals per task,
streaks, best days and a day-by-day table.

Markdown is rendered for the terminal unless --plain is given or the format
is json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format == "md" {
				format = "markdown"
			}
			if format != "markdown" && format != "json" {
				return fmt.Errorf("invalid format %q, use markdown or json", format)
			}

			sess, err := flags.open(cmd, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !cmd.Flags().Changed("range") {
				days = sess.cfg.UX.DefaultRange
			}
			gen := reports.NewGenerator(sess.store)
			gen.SetNowFunc(sess.store.Now)
			report, err := gen.GenerateRange(reports.Options{Days: days, ShowArchived: all, RecentLimit: recent})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				data, err := reports.FormatJSON(report)
				if err != nil {
					return fmt.Errorf("format JSON: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			md := reports.FormatMarkdown(report)
			if !plain {
				md = renderMarkdown(md)
			}
			_, err = fmt.Fprint(out, md)
			return err
		},
	}
	cmd.Flags().IntVarP(&days, "range", "r", 30, "number of days, ending today")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include archived tasks")
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	cmd.Flags().IntVar(&recent, "recent", 10, "recent events to list")
	return cmd
}

// renderMarkdown styles md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
