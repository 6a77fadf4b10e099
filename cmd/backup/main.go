package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"edufunkids/internal/config"
	"edufunkids/internal/database"
	"edufunkids/internal/logger"
	"edufunkids/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "backup",
		Short:         "Export and import EduFunKids accounts and profiles",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newExportCmd(), newImportCmd())
	return root
}

// openBackupService connects to the configured database and brings the
// schema up to date
func openBackupService() (*service.BackupService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		db.Close()
		log.Sync()
	}
	return service.NewBackupService(db, log), cleanup, nil
}

func newExportCmd() *cobra.Command {
	var (
		output string
		gz     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every account and profile to a JSON backup",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if output == "" {
				output = defaultExportFilename(gz)
			}
			if strings.HasSuffix(strings.ToLower(output), ".gz") {
				gz = true
			}

			backupService, cleanup, err := openBackupService()
			if err != nil {
				return err
			}
			defer cleanup()

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				if dir := filepath.Dir(output); dir != "." && dir != "" {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return fmt.Errorf("failed to create output directory: %w", err)
					}
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create backup file: %w", err)
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}
			if gz {
				zw := gzip.NewWriter(w)
				defer func() {
					if cerr := zw.Close(); err == nil {
						err = cerr
					}
				}()
				w = zw
			}

			data, err := backupService.Export(cmd.Context(), w)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d accounts and %d profiles to %s\n",
					len(data.Accounts), len(data.Profiles), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: backup_YYYYMMDD_HHMMSS.json)")
	cmd.Flags().BoolVar(&gz, "gzip", false, "compress the backup with gzip")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		input     string
		clearData bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore accounts and profiles from a JSON backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearData && !yes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
				fmt.Fprintln(cmd.ErrOrStderr(), "Import cancelled")
				return nil
			}

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open backup file: %w", err)
			}
			defer f.Close()

			var r io.Reader = f
			if strings.HasSuffix(strings.ToLower(input), ".gz") {
				zr, err := gzip.NewReader(f)
				if err != nil {
					return fmt.Errorf("failed to open gzip stream: %w", err)
				}
				defer zr.Close()
				r = zr
			}

			backupService, cleanup, err := openBackupService()
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := backupService.Import(cmd.Context(), r, clearData)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d accounts and %d profiles (backup from %s, %s)\n",
				len(data.Accounts), len(data.Profiles), data.ExportedAt.Format(time.RFC3339), data.DatabaseType)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "backup file to import, .gz is decompressed")
	cmd.Flags().BoolVar(&clearData, "clear", false, "delete existing data before importing (destructive)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt for --clear")
	cobra.CheckErr(cmd.MarkFlagRequired("input"))
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}

func defaultExportFilename(gz bool) string {
	name := fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	if gz {
		name += ".gz"
	}
	return name
}
