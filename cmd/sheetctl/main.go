// Command sheetctl manages the sheet store from the command line: it applies
// database migrations and moves sheets in and out as xlsx workbooks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetforms/internal/codec"
	"github.com/JonMunkholm/sheetforms/internal/config"
	"github.com/JonMunkholm/sheetforms/internal/core"
	"github.com/JonMunkholm/sheetforms/internal/logging"
	"github.com/JonMunkholm/sheetforms/internal/store"
	"github.com/JonMunkholm/sheetforms/internal/store/postgres"
)

var (
	sheetName  string
	outputPath string
	version    int64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sheetctl",
		Short:        "Manage sheets and the sheet store",
		SilenceUsage: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	importCmd := &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Replace a sheet with the first worksheet of a workbook",
		Long: `Import replaces the sheet's headers and every stored entry with the
rows of the workbook's first worksheet. Row 1 is the header row.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	importCmd.Flags().StringVarP(&sheetName, "name", "n", "", "Sheet name (required)")
	importCmd.Flags().Int64Var(&version, "version", 0, "Fail unless the stored sheet has this version")
	importCmd.MarkFlagRequired("name")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a sheet as an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	exportCmd.Flags().StringVarP(&sheetName, "name", "n", "", "Sheet name (required)")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: <name>.xlsx)")
	exportCmd.MarkFlagRequired("name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sheets",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	rootCmd.AddCommand(migrateCmd, importCmd, exportCmd, listCmd)
	return rootCmd
}

// loadConfig reads .env and the environment, and configures logging.
func loadConfig() (*config.Config, error) {
	godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// openService builds a service over the configured store. The caller must
// call the returned close function.
func openService(cfg *config.Config) (*core.Service, func(), error) {
	st, err := store.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := core.NewService(st, codec.New(), core.ServiceConfig{
		EntryListLimit:          cfg.Sheets.EntryListLimit,
		MaxConcurrentTranscodes: cfg.Sheets.MaxConcurrentTranscodes,
		TranscodeWait:           cfg.Sheets.TranscodeWait,
	})
	return svc, st.Close, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s", config.DriverPostgres)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Database.ConnectTimeout)
	defer cancel()

	s, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := postgres.Migrate(cmd.Context(), s.Pool()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("migrations applied")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	svc, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := svc.ImportWorkbook(cmd.Context(), sheetName, f, version)
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (replaced %d, version %d)\n", res.Message, res.Replaced, res.Version)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	wb, err := svc.ExportSheet(cmd.Context(), sheetName)
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}

	path := outputPath
	if path == "" {
		path = wb.Filename
	}
	if err := os.WriteFile(path, wb.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(wb.Data))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sheets, err := svc.ListSheets(cmd.Context())
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}

	out := cmd.OutOrStdout()
	for _, s := range sheets {
		fmt.Fprintf(out, "%s\tv%d\t%s\n", s.Name, s.Version, strings.Join(s.Headers, ", "))
	}
	return nil
}
